package linkedin

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/rakmakan/ai-resume/internal/scrape/util"
)

// descriptionSelectors ranked from the markup LinkedIn actually serves down
// to generic containers that at least bound the noise.
var descriptionSelectors = []string{
	"div.show-more-less-html__markup",
	"div.jobs-description__content",
	"div.description__text",
	"section.jobs-description",
	"div.jobs-box__html-content",
	"div.jobs-description-content__text",

	`[data-section="description"]`,
	`div[class*="description"]`,
	`section[class*="description"]`,
	".jobs-description",
	".job-description",

	"div.job-view-layout",
	"article",
	"main",
}

var descriptionKeywords = []string{
	"responsibilities", "requirements", "qualifications",
	"experience", "skills", "role", "position",
}

var navPhrases = []string{"sign in", "linkedin", "home", "jobs", "messaging", "notifications"}

// ExtractDescription pulls the description text out of a posting page.
// Ranked selectors first, then keyword paragraphs, then any long paragraphs
// that don't look like navigation chrome.
func ExtractDescription(doc *goquery.Document) (string, bool) {
	for _, sel := range descriptionSelectors {
		var found string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := textWithNewlines(s)
			if len(text) <= 100 {
				return true
			}
			clean := joinNonEmptyLines(text)
			if len(clean) > 200 && !startsWithNav(clean) {
				found = clean
				return false
			}
			return true
		})
		if found != "" {
			return found, true
		}
	}

	pageText := textWithNewlines(doc.Selection)

	if desc, ok := keywordParagraphs(pageText); ok {
		return desc, true
	}
	if desc, ok := longParagraphs(pageText); ok {
		return desc, true
	}
	return "", false
}

func startsWithNav(s string) bool {
	l := strings.ToLower(s)
	return strings.HasPrefix(l, "sign in") ||
		strings.HasPrefix(l, "linkedin") ||
		strings.HasPrefix(l, "home")
}

// keywordParagraphs collects paragraphs mentioning job-section words plus
// two lines of context around each.
func keywordParagraphs(pageText string) (string, bool) {
	paragraphs := splitParagraphs(pageText, 30)

	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for i, para := range paragraphs {
		lower := strings.ToLower(para)
		matched := false
		for _, kw := range descriptionKeywords {
			if strings.Contains(lower, kw) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		add(para)
		for j := max(0, i-2); j < min(len(paragraphs), i+3); j++ {
			add(paragraphs[j])
		}
	}

	if len(out) == 0 {
		return "", false
	}
	if len(out) > 15 {
		out = out[:15]
	}
	return strings.Join(out, "\n"), true
}

// longParagraphs is the last resort: early long lines that aren't chrome.
func longParagraphs(pageText string) (string, bool) {
	if len(pageText) <= 500 {
		return "", false
	}
	paragraphs := splitParagraphs(pageText, 50)
	if len(paragraphs) > 20 {
		paragraphs = paragraphs[:20]
	}

	var kept []string
	for _, para := range paragraphs {
		lower := strings.ToLower(para)
		skip := false
		for _, phrase := range navPhrases {
			if strings.Contains(lower, phrase) {
				skip = true
				break
			}
		}
		if !skip {
			kept = append(kept, para)
		}
	}
	if len(kept) == 0 {
		return "", false
	}
	if len(kept) > 10 {
		kept = kept[:10]
	}
	return strings.Join(kept, "\n"), true
}

func splitParagraphs(text string, minLen int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > minLen {
			out = append(out, line)
		}
	}
	return out
}

func joinNonEmptyLines(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// textWithNewlines renders a selection's text content with one line per
// text node, so paragraph heuristics have boundaries to work with.
// goquery's Text() concatenates nodes without separators.
func textWithNewlines(s *goquery.Selection) string {
	var sb strings.Builder
	for _, node := range s.Nodes {
		walkText(node, &sb)
	}
	return strings.TrimSpace(sb.String())
}

func walkText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			sb.WriteString(t)
			sb.WriteByte('\n')
		}
		return
	}
	if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, sb)
	}
}

var (
	jobTypeRe   = regexp.MustCompile(`(?i)(Full-time|Part-time|Contract|Temporary|Internship)`)
	seniorityRe = regexp.MustCompile(`(?i)(Entry level|Associate|Mid-Senior level|Director|Executive)`)
	salaryRe    = regexp.MustCompile(`\$[\d,]+(?:\s*-\s*\$[\d,]+)?(?:\s*(?:per|/)\s*(?:year|hour|month))?`)
	industryRe  = regexp.MustCompile(`(?i)(Technology|Healthcare|Finance|Education|Manufacturing)`)
)

func ExtractJobType(pageText string) (string, bool) {
	m := jobTypeRe.FindString(pageText)
	return m, m != ""
}

func ExtractSeniority(pageText string) (string, bool) {
	m := seniorityRe.FindString(pageText)
	return m, m != ""
}

func ExtractSalary(pageText string) (string, bool) {
	m := salaryRe.FindString(pageText)
	return m, m != ""
}

func ExtractIndustry(pageText string) (string, bool) {
	m := industryRe.FindString(pageText)
	return m, m != ""
}

// ExtractSkills joins up to ten entries from a skills section, matched by
// class substring since LinkedIn churns the exact names.
func ExtractSkills(doc *goquery.Document) (string, bool) {
	section := doc.Find("section").FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		return strings.Contains(strings.ToLower(class), "skill")
	}).First()
	if section.Length() == 0 {
		return "", false
	}

	var skills []string
	section.Find("span, div").Each(func(_ int, s *goquery.Selection) {
		if len(skills) >= 10 {
			return
		}
		if t := util.CleanText(s.Text()); t != "" {
			skills = append(skills, t)
		}
	})
	if len(skills) == 0 {
		return "", false
	}
	return strings.Join(skills, ", "), true
}

var applicantPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\s+applicants?`),
	regexp.MustCompile(`over\s+(\d+)\s+applicants?`),
	regexp.MustCompile(`(\d+)\s+people\s+applied`),
}

// firstApplicantsEstimate stands in when the page only says the posting is
// young. "Be among the first N" is an invitation, not a count.
const firstApplicantsEstimate = 5

// ExtractApplicants scans page text for an applicant count. The qualitative
// "be among the first" phrasing wins over any number embedded in it.
func ExtractApplicants(pageText string) (int, bool) {
	t := strings.ToLower(pageText)

	if strings.Contains(t, "be among the first") && strings.Contains(t, "applicant") {
		return firstApplicantsEstimate, true
	}
	for _, re := range applicantPatterns {
		if m := re.FindStringSubmatch(t); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}
