package domain

import "strconv"

// Sentinel values stamped into records when a field cannot be extracted.
// Consumers of the CSV/JSON reports key off these exact strings.
const (
	NotAvailable = "N/A"

	DescFetchFailed = "Could not fetch job description"
	DescNotFound    = "Job description not available"
	DescBasicMode   = "Use detailed mode to get full job descriptions"
	FieldBasicMode  = "Not fetched in basic mode"

	SourceLinkedIn       = "LinkedIn"
	SourceLinkedInAlerts = "LinkedIn Alerts"
)

// JobRecord is one scraped job posting. The JSON tags define the on-disk
// report schema; CSVHeader must stay in the same order.
//
// A record is created by listing extraction with the structural fields set
// (missing ones degrade to NotAvailable), filled in at most once by the
// detail fetch, and treated as immutable after that.
type JobRecord struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Link        string `json:"link"`
	JobID       string `json:"job_id"`
	Applicants  *int   `json:"applicants"`
	PostingDate string `json:"posting_date"`

	Description string `json:"job_description"`
	JobType     string `json:"job_type"`
	Seniority   string `json:"seniority_level"`
	CompanySize string `json:"company_size"`
	Industry    string `json:"industry"`
	Skills      string `json:"skills_required"`
	SalaryRange string `json:"salary_range"`

	Source    string `json:"source"`
	ScrapedAt string `json:"scraped_at"`
}

// CSVHeader is the column order of the CSV report.
var CSVHeader = []string{
	"title", "company", "location", "link", "job_id", "applicants",
	"posting_date", "job_description", "job_type", "seniority_level",
	"company_size", "industry", "skills_required", "salary_range",
	"source", "scraped_at",
}

// CSVRow renders the record in CSVHeader order. An unknown applicant count
// becomes an empty cell.
func (j JobRecord) CSVRow() []string {
	applicants := ""
	if j.Applicants != nil {
		applicants = strconv.Itoa(*j.Applicants)
	}
	return []string{
		j.Title, j.Company, j.Location, j.Link, j.JobID, applicants,
		j.PostingDate, j.Description, j.JobType, j.Seniority,
		j.CompanySize, j.Industry, j.Skills, j.SalaryRange,
		j.Source, j.ScrapedAt,
	}
}

// MarkBasicMode stamps the placeholders used when detail fetching is skipped.
func (j *JobRecord) MarkBasicMode() {
	j.Description = DescBasicMode
	j.JobType = FieldBasicMode
	j.Seniority = FieldBasicMode
	j.CompanySize = FieldBasicMode
	j.Industry = FieldBasicMode
	j.Skills = FieldBasicMode
	j.SalaryRange = FieldBasicMode
}
