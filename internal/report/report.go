// Package report writes search results to dated CSV and JSON files and
// reads them back for downstream steps.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/rakmakan/ai-resume/internal/domain"
	"github.com/rakmakan/ai-resume/internal/scrape/util"
)

// DefaultRoot is where reports land unless the caller overrides it.
const DefaultRoot = "job_search_output"

// Metadata heads the JSON document and the CSV comment block.
type Metadata struct {
	SearchDate    string `json:"search_date"`
	JobTitle      string `json:"job_title"`
	Experience    string `json:"experience"`
	Location      string `json:"location"`
	MaxApplicants int    `json:"max_applicants"`
	TotalResults  int    `json:"total_results"`
	SearchMode    string `json:"search_mode"`
}

// Document is the on-disk JSON shape: metadata plus the job list.
type Document struct {
	Metadata Metadata           `json:"metadata"`
	Jobs     []domain.JobRecord `json:"jobs"`
}

// Paths locates one run's report files: <root>/<YYYY-MM-DD>/<title>_<HHMMSS>.{csv,json}.
type Paths struct {
	Dir  string
	CSV  string
	JSON string
}

// OutputPaths derives the report locations for a run started at now.
func OutputPaths(root, jobTitle string, now time.Time) Paths {
	dir := filepath.Join(root, now.Format("2006-01-02"))
	base := util.SanitizeFilename(jobTitle) + "_" + now.Format("150405")
	return Paths{
		Dir:  dir,
		CSV:  filepath.Join(dir, base+".csv"),
		JSON: filepath.Join(dir, base+".json"),
	}
}

// Result reports per-file outcomes. A failed CSV write never blocks the
// JSON write, and vice versa.
type Result struct {
	CSVPath  string
	JSONPath string
	CSVErr   error
	JSONErr  error
}

// OK is true when both files made it to disk.
func (r Result) OK() bool {
	return r.CSVErr == nil && r.JSONErr == nil
}

// Write renders both report files. File-level failures are logged and
// reported in the Result, not returned: the caller decides whether a
// partial save is fatal.
func Write(records []domain.JobRecord, params domain.SearchParams, paths Paths, now time.Time) Result {
	res := Result{CSVPath: paths.CSV, JSONPath: paths.JSON}

	if err := os.MkdirAll(paths.Dir, 0o755); err != nil {
		err = fmt.Errorf("create output dir: %w", err)
		res.CSVErr, res.JSONErr = err, err
		log.Printf("[report] %v", err)
		return res
	}

	meta := Metadata{
		SearchDate:    now.Format("2006-01-02 15:04:05"),
		JobTitle:      params.Title,
		Experience:    params.ExperienceLabel(),
		Location:      params.LocationLabel(),
		MaxApplicants: params.MaxApplicants,
		TotalResults:  len(records),
		SearchMode:    params.Mode(),
	}

	if err := writeCSV(paths.CSV, records, meta); err != nil {
		res.CSVErr = err
		log.Printf("[report] csv: %v", err)
	} else {
		log.Printf("[report] csv results saved to %s", paths.CSV)
	}

	if err := writeJSON(paths.JSON, records, meta); err != nil {
		res.JSONErr = err
		log.Printf("[report] json: %v", err)
	} else {
		log.Printf("[report] json results saved to %s", paths.JSON)
	}

	return res
}

// writeCSV emits a #-commented metadata block, the header row, then one
// row per record.
func writeCSV(path string, records []domain.JobRecord, meta Metadata) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	header := fmt.Sprintf(
		"# Job Search Results\n"+
			"# Search Date: %s\n"+
			"# Job Title: %s\n"+
			"# Experience: %s years\n"+
			"# Location: %s\n"+
			"# Max Applicants: %d\n"+
			"# Total Results: %d\n"+
			"#\n",
		meta.SearchDate, meta.JobTitle, meta.Experience, meta.Location,
		meta.MaxApplicants, meta.TotalResults,
	)
	if _, err := f.WriteString(header); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(domain.CSVHeader); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	for _, rec := range records {
		if err := w.Write(rec.CSVRow()); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func writeJSON(path string, records []domain.JobRecord, meta Metadata) error {
	if records == nil {
		records = []domain.JobRecord{}
	}
	doc := Document{Metadata: meta, Jobs: records}

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadDocument loads a JSON report back; the orchestrator uses this for
// the job title and the post-search summary.
func ReadDocument(path string) (Document, error) {
	var doc Document
	b, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("read report %s: %w", path, err)
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return doc, fmt.Errorf("parse report %s: %w", path, err)
	}
	return doc, nil
}

// LatestJSON finds the most recently modified .json report under root,
// searching dated subdirectories too.
func LatestJSON(root string) (string, error) {
	var newest string
	var newestMod time.Time

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if newest == "" || info.ModTime().After(newestMod) {
			newest = path
			newestMod = info.ModTime()
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("scan %s: %w", root, err)
	}
	if newest == "" {
		return "", fmt.Errorf("no json reports under %s", root)
	}
	return newest, nil
}
