// Command jobsearch scrapes LinkedIn job listings, filters them by relevance
// and applicant count, and writes CSV/JSON reports. It doubles as the step-1
// collaborator of the workflow orchestrator.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rakmakan/ai-resume/internal/domain"
	"github.com/rakmakan/ai-resume/internal/report"
	"github.com/rakmakan/ai-resume/internal/scheduler"
	"github.com/rakmakan/ai-resume/internal/scrape"
	"github.com/rakmakan/ai-resume/internal/scrape/alertmail"
	"github.com/rakmakan/ai-resume/internal/scrape/linkedin"
	"github.com/rakmakan/ai-resume/internal/scrape/util"
	"github.com/rakmakan/ai-resume/internal/secrets"
)

type options struct {
	title         string
	location      string
	numResults    int
	maxApplicants int
	timeWindow    string
	experience    int
	details       bool
	outputDir     string

	dbPath    string
	noHistory bool
	history   bool

	fromAlerts bool
	watch      time.Duration
	quiet      bool

	titleAllow string
	titleBlock string

	setIMAPPassword bool
}

func main() {
	log.SetFlags(log.Ltime)
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.title, "title", "", "job title to search for")
	flag.StringVar(&opts.location, "location", "", "location (city, 'Canada' for major cities, empty for any)")
	flag.IntVar(&opts.numResults, "num-results", domain.DefaultMaxResults, "maximum number of results")
	flag.IntVar(&opts.maxApplicants, "max-applicants", domain.DefaultMaxApplicants, "skip jobs with more reported applicants than this")
	flag.StringVar(&opts.timeWindow, "time-window", "48h", "posting age window: 24h, 48h, 1w, 2w or a raw rNNN code")
	flag.IntVar(&opts.experience, "experience", -1, "years of experience (-1 = unspecified)")
	flag.BoolVar(&opts.details, "details", false, "fetch full descriptions (slower)")
	flag.StringVar(&opts.outputDir, "output-dir", report.DefaultRoot, "report output root")
	flag.StringVar(&opts.dbPath, "db", "", "history database path (default <output-dir>/history.db)")
	flag.BoolVar(&opts.noHistory, "no-history", false, "do not record this run in the history database")
	flag.BoolVar(&opts.history, "history", false, "list recent searches and exit")
	flag.BoolVar(&opts.fromAlerts, "from-alerts", false, "ingest LinkedIn job-alert emails instead of scraping")
	flag.DurationVar(&opts.watch, "watch", 0, "re-run on this interval, reporting only jobs new to the history db")
	flag.BoolVar(&opts.quiet, "quiet", false, "suppress per-job log lines")
	flag.StringVar(&opts.titleAllow, "title-allow", "", "comma-separated title keywords that always pass the filter")
	flag.StringVar(&opts.titleBlock, "title-block", "", "comma-separated title keywords that always fail the filter")
	flag.BoolVar(&opts.setIMAPPassword, "set-imap-password", false, "store the IMAP password in the OS keychain and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.setIMAPPassword {
		if err := storeIMAPPassword(); err != nil {
			log.Fatalf("[jobsearch] %v", err)
		}
		return
	}

	if opts.history {
		if err := showHistory(ctx, opts); err != nil {
			log.Fatalf("[jobsearch] %v", err)
		}
		return
	}

	if opts.title == "" {
		if !stdinIsTerminal() {
			fmt.Fprintln(os.Stderr, "error: -title is required")
			flag.Usage()
			os.Exit(2)
		}
		promptParams(&opts)
	}

	params, err := buildParams(opts)
	if err != nil {
		log.Fatalf("[jobsearch] %v", err)
	}

	r := &runner{opts: opts, params: params}

	if opts.watch > 0 {
		log.Printf("[jobsearch] watch mode, interval %s (ctrl-c to stop)", opts.watch)
		scheduler.Every(ctx, opts.watch, "jobsearch", r.runOnce)
		return
	}

	if err := r.runOnce(ctx); err != nil {
		if ctx.Err() != nil {
			log.Printf("[jobsearch] interrupted, partial results handled above")
			os.Exit(1)
		}
		log.Fatalf("[jobsearch] %v", err)
	}
}

func buildParams(opts options) (domain.SearchParams, error) {
	window, ok := domain.ResolveTimeWindow(opts.timeWindow)
	if !ok {
		return domain.SearchParams{}, fmt.Errorf("unknown time window %q", opts.timeWindow)
	}

	params := domain.SearchParams{
		Title:         strings.TrimSpace(opts.title),
		RawLocation:   strings.TrimSpace(opts.location),
		Locations:     util.ExpandLocations(opts.location),
		TimeWindow:    window,
		MaxApplicants: opts.maxApplicants,
		MaxResults:    opts.numResults,
		FetchDetails:  opts.details,
	}
	if params.Title == "" {
		return params, fmt.Errorf("job title is required")
	}
	if opts.experience >= 0 {
		exp := opts.experience
		params.Experience = &exp
	}
	return params, nil
}

func newSearcher(ctx context.Context, opts options) *scrape.Searcher {
	client := linkedin.NewClient(linkedin.DefaultLimiter())
	client.Warmup(ctx)

	s := scrape.NewSearcher(client)
	s.Quiet = opts.quiet
	s.Extra = scrape.ExtraFilters{
		TitleAllow: splitList(opts.titleAllow),
		TitleBlock: splitList(opts.titleBlock),
	}
	return s
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func storeIMAPPassword() error {
	cfg, err := alertmail.FromEnv()
	if err != nil {
		return err
	}
	fmt.Printf("IMAP password for %s: ", cfg.Account())
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	if err := secrets.SetIMAPPassword(cfg.Account(), strings.TrimSpace(line)); err != nil {
		return err
	}
	log.Printf("[jobsearch] password stored in keychain for %s", cfg.Account())
	return nil
}

func stdinIsTerminal() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
