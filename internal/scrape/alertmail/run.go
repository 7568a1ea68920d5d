package alertmail

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-imap/v2"

	"github.com/rakmakan/ai-resume/internal/domain"
	"github.com/rakmakan/ai-resume/internal/secrets"
)

// Config locates the mailbox holding the job alerts. Values come from the
// environment; the password comes from the keychain.
type Config struct {
	Addr     string // host:port
	Username string
	Mailbox  string

	MaxMessages int
	// MaxAge bounds the IMAP search; older unseen mail is ignored.
	MaxAge time.Duration
}

// FromEnv reads JOBSEARCH_IMAP_* settings. Port defaults to 993, mailbox to
// INBOX.
func FromEnv() (Config, error) {
	host := strings.TrimSpace(os.Getenv("JOBSEARCH_IMAP_HOST"))
	user := strings.TrimSpace(os.Getenv("JOBSEARCH_IMAP_USER"))
	if host == "" || user == "" {
		return Config{}, errors.New("JOBSEARCH_IMAP_HOST and JOBSEARCH_IMAP_USER must be set for alert ingestion")
	}

	addr := host
	if !strings.Contains(addr, ":") {
		port := strings.TrimSpace(os.Getenv("JOBSEARCH_IMAP_PORT"))
		if port == "" {
			port = "993"
		}
		addr += ":" + port
	}

	mailbox := strings.TrimSpace(os.Getenv("JOBSEARCH_IMAP_MAILBOX"))
	if mailbox == "" {
		mailbox = "INBOX"
	}

	return Config{
		Addr:        addr,
		Username:    user,
		Mailbox:     mailbox,
		MaxMessages: 200,
		MaxAge:      90 * 24 * time.Hour,
	}, nil
}

// Account is the keychain account name for this mailbox.
func (c Config) Account() string {
	host := c.Addr
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return c.Username + "@" + host
}

// Fetch logs in, parses every unseen job-alert email, marks the processed
// ones seen, and returns the records found. Non-alert messages stay unseen.
func Fetch(ctx context.Context, cfg Config) ([]domain.JobRecord, error) {
	password, err := secrets.IMAPPassword(cfg.Account())
	if err != nil {
		return nil, err
	}

	dctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	c, err := dialAndLogin(dctx, cfg.Addr, cfg.Username, password)
	if err != nil {
		return nil, err
	}
	defer logoutAndClose(c)

	if _, err := c.Select(cfg.Mailbox, &imap.SelectOptions{ReadOnly: false}).Wait(); err != nil {
		return nil, fmt.Errorf("imap select %q: %w", cfg.Mailbox, err)
	}

	cutoff := time.Now().Add(-cfg.MaxAge)
	msgs, err := fetchUnseen(dctx, c, cfg.MaxMessages, cutoff)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		log.Printf("[alerts] no unseen messages in %s", cfg.Mailbox)
		return nil, nil
	}
	log.Printf("[alerts] %d unseen messages", len(msgs))

	var records []domain.JobRecord
	processed := make([]imap.UID, 0, len(msgs))

	for _, m := range msgs {
		if dctx.Err() != nil {
			break
		}
		subject := decodeSubject(m.Subject)
		if !looksLikeAlert(m.From, subject) {
			continue
		}

		body := htmlBody(m.Raw)
		if body == "" {
			processed = append(processed, m.UID)
			continue
		}

		recs, perr := ParseAlertHTML(body, m.Date)
		if perr != nil {
			log.Printf("[alerts] parse %q: %v", subject, perr)
			continue
		}
		log.Printf("[alerts] %q: %d jobs", subject, len(recs))
		records = append(records, recs...)
		processed = append(processed, m.UID)
	}

	if err := markSeen(c, processed); err != nil {
		log.Printf("[alerts] %v", err)
	}
	return records, nil
}
