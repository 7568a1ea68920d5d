// Package secrets stores the IMAP password and the AI-tool API key in the OS
// keychain so they stay out of YAML files. Environment variables are the
// fallback for headless machines without a keychain daemon.
package secrets

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	IMAPService = "ai-resume-imap"
	AIService   = "ai-resume-ai"

	imapPasswordEnv = "JOBSEARCH_IMAP_PASSWORD"
	aiKeyEnv        = "RESUME_AI_API_KEY"
)

// IMAPPassword looks up the password for account, keychain first, then the
// JOBSEARCH_IMAP_PASSWORD environment variable.
func IMAPPassword(account string) (string, error) {
	if strings.TrimSpace(account) != "" {
		if pw, err := keyring.Get(IMAPService, account); err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}
	if pw := strings.TrimSpace(os.Getenv(imapPasswordEnv)); pw != "" {
		return pw, nil
	}
	return "", errors.New("imap password not found (set it with -set-imap-password or " + imapPasswordEnv + ")")
}

func SetIMAPPassword(account, password string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("imap account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(IMAPService, account, password)
}

func DeleteIMAPPassword(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("imap account name is empty")
	}
	return keyring.Delete(IMAPService, account)
}

// AIKey looks up the AI-tool API key, keychain first, then RESUME_AI_API_KEY.
func AIKey() (string, error) {
	if key, err := keyring.Get(AIService, "default"); err == nil && strings.TrimSpace(key) != "" {
		return key, nil
	}
	if key := strings.TrimSpace(os.Getenv(aiKeyEnv)); key != "" {
		return key, nil
	}
	return "", errors.New("ai api key not found (set it with workflow -set-ai-key or " + aiKeyEnv + ")")
}

func SetAIKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("api key is empty")
	}
	return keyring.Set(AIService, "default", key)
}

// Probe reports whether the keychain backend answers at all; a missing
// entry is fine, a dead daemon is not.
func Probe() error {
	_, err := keyring.Get(AIService, "default")
	if err == nil || errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}
