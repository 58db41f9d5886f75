// Package secrets keeps the IMAP password in the OS keychain so it never
// lands in config files or the database.
package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"jobmatch-engine/internal/config"
)

const KeyringService = "jobmatch"

func GetIMAPPassword(account string) (string, error) {
	if strings.TrimSpace(account) == "" {
		return "", errors.New("keyring account name is empty")
	}
	pw, err := keyring.Get(KeyringService, account)
	if err != nil {
		return "", fmt.Errorf("imap password not found in keychain: %w", err)
	}
	if strings.TrimSpace(pw) == "" {
		return "", errors.New("imap password in keychain is empty")
	}
	return pw, nil
}

func SetIMAPPassword(account, password string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, account, password)
}

func DeleteIMAPPassword(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}

// IMAPKeyringAccount derives the keychain account name from the configured
// mailbox identity, so switching accounts never reads a stale secret.
func IMAPKeyringAccount(cfg config.Config) string {
	return fmt.Sprintf("jobmatch:imap:%s@%s",
		cfg.Sources.LinkedInMail.Username,
		cfg.Sources.LinkedInMail.IMAPHost,
	)
}
