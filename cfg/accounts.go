package cfg

import (
	"fmt"
	"net"
	"strconv"
)

const envPrefix = "ONEBOX_IMAP"

// Account is one remote mailbox identity. It is immutable once resolved
// and lives for the whole process.
type Account struct {
	// ID is the mailbox address, also used as the login name
	ID       string `yaml:"id"`
	Host     string `yaml:"host"`
	Port     uint16 `yaml:"port"`
	Password string `yaml:"password"`
	// NoTLS connects in plain text, for local testing only
	NoTLS               bool `yaml:"noTLS"`
	SkipTLSVerification bool `yaml:"skipTLSVerification"`
}

// Addr returns host:port, defaulting to the standard IMAP ports.
func (a Account) Addr() string {
	port := a.Port
	if port == 0 {
		if a.NoTLS {
			port = 143
		} else {
			port = 993
		}
	}
	return net.JoinHostPort(a.Host, strconv.Itoa(int(port)))
}

// AccountsFromEnv resolves accounts from numbered sets of environment
// variables:
//
//	ONEBOX_IMAP1_USER, ONEBOX_IMAP1_PASSWORD, ONEBOX_IMAP1_HOST,
//	ONEBOX_IMAP1_PORT, ONEBOX_IMAP1_TLS, ONEBOX_IMAP2_USER, ...
//
// Scanning starts at 1 and stops at the first index without a user. Port
// defaults to the standard IMAP port and TLS defaults to on; malformed
// values fall back to those defaults. Zero accounts is a valid result.
func AccountsFromEnv(getenv func(string) string) []Account {
	accounts := make([]Account, 0)
	for n := 1; ; n++ {
		prefix := fmt.Sprintf("%s%d_", envPrefix, n)
		user := getenv(prefix + "USER")
		if user == "" {
			break
		}
		account := Account{
			ID:       user,
			Host:     getenv(prefix + "HOST"),
			Password: getenv(prefix + "PASSWORD"),
		}
		if port := getenv(prefix + "PORT"); port != "" {
			if value, err := strconv.ParseUint(port, 10, 16); err == nil {
				account.Port = uint16(value)
			}
		}
		if tls := getenv(prefix + "TLS"); tls != "" {
			if value, err := strconv.ParseBool(tls); err == nil {
				account.NoTLS = !value
			}
		}
		accounts = append(accounts, account)
	}
	return accounts
}

// MergeAccounts appends environment accounts after file accounts. The
// first occurrence of a duplicated ID wins.
func MergeAccounts(file, env []Account) []Account {
	merged := make([]Account, 0, len(file)+len(env))
	seen := make(map[string]bool, len(file)+len(env))
	for _, account := range append(append([]Account{}, file...), env...) {
		if account.ID == "" || seen[account.ID] {
			continue
		}
		seen[account.ID] = true
		merged = append(merged, account)
	}
	return merged
}
