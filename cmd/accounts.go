package cmd

import (
	"strings"

	"github.com/Jayant-ux/Rich-Onebox-for-Emails/term"
	"github.com/spf13/cobra"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Display the resolved accounts",
	Long:  "\nDisplay the accounts resolved from the configuration file and the environment, passwords masked.",
	RunE:  runAccounts,
}

func init() {
	rootCmd.AddCommand(accountsCmd)
}

func runAccounts(cmd *cobra.Command, args []string) error {
	if len(config.Accounts) == 0 {
		term.Warn("no account configured: the engine will serve sample documents")
		return nil
	}
	rows := make([][]string, 0, len(config.Accounts))
	for _, account := range config.Accounts {
		transport := "TLS"
		if account.NoTLS {
			transport = "plain text"
		} else if account.SkipTLSVerification {
			transport = "TLS (unverified)"
		}
		rows = append(rows, []string{
			account.ID,
			account.Addr(),
			transport,
			maskPassword(account.Password),
		})
	}
	return term.Table([]string{"Account", "Server", "Transport", "Password"}, rows)
}

func maskPassword(password string) string {
	if password == "" {
		return ""
	}
	return strings.Repeat("*", 8)
}
