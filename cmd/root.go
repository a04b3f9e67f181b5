package cmd

import (
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/Jayant-ux/Rich-Onebox-for-Emails/cfg"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/lib"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/term"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "onebox",
	Short: "Onebox: synchronize IMAP accounts into one searchable inbox",
	Long:  "\nOnebox synchronizes the inbox of every configured IMAP account into a local searchable index, keeps it live through IMAP idle and serves it over HTTP.",
}

func init() {
	cobra.OnInitialize(initConfig, initLog)
	flag := rootCmd.PersistentFlags()
	flag.StringVarP(&global.configFile, "config", "c", "onebox.yaml", "configuration file")
	flag.BoolVarP(&global.quiet, "quiet", "q", false, "only display warnings and errors")
	flag.BoolVarP(&global.verbose, "verbose", "v", false, "display debugging information")
}

func initConfig() {
	var err error
	config, err = cfg.LoadFromFile(global.configFile)
	if errors.Is(err, fs.ErrNotExist) {
		// no file is fine, accounts can come from the environment
		config = cfg.Default()
		err = nil
	}
	if err != nil {
		term.Errorf("cannot open or read configuration file: %s", err)
		os.Exit(1)
	}
	config.Accounts = cfg.MergeAccounts(config.Accounts, cfg.AccountsFromEnv(os.Getenv))
}

func initLog() {
	switch {
	case global.verbose:
		term.SetLevel(term.LevelDebug)
	case global.quiet:
		term.SetLevel(term.LevelWarn)
	}
}

// debugLogger returns the logger handed to the long-running components:
// everything in verbose mode, nothing otherwise.
func debugLogger() lib.Logger {
	if global.verbose {
		return log.Default()
	}
	return &lib.NoLog{}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		term.Error(err)
		os.Exit(1)
	}
}
