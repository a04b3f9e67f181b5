package cmd

import (
	"fmt"
	"strings"

	"github.com/Jayant-ux/Rich-Onebox-for-Emails/email"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/index"
	"github.com/Jayant-ux/Rich-Onebox-for-Emails/term"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the local index",
	Long:  "\nSearch the local index directly, without going through the HTTP API. The query matches subject, body and sender.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSearch,
}

var searchFlags struct {
	account  string
	folder   string
	category string
	limit    int
}

func init() {
	flag := searchCmd.Flags()
	flag.StringVar(&searchFlags.account, "account", "", "only show messages of this account")
	flag.StringVar(&searchFlags.folder, "folder", "", "only show messages of this folder")
	flag.StringVar(&searchFlags.category, "category", "", "only show messages with this category")
	flag.IntVar(&searchFlags.limit, "limit", 0, "maximum number of messages to display")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	sink, err := index.NewSink(config.Index, debugLogger())
	if err != nil {
		return fmt.Errorf("cannot open index: %w", err)
	}
	defer sink.Close()

	filter := email.Filter{
		AccountID: searchFlags.account,
		Folder:    searchFlags.folder,
		Category:  searchFlags.category,
		Limit:     searchFlags.limit,
	}
	if len(args) > 0 {
		filter.Query = args[0]
	}

	documents, err := sink.Search(filter)
	if err != nil {
		return fmt.Errorf("cannot search the index: %w", err)
	}
	if len(documents) == 0 {
		term.Warn("no message found")
		return nil
	}

	rows := make([][]string, 0, len(documents))
	for _, doc := range documents {
		rows = append(rows, []string{
			doc.ID,
			doc.AccountID,
			doc.Date.Format("2006-01-02 15:04"),
			doc.Subject,
			strings.Join(doc.From, ", "),
			doc.Category,
		})
	}
	return term.Table([]string{"ID", "Account", "Date", "Subject", "From", "Category"}, rows)
}
