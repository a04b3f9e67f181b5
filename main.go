package main

import "github.com/Jayant-ux/Rich-Onebox-for-Emails/cmd"

// these fields are populated by goreleaser
var (
	version = ""
	commit  = ""
	date    = ""
	builtBy = ""
)

func main() {
	cmd.SetApp(version, commit, date, builtBy)
	cmd.Execute()
}
