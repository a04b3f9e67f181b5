package cmd

import "github.com/Jayant-ux/Rich-Onebox-for-Emails/cfg"

type GlobalFlags struct {
	configFile string
	quiet      bool
	verbose    bool
}

var (
	global GlobalFlags
	config *cfg.Config
)
