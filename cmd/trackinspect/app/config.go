package app

import (
	"errors"
	"flag"
	"os"
)

type Config struct {
	ArchivePath string
	SurveyID    string
	Verbose     bool
}

func NewConfigFromCLI() (*Config, error) {
	return parseFlags(flag.CommandLine, os.Args[1:])
}

func parseFlags(fs *flag.FlagSet, args []string) (*Config, error) {
	var c Config
	fs.StringVar(&c.ArchivePath, "a", "", "Path to the .esx archive")
	fs.StringVar(&c.SurveyID, "s", "", "Inspect only the survey with this ID")
	fs.BoolVar(&c.Verbose, "verbose", false, "Log every scan of every track")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if c.ArchivePath == "" {
		fs.Usage()
		return nil, errors.New("archive path is required")
	}

	return &c, nil
}
