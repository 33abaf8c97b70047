package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/smartpool/internal/flagx"
)

var knownFlags = []string{"-s", "-l", "-t", "-v", "-log-format"}

// parseFlags populates selected Config fields from command-line flags.
//
//	-s string      local data file
//	-l string      interface language (pt, en, es)
//	-t int         remote request timeout in seconds
//	-v string      log level
//	-log-format    text or json
//
// Unknown flags are filtered out with flagx.FilterArgs so other stages can
// own them.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("smartpool", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.StorePath, "s", cfg.StorePath, "path to the local data file")
	fs.StringVar(&cfg.Language, "l", cfg.Language, "interface language")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "remote request timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.RequestTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
