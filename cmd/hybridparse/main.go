// hybridparse uploads documents to a parsing provider, merges image and OCR
// regions into composite elements and assembles the result as Markdown.
//
// Configuration:
//
// A YAML file (--config) is merged over the defaults; .env files and
// environment variables override it:
//
//	server:
//	  port: 8000
//	storage:
//	  dir: ./storage
//	  backend: sqlite
//	parsing:
//	  provider: upstage
//	upstage:
//	  api_key: ...
//
// Usage:
//
//	hybridparse [--config config.yml] serve [--addr :8000]
//	hybridparse [--config config.yml] parse [options] <file>
//
// Example:
//
//	export UPSTAGE_API_KEY=...
//	hybridparse parse --markdown scan.md --hocr scan.hocr --output scan_ocr.pdf scan.png
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/gardar/hybridparse/internal/config"
)

var (
	Version = "dev"
	Commit  = "none"
)

func main() {
	app := &cli.App{
		Name:    "hybridparse",
		Usage:   "Parse documents into Markdown with OCR-enhanced composite elements",
		Version: fmt.Sprintf("%s (%s)", Version, Commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				EnvVars: []string{"HYBRIDPARSE_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error); overrides the configuration",
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			parseCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// load reads the configuration and creates the logger for a command.
func load(c *cli.Context) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	return cfg, config.NewLogger(cfg.LogLevel), nil
}
