// Package cli implements the raidtrust command line app.
package cli

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path"
	"time"

	"github.com/raidtrust/raidtrust/pkg/config"
	"github.com/raidtrust/raidtrust/pkg/data"
	"github.com/raidtrust/raidtrust/pkg/logging"
	urfave "github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

const (
	appName      = "raidtrust"
	appConfigKey = "app-config"

	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	outputFormat = formatJSON

	debugFlag = &urfave.BoolFlag{
		Name:  "debug",
		Usage: "Prints verbose logs (optional, default: false)",
	}

	dbFilePathFlag = &urfave.StringFlag{
		Name:  "db",
		Usage: "Path to the Sqlite database file",
	}

	formatFlag = &urfave.StringFlag{
		Name:  "format",
		Usage: "Output format [json, yaml]",
	}
)

// SetVersion overrides the build metadata set via ldflags.
func SetVersion(v, c, d string) {
	if v != "" {
		version = v
	}
	commit = c
	date = d
}

// Execute creates and runs the CLI application.
func Execute() {
	logging.SetDefaultCLILogger("info")

	app := newApp()
	if err := app.Run(os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

type appConfig struct {
	DBPath  string
	FeedURL string
	Debug   bool
	DB      *sql.DB
}

func getConfig(c *urfave.Context) *appConfig {
	return c.App.Metadata[appConfigKey].(*appConfig)
}

func newApp() *urfave.App {
	return &urfave.App{
		Name:                 appName,
		Version:              fmt.Sprintf("%s (%s - %s)", version, commit, date),
		Compiled:             time.Now(),
		EnableBashCompletion: true,
		HideHelpCommand:      true,
		Usage:                "CLI for the player trust platform: record feedback, recompute scores, query subjects",
		Flags: []urfave.Flag{
			debugFlag,
			dbFilePathFlag,
			formatFlag,
		},
		Commands: []*urfave.Command{
			subjectCmd,
			feedbackCmd,
			scoreCmd,
			importCmd,
			authCmd,
			stateCmd,
		},
		Before: func(c *urfave.Context) error {
			home, _, err := config.GetOrCreateHomeDir(appName)
			if err != nil {
				return fmt.Errorf("resolving home dir: %w", err)
			}

			conf, err := config.ReadOrCreate(home)
			if err != nil {
				return fmt.Errorf("reading config: %w", err)
			}

			level := conf.LogLevel
			if c.Bool(debugFlag.Name) {
				level = "debug"
			}
			logging.SetDefaultCLILogger(level)

			outputFormat = formatJSON
			if f := firstOf(c.String(formatFlag.Name), conf.Format); f == formatYAML || f == "yml" {
				outputFormat = formatYAML
			}

			dbPath := firstOf(c.String(dbFilePathFlag.Name), conf.DBPath)
			if dbPath == "" {
				dbPath = path.Join(home, data.DataFileName)
			}

			if err := data.Init(dbPath); err != nil {
				return fmt.Errorf("initializing database: %w", err)
			}

			db, err := data.GetDB(dbPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}

			c.App.Metadata[appConfigKey] = &appConfig{
				DBPath:  dbPath,
				FeedURL: conf.FeedURL,
				Debug:   c.Bool(debugFlag.Name),
				DB:      db,
			}
			return nil
		},
		After: func(c *urfave.Context) error {
			if cfg, ok := c.App.Metadata[appConfigKey].(*appConfig); ok && cfg.DB != nil {
				cfg.DB.Close()
			}
			return nil
		},
	}
}

func firstOf(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func encode(v any) error {
	if outputFormat == formatYAML {
		return yaml.NewEncoder(os.Stdout).Encode(v)
	}
	e := json.NewEncoder(os.Stdout)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
