package cli

import (
	"errors"
	"fmt"

	"github.com/raidtrust/raidtrust/pkg/data"
	"github.com/urfave/cli/v2"
)

var (
	feedURLFlag = &cli.StringFlag{
		Name:  "url",
		Usage: "Feedback feed URL (defaults to feed_url from config)",
	}

	importCmd = &cli.Command{
		Name:            "import",
		Aliases:         []string{"i"},
		Usage:           "Import feedback events from the remote feed",
		HideHelpCommand: true,
		Action:          cmdImportFeedback,
		Flags:           []cli.Flag{feedURLFlag},
	}
)

func cmdImportFeedback(c *cli.Context) error {
	cfg := getConfig(c)

	url := firstOf(c.String(feedURLFlag.Name), cfg.FeedURL)
	if url == "" {
		return errors.New("feed URL required: pass --url or set feed_url in config")
	}

	res, err := data.ImportFeedback(c.Context, cfg.DB, url, getFeedToken())
	if err != nil {
		return fmt.Errorf("failed to import feedback: %w", err)
	}

	return encode(res)
}
