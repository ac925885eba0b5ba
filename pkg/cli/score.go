package cli

import (
	"fmt"

	"github.com/raidtrust/raidtrust/pkg/data"
	"github.com/urfave/cli/v2"
)

var (
	scoreSubjectFlag = &cli.StringFlag{
		Name:     "subject",
		Usage:    "Subject handle",
		Required: true,
	}

	scoreComputeFlag = &cli.BoolFlag{
		Name:  "compute",
		Usage: "Force a fresh computation even when a cached score is available",
	}

	scoreWorkersFlag = &cli.IntFlag{
		Name:  "workers",
		Usage: "Number of concurrent scoring workers",
	}

	scoreCmd = &cli.Command{
		Name:            "score",
		Usage:           "Trust score operations",
		HideHelpCommand: true,
		Subcommands: []*cli.Command{
			{
				Name:   "get",
				Usage:  "Get a subject's trust score (cached when fresh)",
				Action: cmdGetScore,
				Flags: []cli.Flag{
					scoreSubjectFlag,
					scoreComputeFlag,
				},
			},
			{
				Name:    "recompute",
				Usage:   "Recompute all stale trust scores",
				Aliases: []string{"r"},
				Action:  cmdRecomputeScores,
				Flags:   []cli.Flag{scoreWorkersFlag},
			},
			{
				Name:    "distribution",
				Usage:   "Show the trust bucket distribution and review queue",
				Aliases: []string{"d"},
				Action:  cmdScoreDistribution,
			},
		},
	}
)

func cmdGetScore(c *cli.Context) error {
	cfg := getConfig(c)
	handle := c.String(scoreSubjectFlag.Name)

	var (
		s   *data.SubjectScore
		err error
	)
	if c.Bool(scoreComputeFlag.Name) {
		s, err = data.ComputeScore(cfg.DB, handle)
	} else {
		s, err = data.GetOrComputeScore(cfg.DB, handle)
	}
	if err != nil {
		return fmt.Errorf("failed to get score: %w", err)
	}

	return encode(s)
}

func cmdRecomputeScores(c *cli.Context) error {
	cfg := getConfig(c)

	res, err := data.RecomputeScores(cfg.DB, c.Int(scoreWorkersFlag.Name))
	if err != nil {
		return fmt.Errorf("failed to recompute scores: %w", err)
	}

	return encode(res)
}

func cmdScoreDistribution(c *cli.Context) error {
	cfg := getConfig(c)

	d, err := data.GetScoreDistribution(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to get score distribution: %w", err)
	}

	return encode(d)
}
