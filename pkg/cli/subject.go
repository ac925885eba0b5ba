package cli

import (
	"fmt"

	"github.com/raidtrust/raidtrust/pkg/data"
	"github.com/urfave/cli/v2"
)

const queryResultLimitDefault = 100

var (
	subjectHandleFlag = &cli.StringFlag{
		Name:     "handle",
		Usage:    "Subject handle (in-game player name)",
		Required: true,
	}

	subjectNameFlag = &cli.StringFlag{
		Name:  "name",
		Usage: "Subject display name",
	}

	subjectPlatformFlag = &cli.StringFlag{
		Name:  "platform",
		Usage: "Subject platform (e.g. steam, psn, xbox)",
	}

	subjectLikeFlag = &cli.StringFlag{
		Name:     "like",
		Usage:    "Fuzzy search subjects by handle or display name",
		Required: true,
	}

	queryLimitFlag = &cli.IntFlag{
		Name:  "limit",
		Usage: "Limits number of results returned",
		Value: queryResultLimitDefault,
	}

	oldHandleFlag = &cli.StringFlag{
		Name:     "old",
		Usage:    "Current subject handle",
		Required: true,
	}

	newHandleFlag = &cli.StringFlag{
		Name:     "new",
		Usage:    "New subject handle",
		Required: true,
	}

	subjectCmd = &cli.Command{
		Name:            "subject",
		Aliases:         []string{"s"},
		Usage:           "Subject (player) operations",
		HideHelpCommand: true,
		Subcommands: []*cli.Command{
			{
				Name:   "add",
				Usage:  "Register a subject",
				Action: cmdAddSubject,
				Flags: []cli.Flag{
					subjectHandleFlag,
					subjectNameFlag,
					subjectPlatformFlag,
				},
			},
			{
				Name:    "list",
				Usage:   "List subjects matching a fuzzy query",
				Aliases: []string{"l"},
				Action:  cmdListSubjects,
				Flags: []cli.Flag{
					subjectLikeFlag,
					queryLimitFlag,
				},
			},
			{
				Name:    "detail",
				Usage:   "Get subject details including the stored score",
				Aliases: []string{"d"},
				Action:  cmdSubjectDetail,
				Flags: []cli.Flag{
					subjectHandleFlag,
				},
			},
			{
				Name:    "rename",
				Usage:   "Change a subject's handle, keeping its feedback history",
				Aliases: []string{"r"},
				Action:  cmdRenameSubject,
				Flags: []cli.Flag{
					oldHandleFlag,
					newHandleFlag,
				},
			},
		},
	}
)

func cmdAddSubject(c *cli.Context) error {
	cfg := getConfig(c)

	s := &data.Subject{
		Handle:      c.String(subjectHandleFlag.Name),
		DisplayName: c.String(subjectNameFlag.Name),
		Platform:    c.String(subjectPlatformFlag.Name),
	}

	if err := data.SaveSubject(cfg.DB, s); err != nil {
		return fmt.Errorf("failed to save subject: %w", err)
	}

	return encode(s)
}

func cmdListSubjects(c *cli.Context) error {
	cfg := getConfig(c)

	list, err := data.QuerySubjects(cfg.DB, c.String(subjectLikeFlag.Name), c.Int(queryLimitFlag.Name))
	if err != nil {
		return fmt.Errorf("failed to query subjects: %w", err)
	}

	return encode(list)
}

func cmdRenameSubject(c *cli.Context) error {
	cfg := getConfig(c)

	res, err := data.RenameSubject(cfg.DB, c.String(oldHandleFlag.Name), c.String(newHandleFlag.Name))
	if err != nil {
		return fmt.Errorf("failed to rename subject: %w", err)
	}

	return encode(res)
}

func cmdSubjectDetail(c *cli.Context) error {
	cfg := getConfig(c)
	handle := c.String(subjectHandleFlag.Name)

	s, err := data.GetSubject(cfg.DB, handle)
	if err != nil {
		return fmt.Errorf("failed to get subject: %w", err)
	}
	if s == nil {
		return fmt.Errorf("subject not found: %s", handle)
	}

	return encode(s)
}
