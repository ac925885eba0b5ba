package cli

import (
	"fmt"

	"github.com/raidtrust/raidtrust/pkg/data"
	"github.com/urfave/cli/v2"
)

var stateCmd = &cli.Command{
	Name:   "state",
	Usage:  "Show database row counts",
	Action: cmdDataState,
}

func cmdDataState(c *cli.Context) error {
	cfg := getConfig(c)

	state, err := data.GetDataState(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to get data state: %w", err)
	}

	return encode(state)
}
