package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"

	"github.com/urfave/cli/v2"
	"github.com/zalando/go-keyring"
)

const (
	tokenFileName  = "feed_token"
	keyringService = "raidtrust"
	keyringUser    = "feed_token"
)

var (
	tokenFlag = &cli.StringFlag{
		Name:     "token",
		Usage:    "Feedback feed API token",
		Required: true,
	}

	authCmd = &cli.Command{
		Name:            "auth",
		HideHelpCommand: true,
		Usage:           "Manage the feedback feed credential",
		Subcommands: []*cli.Command{
			{
				Name:   "token",
				Usage:  "Store the feed token in the OS keychain",
				Action: cmdSaveToken,
				Flags:  []cli.Flag{tokenFlag},
			},
			{
				Name:   "clear",
				Usage:  "Remove the stored feed token",
				Action: cmdClearToken,
			},
		},
	}
)

func cmdSaveToken(c *cli.Context) error {
	if err := saveFeedToken(c.String(tokenFlag.Name)); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	fmt.Println("Token saved")
	return nil
}

func cmdClearToken(_ *cli.Context) error {
	if err := keyring.Delete(keyringService, keyringUser); err != nil {
		slog.Debug("keychain delete failed", "error", err)
	}
	tokenPath, err := tokenFilePath()
	if err == nil {
		os.Remove(tokenPath)
	}
	fmt.Println("Token cleared")
	return nil
}

func saveFeedToken(token string) error {
	if token == "" {
		return errors.New("token is required")
	}
	if err := keyring.Set(keyringService, keyringUser, token); err != nil {
		slog.Warn("keychain unavailable, falling back to file", "error", err)
		return saveFeedTokenFile(token)
	}

	// Clean up the fallback file if one exists.
	if p, err := tokenFilePath(); err == nil {
		os.Remove(p)
	}

	return nil
}

// getFeedToken returns the stored feed token, or empty when none is set.
func getFeedToken() string {
	token, err := keyring.Get(keyringService, keyringUser)
	if err == nil && token != "" {
		return token
	}

	p, err := tokenFilePath()
	if err != nil {
		return ""
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return ""
	}
	return string(b)
}

func saveFeedTokenFile(token string) error {
	p, err := tokenFilePath()
	if err != nil {
		return err
	}
	return os.WriteFile(p, []byte(token), 0600)
}

func tokenFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home dir: %w", err)
	}
	return path.Join(home, "."+appName, tokenFileName), nil
}
