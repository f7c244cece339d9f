package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"FundDesk/internal/config"
)

// RootConfig carries the global flags shared by every command.
type RootConfig struct {
	ConfigPath string
	AsUser     string
}

func (rc *RootConfig) load(requireServer bool) (*config.Config, error) {
	cfg, err := config.Load(rc.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	validate := cfg.Validate
	if requireServer {
		validate = cfg.ValidateServer
	}
	if err := validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// withApp loads the config, opens the App, runs fn and closes it.
func (rc *RootConfig) withApp(ctx context.Context, fn func(*App) error) error {
	cfg, err := rc.load(false)
	if err != nil {
		return err
	}
	app, err := Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}

// New builds the funddesk command tree.
func New() *cobra.Command {
	rc := &RootConfig{}

	cmd := &cobra.Command{
		Use:   "funddesk",
		Short: "Simulated investment fund desk",
		Long: `FundDesk simulates a small investment fund: contributions with a lockup
period, redemptions that wait for approval, and a daily performance
distribution driven by a virtual calendar.

The same ledger is served over HTTP, driven by cron and Telegram, and
operated directly from these commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	cmd.PersistentFlags().StringVarP(&rc.ConfigPath, "config", "c", defaultPath, "path to the YAML config file")
	cmd.PersistentFlags().StringVar(&rc.AsUser, "as", "demo-client", "roster user id to act as")

	cmd.AddCommand(
		newServeCmd(rc),
		newStateCmd(rc),
		newContributeCmd(rc),
		newRedeemCmd(rc),
		newApproveCmd(rc),
		newRejectCmd(rc),
		newPerformCmd(rc),
		newReinvestCmd(rc),
		newUsersCmd(rc),
		newHistoryCmd(rc),
		newExportCmd(rc),
		newTokenCmd(rc),
	)
	return cmd
}
