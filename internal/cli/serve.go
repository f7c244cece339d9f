package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"FundDesk/internal/api"
	"FundDesk/internal/scheduler"
)

func newServeCmd(rc *RootConfig) *cobra.Command {
	var runOnStart bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the scheduler and the Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rc.load(true)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			sched := scheduler.NewScheduler(ctx, app.Desk)
			if err := sched.RegisterAll(cfg.Schedule.DailyCron, cfg.Schedule.PendingCron); err != nil {
				return fmt.Errorf("register cron tasks: %w", err)
			}
			sched.Start()
			defer sched.Stop()

			if app.Telegram != nil {
				go app.Telegram.StartPolling(ctx, sched.HandleCommand)
				log.Println("[INFO] Telegram polling started")
			}
			if runOnStart || os.Getenv("RUN_ON_START") == "true" {
				log.Println("[INFO] RUN_ON_START enabled, executing daily distribution now")
				go sched.RunDailyNow()
			}

			logger := newAPILogger()
			defer logger.Sync()

			handler := api.NewHandler(app.Desk, []byte(cfg.Server.JWTSecret), logger)
			srv := api.NewServer(cfg.Server.Addr, api.NewRouter(handler, cfg.Server.CORSOrigins))

			errCh := make(chan error, 1)
			go func() {
				logger.Info("api listening", zap.String("addr", cfg.Server.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			log.Println("[INFO] FundDesk is running. Press Ctrl+C to stop.")
			select {
			case <-ctx.Done():
				log.Println("[INFO] shutdown signal received, stopping...")
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("http server: %w", err)
				}
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("[WARN] http shutdown: %v", err)
			}
			log.Println("[INFO] FundDesk stopped")
			return nil
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "run one automatic distribution at startup")
	return cmd
}
