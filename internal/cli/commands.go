package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"FundDesk/internal/api"
	"FundDesk/internal/export"
	"FundDesk/internal/ledger"
	"FundDesk/internal/model"
	"FundDesk/internal/money"
	"FundDesk/internal/notifier"
)

func parsePercent(raw string) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(strings.TrimSuffix(strings.TrimSpace(raw), "%"), ",", ".")
	pct, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid percentage %q", raw)
	}
	return pct, nil
}

func printTransactions(w io.Writer, txs []model.Transaction) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATA\tTIPO\tSTATUS\tVALOR\tDESCRIÇÃO")
	for _, tx := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			tx.ID, model.FormatDate(tx.Date), tx.Type, tx.Status, tx.Amount.Format(), tx.Description)
	}
	return tw.Flush()
}

func newStateCmd(rc *RootConfig) *cobra.Command {
	var showTx bool
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Show balances, virtual date and pending approvals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rc.withApp(cmd.Context(), func(app *App) error {
				snap, err := app.Desk.Snapshot(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, stripTags(notifier.FormatFundStatus(snap)))
				if showTx {
					fmt.Fprintln(out)
					return printTransactions(out, snap.Transactions)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&showTx, "transactions", false, "also list every transaction")
	return cmd
}

func newContributeCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "contribute <amount>",
		Short: "Deposit an amount (e.g. 1000 or 1.000,50)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := money.Parse(args[0])
			if err != nil {
				return err
			}
			return rc.withApp(cmd.Context(), func(app *App) error {
				who, err := app.Identity(cmd.Context(), rc.AsUser)
				if err != nil {
					return err
				}
				tx, err := app.Desk.Contribute(cmd.Context(), who, amount)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Aporte de %s registrado (%s).\n", tx.Amount.Format(), tx.ID)
				return nil
			})
		},
	}
}

func newRedeemCmd(rc *RootConfig) *cobra.Command {
	var (
		pool string
		date string
	)
	cmd := &cobra.Command{
		Use:   "redeem <amount>",
		Short: "Request a redemption from capital or results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := money.Parse(args[0])
			if err != nil {
				return err
			}
			var scheduled time.Time
			if date != "" {
				if scheduled, err = time.Parse(time.DateOnly, date); err != nil {
					return fmt.Errorf("invalid --date, use YYYY-MM-DD: %w", err)
				}
			}
			return rc.withApp(cmd.Context(), func(app *App) error {
				who, err := app.Identity(cmd.Context(), rc.AsUser)
				if err != nil {
					return err
				}
				_, msg, err := app.Desk.RequestRedemption(cmd.Context(), ledger.RedemptionRequest{
					Amount:        amount,
					Pool:          model.Pool(strings.ToUpper(pool)),
					ScheduledDate: scheduled,
					Requester:     who,
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), msg)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&pool, "type", "t", string(model.PoolResult), "pool to redeem from: CAPITAL or RESULT")
	cmd.Flags().StringVar(&date, "date", "", "scheduled date (YYYY-MM-DD), defaults to the virtual date")
	return cmd
}

func newDecisionCmd(rc *RootConfig, use, short string, decide func(ctx context.Context, app *App, id string) (model.Transaction, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <transaction-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rc.withApp(cmd.Context(), func(app *App) error {
				tx, err := decide(cmd.Context(), app, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), stripTags(notifier.FormatDecision(tx)))
				return nil
			})
		},
	}
}

func newApproveCmd(rc *RootConfig) *cobra.Command {
	return newDecisionCmd(rc, "approve", "Approve a pending redemption",
		func(ctx context.Context, app *App, id string) (model.Transaction, error) {
			return app.Desk.Approve(ctx, id)
		})
}

func newRejectCmd(rc *RootConfig) *cobra.Command {
	return newDecisionCmd(rc, "reject", "Reject a pending redemption and refund it",
		func(ctx context.Context, app *App, id string) (model.Transaction, error) {
			return app.Desk.Reject(ctx, id)
		})
}

func newPerformCmd(rc *RootConfig) *cobra.Command {
	var (
		auto bool
		days int
	)
	cmd := &cobra.Command{
		Use:   "perform [percentage]",
		Short: "Advance the virtual calendar one business day and distribute results",
		Long: `Distributes the day's result over the capital balance and moves the
virtual date forward. Pass a percentage (e.g. 0.45 or 0,45%) or use --auto
for a random value inside the configured range.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if auto == (len(args) == 1) {
				return fmt.Errorf("pass either a percentage or --auto")
			}
			var pct decimal.Decimal
			if !auto {
				var err error
				if pct, err = parsePercent(args[0]); err != nil {
					return err
				}
			}
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}
			return rc.withApp(cmd.Context(), func(app *App) error {
				for i := 0; i < days; i++ {
					var (
						dist ledger.Distribution
						err  error
					)
					if auto {
						dist, err = app.Desk.DistributeAuto(cmd.Context())
					} else {
						dist, err = app.Desk.DistributeManual(cmd.Context(), pct)
					}
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s  %7s  %s\n",
						model.FormatDate(dist.ReferenceDate), money.FormatPercent(dist.Percentage), dist.Result.Format())
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&auto, "auto", false, "use a random percentage")
	cmd.Flags().IntVar(&days, "days", 1, "number of business days to process")
	return cmd
}

func newReinvestCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "reinvest",
		Short: "Move the whole results balance into capital",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rc.withApp(cmd.Context(), func(app *App) error {
				who, err := app.Identity(cmd.Context(), rc.AsUser)
				if err != nil {
					return err
				}
				amount, err := app.Desk.Reinvest(cmd.Context(), who)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reinvestimento de %s realizado.\n", amount.Format())
				return nil
			})
		},
	}
}

func newUsersCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage the demo user roster",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rc.withApp(cmd.Context(), func(app *App) error {
				users, err := app.Desk.Users(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNOME\tE-MAIL\tPAPEL\tVERIFICADO\tINDICAÇÃO")
				for _, u := range users {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\n", u.ID, u.Name, u.Email, u.Role, u.IsVerified, u.ReferralCode)
				}
				return tw.Flush()
			})
		},
	}

	add := &cobra.Command{
		Use:   "add <name> <email>",
		Short: "Create an unverified client",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rc.withApp(cmd.Context(), func(app *App) error {
				u, err := app.Desk.CreateUser(cmd.Context(), ledger.NewUser{Name: args[0], Email: args[1]})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Usuário %s criado (código %s).\n", u.ID, u.ReferralCode)
				return nil
			})
		},
	}

	verify := &cobra.Command{
		Use:   "verify <user-id>",
		Short: "Toggle a user's KYC verification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rc.withApp(cmd.Context(), func(app *App) error {
				u, err := app.Desk.ToggleVerification(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s verificado: %t\n", u.Name, u.IsVerified)
				return nil
			})
		},
	}

	cmd.AddCommand(list, add, verify)
	return cmd
}

func newHistoryCmd(rc *RootConfig) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded ledger events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rc.withApp(cmd.Context(), func(app *App) error {
				events, err := app.Desk.History(cmd.Context(), limit)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "QUANDO\tDATA VIRTUAL\tEVENTO\tVALOR\tCAPITAL\tRENDIMENTOS")
				for _, e := range events {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s → %s\t%s → %s\n",
						e.RecordedAt.Local().Format("2006-01-02 15:04"), model.FormatDate(e.VirtualDate), e.EventType,
						e.Amount.Format(), e.CapitalBefore.Format(), e.CapitalAfter.Format(),
						e.ResultsBefore.Format(), e.ResultsAfter.Format())
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of events to show")
	return cmd
}

func newExportCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx|file.csv>",
		Short: "Write the statement to a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			return rc.withApp(cmd.Context(), func(app *App) error {
				snap, err := app.Desk.Snapshot(cmd.Context())
				if err != nil {
					return err
				}
				f, err := os.Create(path)
				if err != nil {
					return fmt.Errorf("create %s: %w", path, err)
				}
				defer f.Close()

				if strings.EqualFold(filepath.Ext(path), ".csv") {
					err = export.WriteTransactionsCSV(f, snap.Transactions)
				} else {
					err = export.WriteStatement(f, snap, snap.Transactions)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Extrato salvo em %s\n", path)
				return f.Close()
			})
		},
	}
}

func newTokenCmd(rc *RootConfig) *cobra.Command {
	var (
		sub  string
		name string
		role string
		ttl  time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rc.load(true)
			if err != nil {
				return err
			}
			r := model.Role(strings.ToUpper(role))
			if r != model.RoleAdmin && r != model.RoleClient {
				return fmt.Errorf("--role must be ADMIN or CLIENT")
			}
			tok, err := api.IssueToken([]byte(cfg.Server.JWTSecret), model.Identity{ID: sub, Name: name, Role: r}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&sub, "sub", "demo-admin", "token subject (user id)")
	cmd.Flags().StringVar(&name, "name", "Administrador", "display name")
	cmd.Flags().StringVar(&role, "role", string(model.RoleAdmin), "ADMIN or CLIENT")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

// stripTags removes the HTML markup used in Telegram messages.
func stripTags(s string) string {
	r := strings.NewReplacer("<b>", "", "</b>", "", "<code>", "", "</code>", "", "&lt;", "<", "&gt;", ">", "&amp;", "&")
	return r.Replace(s)
}
