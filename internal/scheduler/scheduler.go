package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"FundDesk/internal/desk"
	"FundDesk/internal/ledger"
	"FundDesk/internal/notifier"
)

const helpText = "Comandos disponíveis:\n" +
	"• /status - situação do fundo\n" +
	"• /pendentes - resgates em análise\n" +
	"• /aprovar &lt;id&gt;\n" +
	"• /rejeitar &lt;id&gt;\n" +
	"• /rendimento &lt;pct&gt; - distribui o dia com o percentual informado\n" +
	"• /rodar - distribui o dia com percentual automático"

// Scheduler manages the cron tasks and operator commands.
type Scheduler struct {
	Cron *cron.Cron
	Desk *desk.Desk
	Ctx  context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, d *desk.Desk) *Scheduler {
	return &Scheduler{
		Cron: cron.New(cron.WithSeconds()),
		Desk: d,
		Ctx:  ctx,
	}
}

// RegisterAll registers the daily distribution and the pending reminder.
func (s *Scheduler) RegisterAll(dailyCron, pendingCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	if _, err := s.Cron.AddFunc(pendingCron, s.pendingReminder); err != nil {
		return fmt.Errorf("register pending reminder: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunDailyNow executes the daily distribution immediately.
func (s *Scheduler) RunDailyNow() {
	s.dailyTask()
}

func (s *Scheduler) dailyTask() {
	log.Println("[INFO] running daily distribution")
	if _, err := s.Desk.DistributeAuto(s.Ctx); err != nil {
		log.Printf("[ERROR] daily distribution: %v", err)
		s.trySend(fmt.Sprintf("❌ Falha na distribuição diária: %v", err))
	}
}

func (s *Scheduler) pendingReminder() {
	pending, err := s.Desk.Pending(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] pending reminder: %v", err)
		return
	}
	if msg := notifier.FormatPendingReminder(pending); msg != "" {
		s.trySend(msg)
	}
}

// HandleCommand processes an operator command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	// Group chats append the bot name: /status@funddesk_bot.
	name, _, _ := strings.Cut(fields[0], "@")
	args := fields[1:]

	switch name {
	case "/status":
		snap, err := s.Desk.Snapshot(ctx)
		if err != nil {
			return replyError(err)
		}
		return notifier.FormatFundStatus(snap)
	case "/pendentes":
		pending, err := s.Desk.Pending(ctx)
		if err != nil {
			return replyError(err)
		}
		if len(pending) == 0 {
			return "Nenhum resgate em análise."
		}
		return notifier.FormatPendingReminder(pending)
	case "/aprovar", "/rejeitar":
		if len(args) != 1 {
			return fmt.Sprintf("Uso: %s &lt;id&gt;", name)
		}
		decide := s.Desk.Approve
		if name == "/rejeitar" {
			decide = s.Desk.Reject
		}
		tx, err := decide(ctx, args[0])
		if err != nil {
			return replyError(err)
		}
		return notifier.FormatDecision(tx)
	case "/rendimento":
		if len(args) != 1 {
			return "Uso: /rendimento &lt;pct&gt; (ex.: /rendimento 0,45)"
		}
		pct, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSuffix(args[0], "%"), ",", "."))
		if err != nil {
			return fmt.Sprintf("Percentual inválido: %s", args[0])
		}
		if _, err := s.Desk.DistributeManual(ctx, pct); err != nil {
			return replyError(err)
		}
		return ""
	case "/rodar":
		if _, err := s.Desk.DistributeAuto(ctx); err != nil {
			return replyError(err)
		}
		return ""
	default:
		return helpText
	}
}

func replyError(err error) string {
	var rule *ledger.RuleError
	if errors.As(err, &rule) {
		return "❌ " + err.Error()
	}
	log.Printf("[ERROR] command failed: %v", err)
	return "❌ Erro interno, verifique os logs."
}

func (s *Scheduler) trySend(text string) {
	if err := s.Desk.Announce(s.Ctx, text); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
