package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/set-night/sharemitra/internal/config"
	"github.com/set-night/sharemitra/internal/domain"
	"github.com/shopspring/decimal"
)

const maxMessageLen = 4096

// Sender is the part of *bot.Bot used here.
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// OperatorLog posts operator-facing events into topics of a Telegram chat.
// A nil *OperatorLog drops everything.
type OperatorLog struct {
	sender Sender
	cfg    *config.Config
}

func NewOperatorLog(s Sender, cfg *config.Config) *OperatorLog {
	return &OperatorLog{sender: s, cfg: cfg}
}

type LogType string

const (
	LogTypeError      LogType = "error"
	LogTypeSubmission LogType = "submission"
	LogTypePayout     LogType = "payout"
	LogTypeReconcile  LogType = "reconcile"
)

func (l *OperatorLog) Log(logType LogType, message string) {
	if l == nil || l.cfg.LogTelegramChatID == 0 {
		return
	}

	topicID := l.topicID(logType)
	if topicID == 0 {
		return
	}

	if len([]rune(message)) > maxMessageLen {
		message = string([]rune(message)[:maxMessageLen-20]) + "\n\n... (truncated)"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	params := &bot.SendMessageParams{
		ChatID:          l.cfg.LogTelegramChatID,
		Text:            message,
		ParseMode:       models.ParseModeMarkdownV1,
		MessageThreadID: topicID,
	}
	if _, err := l.sender.SendMessage(ctx, params); err != nil {
		// Provider payloads can still break Markdown; retry as plain text.
		params.ParseMode = ""
		if _, err := l.sender.SendMessage(ctx, params); err != nil {
			slog.Error("failed to send telegram log", "type", logType, "error", err)
		}
	}
}

func (l *OperatorLog) LogError(err error, where string) {
	msg := fmt.Sprintf("❌ *Error*\n\n*Context:* %s\n*Error:* `%s`\n*Time:* %s",
		escape(where), stripTicks(err.Error()), time.Now().Format("2006-01-02 15:04:05"))
	l.Log(LogTypeError, msg)
}

func (l *OperatorLog) LogSubmissionAccepted(sub *domain.Submission, balance decimal.Decimal) {
	msg := fmt.Sprintf("✅ *Task Completed*\n\n*User:* `%s`\n*Task:* %s (`%s`)\n*Recipients:* %d\n*Reward:* ₹%s\n*Balance:* ₹%s",
		sub.UserID, escape(sub.TaskTitle), sub.TaskID, sub.ParticipantCount,
		sub.PriceAwarded.StringFixed(2), balance.StringFixed(2))
	l.Log(LogTypeSubmission, msg)
}

func (l *OperatorLog) LogPayout(p *domain.Payout, balance decimal.Decimal) {
	msg := fmt.Sprintf("💸 *Withdrawal*\n\n*User:* `%s`\n*Payout:* `%s`\n*Amount:* ₹%s\n*Mode:* %s\n*Status:* %s\n*Balance left:* ₹%s",
		p.UserID, p.PayoutID, p.Amount.StringFixed(2), p.Mode(),
		escape(domain.DisplayStatus(p.StatusDetail)), balance.StringFixed(2))
	l.Log(LogTypePayout, msg)
}

// LogLedgerFailure reports a payout the provider accepted but the ledger
// never recorded. These need manual reconciliation.
func (l *OperatorLog) LogLedgerFailure(e *domain.PostPayoutLedgerError, amount decimal.Decimal) {
	msg := fmt.Sprintf("🚨 *Ledger Out Of Sync*\n\n*User:* `%s`\n*Payout:* `%s`\n*Amount:* ₹%s\n*Error:* `%s`\n\nWallet was NOT debited. Reconcile manually.",
		e.UserID, e.PayoutID, amount.StringFixed(2), stripTicks(e.Error()))
	l.Log(LogTypeError, msg)
	l.Log(LogTypePayout, msg)
}

func (l *OperatorLog) LogStatusChange(p *domain.Payout, from string) {
	msg := fmt.Sprintf("🔄 *Payout Status*\n\n*User:* `%s`\n*Payout:* `%s`\n*Amount:* ₹%s\n*Status:* %s → %s",
		p.UserID, p.PayoutID, p.Amount.StringFixed(2),
		escape(domain.DisplayStatus(from)), escape(domain.DisplayStatus(p.StatusDetail)))
	l.Log(LogTypeReconcile, msg)
}

func (l *OperatorLog) topicID(logType LogType) int {
	switch logType {
	case LogTypeError:
		return l.cfg.LogTopicError
	case LogTypeSubmission:
		return l.cfg.LogTopicSubmission
	case LogTypePayout:
		return l.cfg.LogTopicPayout
	case LogTypeReconcile:
		return l.cfg.LogTopicReconcile
	default:
		return 0
	}
}

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// escape quotes user-controlled text for legacy Markdown.
func escape(s string) string {
	return markdownEscaper.Replace(s)
}

// stripTicks keeps text safe inside an inline code span.
func stripTicks(s string) string {
	return strings.ReplaceAll(s, "`", "'")
}
