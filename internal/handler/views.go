package handler

import (
	"time"

	"github.com/set-night/sharemitra/internal/domain"
	"github.com/shopspring/decimal"
)

type taskView struct {
	TaskID       string          `json:"taskId"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	ExpectedLink string          `json:"expected_link"`
	LinkTitle    string          `json:"link_title,omitempty"`
	Price        decimal.Decimal `json:"task_price"`
	Hidden       bool            `json:"hidden"`
	Status       string          `json:"status,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func toTaskView(t *domain.Task) taskView {
	return taskView{
		TaskID:       t.TaskID,
		Title:        t.Title,
		Description:  t.Description,
		ExpectedLink: t.ExpectedLink,
		LinkTitle:    t.LinkTitle,
		Price:        t.Price,
		Hidden:       t.Hidden,
		Status:       string(t.LastSubmissionStatus),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func toTaskViews(tasks []domain.Task) []taskView {
	out := make([]taskView, 0, len(tasks))
	for i := range tasks {
		out = append(out, toTaskView(&tasks[i]))
	}
	return out
}

type submissionView struct {
	TaskID           string          `json:"taskId"`
	UserID           string          `json:"userId"`
	TaskName         string          `json:"task_name"`
	MatchedLink      string          `json:"matched_link"`
	ParticipantCount int             `json:"participant_count"`
	Verified         bool            `json:"verified"`
	VerifiedAt       time.Time       `json:"verifiedAt"`
	TaskPrice        decimal.Decimal `json:"task_price"`
}

func toSubmissionViews(subs []domain.Submission) []submissionView {
	out := make([]submissionView, 0, len(subs))
	for _, s := range subs {
		out = append(out, submissionView{
			TaskID:           s.TaskID,
			UserID:           s.UserID,
			TaskName:         s.TaskTitle,
			MatchedLink:      s.MatchedLink,
			ParticipantCount: s.ParticipantCount,
			Verified:         s.Verified,
			VerifiedAt:       s.VerifiedAt,
			TaskPrice:        s.PriceAwarded,
		})
	}
	return out
}

type walletTaskView struct {
	TaskID    string          `json:"taskId"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

type walletView struct {
	UserID       string           `json:"userId"`
	Tasks        []walletTaskView `json:"tasks"`
	TasksDone    int              `json:"tasks_done"`
	TotalEarning decimal.Decimal  `json:"total_earning"`
	Withdrawn    decimal.Decimal  `json:"withdrawn"`
	Balance      decimal.Decimal  `json:"balance"`
}

func toWalletView(w *domain.Wallet) walletView {
	tasks := make([]walletTaskView, 0, len(w.Credits))
	for _, c := range w.Credits {
		tasks = append(tasks, walletTaskView{TaskID: c.TaskID, Amount: c.Amount, CreatedAt: c.CreatedAt})
	}
	return walletView{
		UserID:       w.UserID,
		Tasks:        tasks,
		TasksDone:    w.TasksDone(),
		TotalEarning: w.TotalEarning,
		Withdrawn:    w.Withdrawn,
		Balance:      w.Balance,
	}
}

type paymentMethodView struct {
	PaymentID     string    `json:"paymentId"`
	UserID        string    `json:"userId"`
	PaymentMethod int       `json:"paymentMethod"`
	UPIID         string    `json:"upiId,omitempty"`
	AccountHolder string    `json:"accountHolder,omitempty"`
	AccountNumber string    `json:"accountNumber,omitempty"`
	IFSC          string    `json:"ifsc,omitempty"`
	BankName      string    `json:"bankName,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toPaymentMethodView(pm *domain.PaymentMethod) paymentMethodView {
	return paymentMethodView{
		PaymentID:     pm.PaymentID,
		UserID:        pm.UserID,
		PaymentMethod: int(pm.Method),
		UPIID:         pm.UPIID,
		AccountHolder: pm.AccountHolder,
		AccountNumber: pm.AccountNumber,
		IFSC:          pm.IFSC,
		BankName:      pm.BankName,
		CreatedAt:     pm.CreatedAt,
		UpdatedAt:     pm.UpdatedAt,
	}
}

type payoutView struct {
	PayoutID      string          `json:"payout_id"`
	UserID        string          `json:"userId"`
	UserName      string          `json:"user_name,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status"`
	StatusDetail  string          `json:"status_detail"`
	Mode          string          `json:"mode"`
	FundAccountID string          `json:"fund_account_id"`
	ReferenceID   string          `json:"reference_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toPayoutView(p *domain.Payout) payoutView {
	return payoutView{
		PayoutID:      p.PayoutID,
		UserID:        p.UserID,
		UserName:      p.UserName,
		Amount:        p.Amount,
		Status:        domain.DisplayStatus(p.StatusDetail),
		StatusDetail:  p.StatusDetail,
		Mode:          p.Mode(),
		FundAccountID: p.FundAccountID,
		ReferenceID:   p.ReferenceID,
		CreatedAt:     p.CreatedAt,
	}
}
