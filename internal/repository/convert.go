package repository

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/set-night/sharemitra/internal/domain"
	"github.com/set-night/sharemitra/internal/repository/sqlc"
)

// pgTimestamptzToTime converts pgtype.Timestamptz to time.Time.
func pgTimestamptzToTime(ts pgtype.Timestamptz) time.Time {
	if ts.Valid {
		return ts.Time
	}
	return time.Time{}
}

// timeToPgTimestamptz converts time.Time to pgtype.Timestamptz.
func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: !t.IsZero()}
}

// Fingerprints are unsigned 64-bit codes stored in a signed BIGINT column.
func fingerprintToDB(fp uint64) int64 { return int64(fp) }

func fingerprintFromDB(v int64) uint64 { return uint64(v) }

func rowToTask(row sqlc.Task) *domain.Task {
	return &domain.Task{
		TaskID:               row.TaskID,
		Title:                row.Title,
		Description:          row.Description,
		ExpectedLink:         row.ExpectedLink,
		LinkTitle:            row.LinkTitle,
		Price:                row.Price,
		Hidden:               row.Hidden,
		LastSubmissionStatus: domain.SubmissionStatus(row.LastSubmissionStatus),
		CreatedAt:            pgTimestamptzToTime(row.CreatedAt),
		UpdatedAt:            pgTimestamptzToTime(row.UpdatedAt),
	}
}

func rowToSubmission(row sqlc.TaskHistory) *domain.Submission {
	return &domain.Submission{
		SubmissionID:     row.SubmissionID,
		TaskID:           row.TaskID,
		UserID:           row.UserID,
		Fingerprint:      fingerprintFromDB(row.Fingerprint),
		ParticipantCount: int(row.ParticipantCount),
		MatchedLink:      row.MatchedLink,
		TaskTitle:        row.TaskTitle,
		Verified:         row.Verified,
		VerifiedAt:       pgTimestamptzToTime(row.VerifiedAt),
		PriceAwarded:     row.PriceAwarded,
	}
}

func rowToWallet(row sqlc.Wallet, credits []sqlc.WalletCredit) *domain.Wallet {
	w := &domain.Wallet{
		UserID:       row.UserID,
		TotalEarning: row.TotalEarning,
		Withdrawn:    row.Withdrawn,
		Balance:      row.Balance,
		Credits:      make([]domain.WalletCredit, 0, len(credits)),
		CreatedAt:    pgTimestamptzToTime(row.CreatedAt),
		UpdatedAt:    pgTimestamptzToTime(row.UpdatedAt),
	}
	for _, c := range credits {
		w.Credits = append(w.Credits, domain.WalletCredit{
			TaskID:    c.TaskID,
			Amount:    c.Amount,
			CreatedAt: pgTimestamptzToTime(c.CreatedAt),
		})
	}
	return w
}

func rowToUser(row sqlc.User) *domain.User {
	u := &domain.User{
		UserID:       row.UserID,
		Name:         row.Name,
		Email:        row.Email,
		Phone:        row.Phone,
		ContactID:    row.ContactID,
		FundAccounts: map[domain.PaymentType]string{},
		CreatedAt:    pgTimestamptzToTime(row.CreatedAt),
	}
	if row.FundAccountUpi != "" {
		u.FundAccounts[domain.PaymentTypeUPI] = row.FundAccountUpi
	}
	if row.FundAccountBank != "" {
		u.FundAccounts[domain.PaymentTypeBank] = row.FundAccountBank
	}
	return u
}

func rowToPaymentMethod(row sqlc.PaymentMethod) *domain.PaymentMethod {
	return &domain.PaymentMethod{
		PaymentID:     row.PaymentID,
		UserID:        row.UserID,
		Method:        domain.PaymentType(row.Method),
		UPIID:         row.UpiID,
		AccountHolder: row.AccountHolder,
		AccountNumber: row.AccountNumber,
		IFSC:          row.Ifsc,
		BankName:      row.BankName,
		CreatedAt:     pgTimestamptzToTime(row.CreatedAt),
		UpdatedAt:     pgTimestamptzToTime(row.UpdatedAt),
	}
}

func rowToPayout(row sqlc.Payout) *domain.Payout {
	return &domain.Payout{
		PayoutID:        row.PayoutID,
		UserID:          row.UserID,
		Amount:          row.Amount,
		StatusDetail:    row.StatusDetail,
		FundAccountID:   row.FundAccountID,
		FundAccountType: row.FundAccountType,
		ReferenceID:     row.ReferenceID,
		CreatedAt:       pgTimestamptzToTime(row.CreatedAt),
		UpdatedAt:       pgTimestamptzToTime(row.UpdatedAt),
	}
}

// pageBounds turns a 1-based page into LIMIT/OFFSET.
func pageBounds(page, perPage int) (limit, offset int32) {
	if page < 1 {
		page = 1
	}
	return int32(perPage), int32((page - 1) * perPage)
}
