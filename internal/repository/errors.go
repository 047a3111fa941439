package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation = "23505"
	pgFKViolation     = "23503"
	pgCheckViolation  = "23514"

	constraintTaskUser    = "task_history_task_user_key"
	constraintHistoryTask = "task_history_task_id_fkey"
)

func pgErrorCode(err error) (code, constraint string) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName
	}
	return "", ""
}

// isTaskUserConflict reports a second accepted record for the same (task, user).
func isTaskUserConflict(err error) bool {
	code, constraint := pgErrorCode(err)
	return code == pgUniqueViolation && constraint == constraintTaskUser
}

func isCheckViolation(err error) bool {
	code, _ := pgErrorCode(err)
	return code == pgCheckViolation
}

// isTaskReferenced reports a task delete blocked by accepted records.
func isTaskReferenced(err error) bool {
	code, constraint := pgErrorCode(err)
	return code == pgFKViolation && constraint == constraintHistoryTask
}
