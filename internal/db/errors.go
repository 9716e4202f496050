package db

import (
	"errors"

	"github.com/lib/pq"
)

// PostgreSQL SQLSTATE codes the repositories branch on.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func IsUniqueViolation(err error) bool {
	return pqCode(err) == codeUniqueViolation
}

func IsForeignKeyViolation(err error) bool {
	return pqCode(err) == codeForeignKeyViolation
}

func IsCheckViolation(err error) bool {
	return pqCode(err) == codeCheckViolation
}

// Constraint returns the violated constraint name, or "".
func Constraint(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}
