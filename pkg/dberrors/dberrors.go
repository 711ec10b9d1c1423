package dberrors

import (
	"errors"

	"github.com/lib/pq"
)

// PostgreSQL SQLSTATE codes the application reacts to.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
)

// IsUniqueViolation reports whether err is a unique constraint violation.
// When constraint names are given, the violated constraint must be one of them.
func IsUniqueViolation(err error, constraints ...string) bool {
	return matches(err, codeUniqueViolation, constraints)
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error, constraints ...string) bool {
	return matches(err, codeForeignKeyViolation, constraints)
}

func matches(err error, code string, constraints []string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != code {
		return false
	}
	if len(constraints) == 0 {
		return true
	}
	for _, c := range constraints {
		if pqErr.Constraint == c {
			return true
		}
	}
	return false
}
