package sqlxrepos

import (
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const (
	uniqueViolation     = "unique_violation"
	foreignKeyViolation = "foreign_key_violation"
)

// pqErrorIs reports whether err is a postgres error of the named condition.
func pqErrorIs(err error, condition string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Name() == condition
}

// trapNoRowsErr maps "no rows" to notFound and wraps any other error with msg.
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// where joins conditions with AND. It returns an empty string without conditions.
func where(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

// notIn adds an "id NOT IN (...)" condition when ids is not empty.
func notIn(conds []string, args []interface{}, ids []int) ([]string, []interface{}, error) {
	if len(ids) == 0 {
		return conds, args, nil
	}
	cond, inArgs, err := sqlx.In("id NOT IN (?)", ids)
	if err != nil {
		return nil, nil, errors.Wrap(err, "expanding excluded IDs")
	}
	return append(conds, cond), append(args, inArgs...), nil
}
