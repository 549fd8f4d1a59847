// Package sqlxrepos implements the repositories on Postgres.
package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/cddtech/lessonhub/core"
)

const foreignKeyViolation = "23503"

// isUUID filters ids before they reach uuid columns, where malformed ones are a query error.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func uuids(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if isUUID(id) {
			valid = append(valid, id)
		}
	}
	return valid
}

func newID() string {
	return uuid.New().String()
}

// trapNoRowsErr maps the "no rows" error to the resource `notFound` error.
func trapNoRowsErr(err error, notFound error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func isForeignKeyViolation(err error) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	return ok && pqErr.Code == foreignKeyViolation
}

// withTx runs fn in a transaction, committed if fn succeeds.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}
	return nil
}

// orderBy renders the orderings keeping only the `allowed` fields, then `tieBreaker`.
func orderBy(ordering []core.DBOrdering, allowed []string, tieBreaker string) string {
	clauses := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		for _, field := range allowed {
			if ord.Field == field {
				clauses = append(clauses, ord.String())
				break
			}
		}
	}
	clauses = append(clauses, tieBreaker)
	return " ORDER BY " + strings.Join(clauses, ", ")
}
