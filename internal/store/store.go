package store

import (
	"errors"
	"fmt"

	"changemakers/internal/utils"
	"changemakers/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
)

const uniqueViolationCode = "23505"

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// columnValues orders the tagged fields of row to match columns, for
// multi-row inserts built with Columns and Values.
func columnValues(columns []string, row any) []any {
	values := utils.StructToMap(row)

	ordered := make([]any, 0, len(columns))
	for _, column := range columns {
		ordered = append(ordered, values[column])
	}
	return ordered
}

// translate maps driver errors onto the domain sentinels callers branch on.
func translate(err error, msg string) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return fmt.Errorf("%s: %w (%s)", msg, types.ErrDuplicate, pgErr.ConstraintName)
	}

	return fmt.Errorf("%s: %w", msg, err)
}

// ErrorFields extracts the diagnostic payload of a Postgres error so it can be
// attached to a log entry. Non-Postgres errors yield an empty set.
func ErrorFields(err error) logrus.Fields {
	fields := logrus.Fields{}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fields
	}

	fields["pg_code"] = pgErr.Code
	fields["pg_message"] = pgErr.Message
	if pgErr.Detail != "" {
		fields["pg_detail"] = pgErr.Detail
	}
	if pgErr.Hint != "" {
		fields["pg_hint"] = pgErr.Hint
	}
	if pgErr.TableName != "" {
		fields["pg_table"] = pgErr.TableName
	}
	if pgErr.ConstraintName != "" {
		fields["pg_constraint"] = pgErr.ConstraintName
	}

	return fields
}
