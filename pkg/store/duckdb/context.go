package duckdb

import (
	"context"
	"database/sql"
)

type txKey struct{}

// WithTransaction makes tx visible to store calls further down the stack,
// so a fetch chunk and its checkpoint commit or roll back together.
func WithTransaction(ctx context.Context, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func GetTransaction(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}
