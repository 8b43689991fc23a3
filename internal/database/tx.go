package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrTxConflict is surfaced when a serializable transaction keeps getting
// aborted by the database after the bounded retry. Callers should map it to
// a retryable failure, never to silent partial state.
var ErrTxConflict = errors.New("transaction aborted by concurrent update, try again")

// maxAttempts = first try + one automatic retry.
const maxAttempts = 2

// RunSerializable executes fn inside a transaction at serializable
// isolation. Booking and instance creation read an aggregate (current
// reservation count, conflicting instances) and write conditionally on it;
// serializable isolation makes one of two racing transactions abort instead
// of both committing past the capacity check. An aborted transaction is
// retried once; a second abort returns ErrTxConflict.
func RunSerializable(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		err = runOnce(ctx, db, fn)
		if err == nil || !isSerializationFailure(err) {
			return err
		}
	}
	return ErrTxConflict
}

func runOnce(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// isSerializationFailure recognizes the MySQL errors raised when the engine
// aborts one of two conflicting transactions: 1213 (deadlock found when
// trying to get lock) and 1205 (lock wait timeout exceeded).
func isSerializationFailure(err error) bool {
	var me *mysql.MySQLError
	if !errors.As(err, &me) {
		return false
	}
	return me.Number == 1213 || me.Number == 1205
}
