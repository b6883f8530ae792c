package mocks

import (
	"context"

	"github.com/fitdash/fitdash-api/internal/store"
)

// TxRunner is a store.TxRunner that runs the function without a database.
// The function receives a nil *sql.Tx, which store mocks ignore.
type TxRunner struct {
	// Calls counts WithinTx invocations.
	Calls int
	// BeginErr, when set, is returned without running the function.
	BeginErr error
}

// NewTxRunner creates a TxRunner.
func NewTxRunner() *TxRunner {
	return &TxRunner{}
}

var _ store.TxRunner = (*TxRunner)(nil)

// WithinTx implements store.TxRunner.
func (r *TxRunner) WithinTx(ctx context.Context, fn store.TxFn) error {
	r.Calls++
	if r.BeginErr != nil {
		return r.BeginErr
	}
	return fn(ctx, nil)
}
