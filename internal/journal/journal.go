// Package journal mirrors ledger entries to durable sinks. Journals are write
// behind: a failed append is reported to the ledger, which logs it and keeps
// the in-memory entry. Replay reads a journal back for inspection.
package journal

import (
	"context"
	"errors"

	"github.com/vk/hotswap/internal/ledger"
)

// ErrClosed is returned when appending to a closed journal.
var ErrClosed = errors.New("journal is closed")

// Replayer reads back every entry a journal holds, in append order.
type Replayer interface {
	Replay(ctx context.Context) ([]ledger.Entry, error)
}
