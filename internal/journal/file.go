package journal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/vk/hotswap/internal/ledger"
	"github.com/vmihailenco/msgpack/v5"
)

// File appends msgpack-encoded entries to a local file.
type File struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

var _ ledger.Journal = (*File)(nil)

// OpenFile opens path for appending, creating it if needed.
func OpenFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal file %s: %w", path, err)
	}
	return &File{path: path, f: f}, nil
}

// Append writes one record.
func (j *File) Append(_ context.Context, e ledger.Entry) error {
	b, err := msgpack.Marshal(&e)
	if err != nil {
		return fmt.Errorf("failed to encode entry %d: %w", e.Seq, err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if j.f == nil {
		return ErrClosed
	}
	if _, err := j.f.Write(b); err != nil {
		return fmt.Errorf("failed to write entry %d to %s: %w", e.Seq, j.path, err)
	}
	return nil
}

// Replay reads back every record in the file.
func (j *File) Replay(_ context.Context) ([]ledger.Entry, error) {
	return ReadFile(j.path)
}

// Close closes the underlying file. Appends after Close fail with ErrClosed.
func (j *File) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.f == nil {
		return nil
	}
	err := j.f.Close()
	j.f = nil
	return err
}

// ReadFile decodes every record in a journal file.
func ReadFile(path string) ([]ledger.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal file %s: %w", path, err)
	}
	defer f.Close()

	dec := msgpack.NewDecoder(bufio.NewReader(f))
	var out []ledger.Entry
	for {
		var e ledger.Entry
		if err := dec.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return out, fmt.Errorf("failed to decode record %d of %s: %w", len(out)+1, path, err)
		}
		out = append(out, e)
	}
}
