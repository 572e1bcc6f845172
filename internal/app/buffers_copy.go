package app

import (
	"strings"

	"github.com/atotto/clipboard"

	"github.com/jask/dbrowse/internal/event"
	"github.com/jask/dbrowse/internal/store"
)

// DefaultCopyKey names the copy buffer used when none is given.
const DefaultCopyKey = "0"

// CopyBuffer holds copied rows under single-character keys. Writes to the
// default key are mirrored to the system clipboard as tab-separated text
// when a clipboard writer is set.
type CopyBuffer struct {
	bufs      map[string][]store.Record
	clipboard func(string) error
}

// NewCopyBuffer returns an empty buffer that mirrors to the system
// clipboard.
func NewCopyBuffer() *CopyBuffer {
	return &CopyBuffer{bufs: make(map[string][]store.Record), clipboard: clipboard.WriteAll}
}

// SetClipboard replaces the clipboard writer. nil turns mirroring off.
func (b *CopyBuffer) SetClipboard(write func(string) error) { b.clipboard = write }

// Set replaces the contents of key. The clipboard error, if any, is
// returned after the buffer has been updated.
func (b *CopyBuffer) Set(key string, recs []store.Record) error {
	if key == "" {
		key = DefaultCopyKey
	}
	b.bufs[key] = recs
	if key != DefaultCopyKey || b.clipboard == nil {
		return nil
	}
	return b.clipboard(RecordsText(recs))
}

// Get returns the contents of key.
func (b *CopyBuffer) Get(key string) []store.Record {
	if key == "" {
		key = DefaultCopyKey
	}
	return b.bufs[key]
}

// RecordsText renders records one per line with tab-separated values.
func RecordsText(recs []store.Record) string {
	lines := make([]string, len(recs))
	for i, rec := range recs {
		vals := make([]string, len(rec.Values))
		for j, v := range rec.Values {
			vals[j] = store.Text(v)
		}
		lines[i] = strings.Join(vals, "\t")
	}
	return strings.Join(lines, "\n")
}

// SelectBuffer holds the rowids chosen with select for one table.
type SelectBuffer struct {
	ref    event.TableRef
	rowids []int64
}

func (s *SelectBuffer) Set(ref event.TableRef, rowids []int64) {
	s.ref, s.rowids = ref, rowids
}

// Get returns the selection if it belongs to ref.
func (s *SelectBuffer) Get(ref event.TableRef) []int64 {
	if s.ref != ref {
		return nil
	}
	return s.rowids
}

func (s *SelectBuffer) Clear() { s.ref, s.rowids = event.TableRef{}, nil }
