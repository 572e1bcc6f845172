package app

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Buffers is the ordered list of open tables.
type Buffers struct {
	tables []*Table
	cur    int
	prev   int
	nextID int
}

// Len returns the number of open tables.
func (b *Buffers) Len() int { return len(b.tables) }

// Index returns the position of the current table.
func (b *Buffers) Index() int { return b.cur }

// Current returns the current table, or nil when nothing is open.
func (b *Buffers) Current() *Table {
	if len(b.tables) == 0 {
		return nil
	}
	return b.tables[b.cur]
}

// At returns the table at position i.
func (b *Buffers) At(i int) *Table {
	if i < 0 || i >= len(b.tables) {
		return nil
	}
	return b.tables[i]
}

// All returns the open tables in order.
func (b *Buffers) All() []*Table { return b.tables }

// add appends t, gives it the next buffer id and makes it current.
func (b *Buffers) add(t *Table) int {
	b.nextID++
	t.ID = b.nextID
	b.tables = append(b.tables, t)
	b.Switch(len(b.tables) - 1)
	return b.cur
}

// Switch makes position i current and remembers the previous one.
func (b *Buffers) Switch(i int) bool {
	if i < 0 || i >= len(b.tables) {
		return false
	}
	if i != b.cur {
		b.prev = b.cur
	}
	b.cur = i
	return true
}

// Next moves to the following table, wrapping around.
func (b *Buffers) Next() {
	if n := len(b.tables); n > 0 {
		b.Switch((b.cur + 1) % n)
	}
}

// Prev moves to the preceding table, wrapping around.
func (b *Buffers) Prev() {
	if n := len(b.tables); n > 0 {
		b.Switch((b.cur - 1 + n) % n)
	}
}

// Find resolves a buffer reference: "#" for the previous buffer, a buffer id, or
// a regular expression matched against "db:table". The first match wins.
func (b *Buffers) Find(ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return b.cur, nil
	}
	if ref == "#" {
		if b.prev >= len(b.tables) {
			return 0, fmt.Errorf("no previous buffer")
		}
		return b.prev, nil
	}
	if id, err := strconv.Atoi(ref); err == nil {
		for i, t := range b.tables {
			if t.ID == id {
				return i, nil
			}
		}
		return 0, fmt.Errorf("no buffer with id %d", id)
	}
	re, err := regexp.Compile(ref)
	if err != nil {
		return 0, fmt.Errorf("bad buffer pattern: %w", err)
	}
	for i, t := range b.tables {
		if re.MatchString(t.Name()) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no buffer matches %q", ref)
}

// remove closes position i. The last table cannot be removed.
func (b *Buffers) remove(i int) (*Table, error) {
	if i < 0 || i >= len(b.tables) {
		return nil, fmt.Errorf("no buffer at %d", i)
	}
	if len(b.tables) == 1 {
		return nil, ErrLastTable
	}
	t := b.tables[i]
	b.tables = append(b.tables[:i], b.tables[i+1:]...)
	fix := func(p int) int {
		if p > i || p == len(b.tables) {
			p--
		}
		return max(p, 0)
	}
	b.cur, b.prev = fix(b.cur), fix(b.prev)
	return t, nil
}

// Listing formats the buffers one per line, marking the current one with
// '%' and the previous one with '#'.
func (b *Buffers) Listing() string {
	var sb strings.Builder
	for i, t := range b.tables {
		mark := " "
		switch i {
		case b.cur:
			mark = "%"
		case b.prev:
			mark = "#"
		}
		fmt.Fprintf(&sb, "%3d %s %s\n", t.ID, mark, t.Name())
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
