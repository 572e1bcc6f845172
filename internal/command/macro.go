package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jask/dbrowse/internal/app"
	"github.com/jask/dbrowse/internal/cmdline"
)

// Expand substitutes the macros of a command-line template with values
// from the cursor of t: %p the rowid, %c the column name, %v the cell
// value, %% a literal '%'. Names and values are shell-quoted so that they
// come back as one argument.
func Expand(template string, t *app.Table) (string, error) {
	if !strings.Contains(template, "%") {
		return template, nil
	}
	var sb strings.Builder
	for i := 0; i < len(template); i++ {
		ch := template[i]
		if ch != '%' {
			sb.WriteByte(ch)
			continue
		}
		if i+1 >= len(template) {
			return "", fmt.Errorf("macro: trailing %%")
		}
		i++
		switch template[i] {
		case '%':
			sb.WriteByte('%')
		case 'p', 'c', 'v':
			if t == nil {
				return "", app.ErrNoTable
			}
			v, err := macroValue(template[i], t)
			if err != nil {
				return "", err
			}
			sb.WriteString(v)
		default:
			return "", fmt.Errorf("macro: unknown %%%c", template[i])
		}
	}
	return sb.String(), nil
}

func macroValue(m byte, t *app.Table) (string, error) {
	switch m {
	case 'p':
		if id, ok := t.CurrentRowID(); ok {
			return strconv.FormatInt(id, 10), nil
		}
		return "", fmt.Errorf("macro %%p: no row under the cursor")
	case 'c':
		if col, ok := t.CurrentColumn(); ok {
			return cmdline.Quote(col), nil
		}
		return "", fmt.Errorf("macro %%c: no column under the cursor")
	default:
		if v, ok := t.CurrentCell(); ok {
			return cmdline.Quote(v), nil
		}
		return "", fmt.Errorf("macro %%v: no cell under the cursor")
	}
}

const maxRange = 1 << 20

// ParseRowIDs parses a list such as "1,3,5-7". Duplicates are dropped and
// order is kept.
func ParseRowIDs(s string) ([]int64, error) {
	var out []int64
	seen := make(map[int64]bool)
	add := func(id int64) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		from, err := strconv.ParseInt(strings.TrimSpace(lo), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad row id %q", part)
		}
		if !isRange {
			add(from)
			continue
		}
		to, err := strconv.ParseInt(strings.TrimSpace(hi), 10, 64)
		if err != nil || to < from {
			return nil, fmt.Errorf("bad row range %q", part)
		}
		if to-from >= maxRange {
			return nil, fmt.Errorf("row range %q is too large", part)
		}
		for id := from; id <= to; id++ {
			add(id)
		}
	}
	return out, nil
}
