package keymap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func feedString(m *Matcher[string], s string) []Result[string] {
	out := make([]Result[string], 0, len(s))
	for i := 0; i < len(s); i++ {
		out = append(out, m.Feed(Code(s[i])))
	}
	return out
}

func statuses(results []Result[string]) []Status {
	out := make([]Status, len(results))
	for i, r := range results {
		out[i] = r.Status
	}
	return out
}

func TestMatcherSharesPrefixes(t *testing.T) {
	m := New[string]()
	require.True(t, m.Bind("ciw", "A"))
	require.True(t, m.Bind("ci)", "B"))
	require.Equal(t, 2, m.Len())
	require.Len(t, m.root.children, 1)
	require.Len(t, m.root.children['c'].children['i'].children, 2)

	res := feedString(m, "ci)")
	require.Equal(t, []Status{Pending, Pending, Resolved}, statuses(res))
	require.Equal(t, "B", res[2].Action)

	res = feedString(m, "ciw")
	require.Equal(t, []Status{Pending, Pending, Resolved}, statuses(res))
	require.Equal(t, "A", res[2].Action)
}

func TestMatcherRejectionResets(t *testing.T) {
	m := New[string]()
	require.True(t, m.Bind("ciw", "A"))
	require.True(t, m.Bind("ci)", "B"))
	require.True(t, m.Bind("G", "bottom"))

	res := feedString(m, "cx")
	require.Equal(t, []Status{Pending, Rejected}, statuses(res))
	require.False(t, m.Pending())

	res = feedString(m, "ci)")
	require.Equal(t, Resolved, res[2].Status)
	require.Equal(t, "B", res[2].Action)

	require.Equal(t, Resolved, m.Feed('G').Status)
	require.Equal(t, Rejected, m.Feed('q').Status)
	require.Equal(t, Rejected, m.Feed(KeyAlt).Status)
}

func TestMatcherCtrlBinding(t *testing.T) {
	m := New[string]()
	require.True(t, m.Bind("<Ctrl-N>", "next"))
	res := m.Feed(14)
	require.Equal(t, Resolved, res.Status)
	require.Equal(t, "next", res.Action)
}

func TestMatcherAltBinding(t *testing.T) {
	m := New[string]()
	require.True(t, m.Bind("<Alt-j>", "down"))
	require.Equal(t, Pending, m.Feed(KeyAlt).Status)
	res := m.Feed('j')
	require.Equal(t, Resolved, res.Status)
	require.Equal(t, "down", res.Action)
}

func TestMatcherRebindOverwrites(t *testing.T) {
	m := New[string]()
	require.True(t, m.Bind("gg", "A"))
	require.True(t, m.Bind("gg", "B"))
	require.Equal(t, 1, m.Len())

	res := feedString(m, "gg")
	require.Equal(t, Resolved, res[1].Status)
	require.Equal(t, "B", res[1].Action)
}

func TestMatcherInvalidChordLeavesTrieUntouched(t *testing.T) {
	m := New[string]()
	require.False(t, m.Bind("", "x"))
	require.False(t, m.Bind("g5", "x"))
	require.False(t, m.Bind("<Ctrl-Alt-x>", "x"))
	require.Equal(t, 0, m.Len())
	require.Empty(t, m.root.children)
}

func TestMatcherRefusesOverlap(t *testing.T) {
	m := New[string]()
	require.True(t, m.Bind("dd", "delete"))
	require.False(t, m.Bind("d", "short"))
	require.False(t, m.Bind("ddx", "long"))

	require.True(t, m.Bind("g", "go"))
	require.False(t, m.Bind("gt", "next"))
	require.Equal(t, 2, m.Len())

	res := feedString(m, "dd")
	require.Equal(t, "delete", res[1].Action)
	require.Equal(t, "go", m.Feed('g').Action)
}

func TestMatcherNoTimeout(t *testing.T) {
	m := New[string]()
	require.True(t, m.Bind("gt", "next"))
	require.Equal(t, Pending, m.Feed('g').Status)
	require.True(t, m.Pending())
	require.Equal(t, 1, m.Len())
	require.Equal(t, Resolved, m.Feed('t').Status)

	require.Equal(t, Pending, m.Feed('g').Status)
	m.Reset()
	require.Equal(t, Rejected, m.Feed('t').Status)
}

func TestMatcherSyntheticCodes(t *testing.T) {
	m := New[string]()
	require.True(t, m.BindCodes([]Code{KeyPageDown}, "page"))
	require.False(t, m.BindCodes(nil, "nothing"))
	require.Equal(t, Resolved, m.Feed(KeyPageDown).Status)
}
