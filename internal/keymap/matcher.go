package keymap

// Status is the outcome of feeding one code to a Matcher.
type Status int

const (
	// Rejected means the code continues no chord. The matcher is back at
	// the root and the caller should apply its default handling.
	Rejected Status = iota
	// Pending means the code is part of an unfinished chord.
	Pending
	// Resolved means the code completed a bound chord.
	Resolved
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	default:
		return "rejected"
	}
}

// Result carries the status of a Feed and, when Resolved, the bound action.
type Result[A any] struct {
	Status Status
	Action A
}

type node[A any] struct {
	children map[Code]*node[A]
	action   A
	bound    bool
}

func newNode[A any]() *node[A] {
	return &node[A]{children: make(map[Code]*node[A])}
}

// Matcher is a trie of chords with a cursor that remembers how much of the
// current chord has been typed.
type Matcher[A any] struct {
	root   *node[A]
	cursor *node[A]
	count  int
}

// New returns an empty Matcher.
func New[A any]() *Matcher[A] {
	root := newNode[A]()
	return &Matcher[A]{root: root, cursor: root}
}

// Bind parses chord and binds it to action. It reports false, leaving the
// trie untouched, when the chord is invalid or would overlap another chord.
func (m *Matcher[A]) Bind(chord string, action A) bool {
	return m.BindCodes(ParseChord(chord), action)
}

// BindCodes binds an already decoded code sequence. Binding an identical
// sequence again replaces its action. A sequence that is a proper prefix of a
// bound sequence, or that extends one, is refused.
func (m *Matcher[A]) BindCodes(codes []Code, action A) bool {
	if len(codes) == 0 {
		return false
	}
	n := m.root
	i := 0
	for ; i < len(codes); i++ {
		child, ok := n.children[codes[i]]
		if !ok {
			break
		}
		if child.bound && i < len(codes)-1 {
			return false
		}
		n = child
	}
	if i == len(codes) {
		if len(n.children) > 0 {
			return false
		}
		if !n.bound {
			m.count++
		}
		n.action, n.bound = action, true
		return true
	}
	for ; i < len(codes); i++ {
		child := newNode[A]()
		n.children[codes[i]] = child
		n = child
	}
	n.action, n.bound = action, true
	m.count++
	return true
}

// Feed advances the matcher by one code.
func (m *Matcher[A]) Feed(code Code) Result[A] {
	child, ok := m.cursor.children[code]
	if !ok {
		m.cursor = m.root
		return Result[A]{Status: Rejected}
	}
	if child.bound {
		m.cursor = m.root
		return Result[A]{Status: Resolved, Action: child.action}
	}
	m.cursor = child
	return Result[A]{Status: Pending}
}

// Pending reports whether a chord is partially typed.
func (m *Matcher[A]) Pending() bool { return m.cursor != m.root }

// Reset abandons any partially typed chord.
func (m *Matcher[A]) Reset() { m.cursor = m.root }

// Len returns the number of bound chords.
func (m *Matcher[A]) Len() int { return m.count }
