package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseChord(t *testing.T) {
	tests := []struct {
		in   string
		want Chord
	}{
		{"k", Chord{'k'}},
		{"gt", Chord{'g', 't'}},
		{"ci)", Chord{'c', 'i', ')'}},
		{"<", Chord{'<'}},
		{"<x>", Chord{'<', 'x', '>'}},
		{"<Ctrl-N>", Chord{14}},
		{"<Ctrl-n>", Chord{14}},
		{"g<Ctrl-a>", Chord{'g', 1}},
		{"<Alt-x>", Chord{KeyAlt, 'x'}},
		{"<Alt-5>", Chord{KeyAlt, '5'}},
		{"z<Alt-;>", Chord{'z', KeyAlt, ';'}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseChord(tt.in))
		})
	}
}

func TestParseChordInvalid(t *testing.T) {
	for _, in := range []string{
		"",
		"5",
		"g1",
		"a b",
		"é",
		"<Ctrl-1>",
		"<Ctrl-ab>",
		"<Ctrl-N>x",
		"<Alt-x>y",
		"<Alt- >",
		"<Ctrl-Alt-x>",
		"<Ctrl-N",
	} {
		assert.Nil(t, ParseChord(in), "chord %q", in)
	}
}

func TestCtrlMapping(t *testing.T) {
	assert.Equal(t, Code(1), Ctrl('a'))
	assert.Equal(t, Code(14), Ctrl('N'))
	assert.Equal(t, Code(26), Ctrl('z'))
	assert.Equal(t, Code(-1), Ctrl('1'))
}

func TestChordString(t *testing.T) {
	assert.Equal(t, "gt", ParseChord("gt").String())
	assert.Equal(t, "<Ctrl-n>", ParseChord("<Ctrl-N>").String())
	assert.Equal(t, "g<Alt-x>", ParseChord("g<Alt-x>").String())
	assert.Equal(t, "<PageDown>", Chord{KeyPageDown}.String())
}
