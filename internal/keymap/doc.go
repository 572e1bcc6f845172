// Package keymap resolves streams of key codes into bound actions.
//
// Bindings are written as chord strings ("gt", "dd", "<Ctrl-N>", "<Alt-x>")
// and stored in a trie. A Matcher is fed one code at a time and answers
// Pending while a chord is incomplete, Resolved once a bound chord ends, and
// Rejected when the code cannot continue any chord. There is no timeout
// between presses.
//
// A Matcher is not safe for concurrent use. Give each input context its own
// Matcher.
package keymap
