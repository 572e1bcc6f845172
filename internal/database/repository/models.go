package repository

import "time"

// HistoryEntry is one submitted command line.
type HistoryEntry struct {
	ID        string
	Line      string
	CreatedAt time.Time
}

// TableRef names a table of a browsed database.
type TableRef struct {
	DB    string
	Table string
}

// Session is a named, ordered set of open tables.
type Session struct {
	ID        string
	Name      string
	Tables    []TableRef
	CreatedAt time.Time
	UpdatedAt time.Time
}
