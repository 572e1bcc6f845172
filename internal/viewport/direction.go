package viewport

// Direction is a scroll request. Vertical and horizontal directions are
// handled independently.
type Direction int

const (
	Up Direction = iota + 1
	Down
	Left
	Right
	PageUp
	PageDown
	Home
	End
	FirstColumn
	LastColumn
)

var directionNames = map[Direction]string{
	Up:          "up",
	Down:        "down",
	Left:        "left",
	Right:       "right",
	PageUp:      "page_up",
	PageDown:    "page_down",
	Home:        "home",
	End:         "end",
	FirstColumn: "first_column",
	LastColumn:  "last_column",
}

func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return "invalid"
}

// Valid reports whether d is one of the ten directions.
func (d Direction) Valid() bool {
	return d >= Up && d <= LastColumn
}

// Vertical reports whether d moves between rows.
func (d Direction) Vertical() bool {
	switch d {
	case Up, Down, PageUp, PageDown, Home, End:
		return true
	}
	return false
}

// Horizontal reports whether d moves between columns.
func (d Direction) Horizontal() bool {
	switch d {
	case Left, Right, FirstColumn, LastColumn:
		return true
	}
	return false
}
