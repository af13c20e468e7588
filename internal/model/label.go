package model

// Label is the position annotation attached to a bar.
type Label string

const (
	LabelNone  Label = ""
	LabelLong  Label = "Long"
	LabelShort Label = "Short"
)

func (l Label) String() string {
	if l == LabelNone {
		return "None"
	}
	return string(l)
}

// TiePolicy decides which label survives when a window's max and min fall on the same bar.
type TiePolicy string

const (
	// TieLongWins assigns Short first and Long second, so Long overwrites.
	TieLongWins TiePolicy = "long_wins"
	// TieShortWins assigns Long first and Short second.
	TieShortWins TiePolicy = "short_wins"
)

// Valid reports whether p is a known policy.
func (p TiePolicy) Valid() bool {
	return p == TieLongWins || p == TieShortWins
}
