package model

// Feature is one synthesized expression ranked against the label target.
type Feature struct {
	Rank    int
	Formula string
	Score   float64
}
