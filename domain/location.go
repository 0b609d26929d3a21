package domain

// Location is a source position, one-based, as emitted by the parser (§3).
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}
