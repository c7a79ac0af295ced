package ui

// Status glyphs shared by the table, doctor and spinner output.
const (
	SymbolSuccess  = "✓"
	SymbolFail     = "✗"
	SymbolPending  = "○"
	SymbolComplete = "●"
)
