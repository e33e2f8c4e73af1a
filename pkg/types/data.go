package types

// CellData is what a binding returns for one cell. It is built per call and
// not retained by the engine.
type CellData struct {
	Text     string
	Value    any
	ReadOnly bool
	Style    string // host-defined style class
}

// RowData is what a binding returns for a row as a whole.
type RowData struct {
	Header string // row header label
	Style  string
}
