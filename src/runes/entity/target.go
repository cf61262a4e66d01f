package entity

// FilePosition is a 1-indexed cursor position within a file.
type FilePosition struct {
	Path   string
	Line   uint32
	Column uint32
}

// SymbolQuery names a symbol to resolve, optionally scoped to a single file.
type SymbolQuery struct {
	Name     string
	FilePath string
}

// Target selects a location for a navigation request, either by explicit
// position or by symbol name. Exactly one of the two fields is set.
type Target struct {
	Position *FilePosition
	Symbol   *SymbolQuery
}
