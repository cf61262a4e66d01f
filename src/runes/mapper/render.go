package mapper

import (
	"fmt"
	"strings"

	"go.lsp.dev/protocol"
)

// NoResults is returned for any navigation request that matched nothing.
const NoResults = "No results found."

const (
	_contextLines     = 2
	_resultsSeparator = "\n\n---\n\n"
)

// FileReader reads a file by path, for rendering context lines around a location.
type FileReader func(name string) ([]byte, error)

// FormatLocation renders a single location as "path:line:column" followed by
// a window of surrounding source lines with the target line marked.
func FormatLocation(loc protocol.Location, readFile FileReader) string {
	path := PathFromURI(loc.URI)
	line, column := FromProtocolPosition(loc.Range.Start)
	header := fmt.Sprintf("%s:%d:%d", path, line, column)

	context := readContextLines(path, line, readFile)
	if context == "" {
		return header
	}
	return header + "\n" + context
}

// FormatLocations renders a list of locations separated by horizontal rules.
func FormatLocations(locs []protocol.Location, readFile FileReader) string {
	if len(locs) == 0 {
		return NoResults
	}

	formatted := make([]string, 0, len(locs))
	for _, loc := range locs {
		formatted = append(formatted, FormatLocation(loc, readFile))
	}
	return strings.Join(formatted, _resultsSeparator)
}

// readContextLines returns the target line and up to two lines on each side,
// with the target line marked. Returns "" if the file cannot be read.
func readContextLines(path string, line uint32, readFile FileReader) string {
	data, err := readFile(path)
	if err != nil {
		return ""
	}

	lines := strings.Split(string(data), "\n")
	if line == 0 || int(line) > len(lines) {
		return ""
	}

	start := int(line) - 1 - _contextLines
	if start < 0 {
		start = 0
	}
	end := int(line) + _contextLines
	if end > len(lines) {
		end = len(lines)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		marker := "  "
		if i == int(line)-1 {
			marker = "> "
		}
		fmt.Fprintf(&b, "%s%4d | %s\n", marker, i+1, lines[i])
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatDocumentSymbols renders a documentSymbol response as an indented outline.
func FormatDocumentSymbols(result DocumentSymbolResult) string {
	if len(result.Symbols) == 0 && len(result.Flat) == 0 {
		return NoResults
	}

	var b strings.Builder
	if len(result.Symbols) > 0 {
		writeDocumentSymbols(&b, result.Symbols, 0)
	} else {
		for _, sym := range result.Flat {
			line, _ := FromProtocolPosition(sym.Location.Range.Start)
			fmt.Fprintf(&b, "[%s] %s (line %d)\n", symbolKindName(sym.Kind), sym.Name, line)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeDocumentSymbols(b *strings.Builder, symbols []protocol.DocumentSymbol, depth int) {
	for _, sym := range symbols {
		line, _ := FromProtocolPosition(sym.SelectionRange.Start)
		fmt.Fprintf(b, "%s[%s] %s (line %d)\n", strings.Repeat("  ", depth), symbolKindName(sym.Kind), sym.Name, line)
		writeDocumentSymbols(b, sym.Children, depth+1)
	}
}

// FormatSymbolInformation renders a workspace/symbol response, one symbol per line.
func FormatSymbolInformation(symbols []protocol.SymbolInformation) string {
	if len(symbols) == 0 {
		return NoResults
	}

	var b strings.Builder
	for _, sym := range symbols {
		line, _ := FromProtocolPosition(sym.Location.Range.Start)
		container := ""
		if sym.ContainerName != "" {
			container = fmt.Sprintf(" (in %s)", sym.ContainerName)
		}
		fmt.Fprintf(&b, "[%s] %s%s - %s:%d\n", symbolKindName(sym.Kind), sym.Name, container, PathFromURI(sym.Location.URI), line)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatCallHierarchyItems renders caller or callee items, one per line.
func FormatCallHierarchyItems(items []protocol.CallHierarchyItem) string {
	if len(items) == 0 {
		return NoResults
	}

	var b strings.Builder
	for _, item := range items {
		line, _ := FromProtocolPosition(item.SelectionRange.Start)
		fmt.Fprintf(&b, "%s (%s) - %s:%d\n", item.Name, symbolKindName(item.Kind), PathFromURI(item.URI), line)
	}
	return strings.TrimRight(b.String(), "\n")
}

var _symbolKindNames = map[protocol.SymbolKind]string{
	protocol.SymbolKindFile:          "File",
	protocol.SymbolKindModule:        "Module",
	protocol.SymbolKindNamespace:     "Namespace",
	protocol.SymbolKindPackage:       "Package",
	protocol.SymbolKindClass:         "Class",
	protocol.SymbolKindMethod:        "Method",
	protocol.SymbolKindProperty:      "Property",
	protocol.SymbolKindField:         "Field",
	protocol.SymbolKindConstructor:   "Constructor",
	protocol.SymbolKindEnum:          "Enum",
	protocol.SymbolKindInterface:     "Interface",
	protocol.SymbolKindFunction:      "Function",
	protocol.SymbolKindVariable:      "Variable",
	protocol.SymbolKindConstant:      "Constant",
	protocol.SymbolKindString:        "String",
	protocol.SymbolKindNumber:        "Number",
	protocol.SymbolKindBoolean:       "Boolean",
	protocol.SymbolKindArray:         "Array",
	protocol.SymbolKindObject:        "Object",
	protocol.SymbolKindKey:           "Key",
	protocol.SymbolKindNull:          "Null",
	protocol.SymbolKindEnumMember:    "EnumMember",
	protocol.SymbolKindStruct:        "Struct",
	protocol.SymbolKindEvent:         "Event",
	protocol.SymbolKindOperator:      "Operator",
	protocol.SymbolKindTypeParameter: "TypeParameter",
}

func symbolKindName(kind protocol.SymbolKind) string {
	if name, ok := _symbolKindNames[kind]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(kind))
}
