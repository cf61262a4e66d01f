package mapper

import (
	"encoding/json"
	"fmt"

	"go.lsp.dev/protocol"
)

// locationLink is the subset of an LSP LocationLink needed to recover a plain location.
type locationLink struct {
	TargetURI            protocol.DocumentURI `json:"targetUri"`
	TargetSelectionRange protocol.Range       `json:"targetSelectionRange"`
}

// DecodeLocations decodes a goto-style response, which servers may encode as
// null, a single Location, a Location array, or a LocationLink array.
func DecodeLocations(raw json.RawMessage) ([]protocol.Location, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var locs []protocol.Location
	if err := json.Unmarshal(raw, &locs); err == nil && validLocations(locs) {
		return locs, nil
	}

	var loc protocol.Location
	if err := json.Unmarshal(raw, &loc); err == nil && loc.URI != "" {
		return []protocol.Location{loc}, nil
	}

	var links []locationLink
	if err := json.Unmarshal(raw, &links); err == nil {
		locs = make([]protocol.Location, 0, len(links))
		for _, l := range links {
			if l.TargetURI == "" {
				return nil, fmt.Errorf("location link response is missing targetUri")
			}
			locs = append(locs, protocol.Location{URI: l.TargetURI, Range: l.TargetSelectionRange})
		}
		return locs, nil
	}

	return nil, fmt.Errorf("unrecognized location response: %s", raw)
}

func validLocations(locs []protocol.Location) bool {
	for _, l := range locs {
		if l.URI == "" {
			return false
		}
	}
	return true
}

// DocumentSymbolResult holds a documentSymbol response in either of its wire shapes.
// Servers answer with hierarchical DocumentSymbols or a flat SymbolInformation list.
type DocumentSymbolResult struct {
	Symbols []protocol.DocumentSymbol
	Flat    []protocol.SymbolInformation
}

// DecodeDocumentSymbols decodes a documentSymbol response into whichever shape the server used.
func DecodeDocumentSymbols(raw json.RawMessage) (DocumentSymbolResult, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return DocumentSymbolResult{}, nil
	}

	// DocumentSymbol carries selectionRange, SymbolInformation carries location.
	// Probe the first element to pick the shape.
	var probe []struct {
		SelectionRange *protocol.Range    `json:"selectionRange"`
		Location       *protocol.Location `json:"location"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return DocumentSymbolResult{}, fmt.Errorf("unrecognized documentSymbol response: %w", err)
	}
	if len(probe) == 0 {
		return DocumentSymbolResult{}, nil
	}

	if probe[0].SelectionRange != nil {
		var symbols []protocol.DocumentSymbol
		if err := json.Unmarshal(raw, &symbols); err != nil {
			return DocumentSymbolResult{}, err
		}
		return DocumentSymbolResult{Symbols: symbols}, nil
	}

	var flat []protocol.SymbolInformation
	if err := json.Unmarshal(raw, &flat); err != nil {
		return DocumentSymbolResult{}, err
	}
	return DocumentSymbolResult{Flat: flat}, nil
}

// markedString covers the deprecated MarkedString hover encoding.
type markedString struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}

// DecodeHoverText extracts displayable text from a hover response, accepting
// MarkupContent, a bare string, a MarkedString object, or an array of either.
func DecodeHoverText(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}

	var hover struct {
		Contents json.RawMessage `json:"contents"`
	}
	if err := json.Unmarshal(raw, &hover); err != nil {
		return "", fmt.Errorf("unrecognized hover response: %w", err)
	}
	if len(hover.Contents) == 0 {
		return "", nil
	}

	return decodeHoverContents(hover.Contents)
}

func decodeHoverContents(raw json.RawMessage) (string, error) {
	var markup protocol.MarkupContent
	if err := json.Unmarshal(raw, &markup); err == nil && markup.Value != "" {
		return markup.Value, nil
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain, nil
	}

	var marked markedString
	if err := json.Unmarshal(raw, &marked); err == nil && marked.Value != "" {
		return marked.Value, nil
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err == nil {
		out := ""
		for _, p := range parts {
			text, err := decodeHoverContents(p)
			if err != nil {
				return "", err
			}
			if out != "" && text != "" {
				out += "\n\n"
			}
			out += text
		}
		return out, nil
	}

	return "", fmt.Errorf("unrecognized hover contents: %s", raw)
}
