package mapper

import (
	"path/filepath"
	"strings"

	"go.lsp.dev/protocol"
)

var _languageIDs = map[string]protocol.LanguageIdentifier{
	".rs":    "rust",
	".py":    "python",
	".js":    "javascript",
	".jsx":   "javascriptreact",
	".ts":    "typescript",
	".tsx":   "typescriptreact",
	".go":    "go",
	".java":  "java",
	".c":     "c",
	".h":     "c",
	".cpp":   "cpp",
	".cc":    "cpp",
	".cxx":   "cpp",
	".hpp":   "cpp",
	".rb":    "ruby",
	".php":   "php",
	".cs":    "csharp",
	".swift": "swift",
	".kt":    "kotlin",
	".scala": "scala",
	".hs":    "haskell",
	".lua":   "lua",
	".sh":    "shellscript",
	".bash":  "shellscript",
	".html":  "html",
	".css":   "css",
	".json":  "json",
	".yaml":  "yaml",
	".yml":   "yaml",
	".toml":  "toml",
	".md":    "markdown",
}

// LanguageID infers the LSP language identifier from a file extension.
func LanguageID(path string) protocol.LanguageIdentifier {
	ext := strings.ToLower(filepath.Ext(path))
	if id, ok := _languageIDs[ext]; ok {
		return id
	}
	return "plaintext"
}
