package entity

// ServerConfig describes the language server child process and its workspace.
type ServerConfig struct {
	// Command is the language server executable, e.g. "gopls" or "rust-analyzer".
	Command string
	// Args are passed to the executable unchanged.
	Args []string
	// WorkspaceRoot is the directory opened as the LSP workspace. Canonicalized on startup.
	WorkspaceRoot string
}
