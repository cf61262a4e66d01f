package mcpconfig

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/kadabra-ai/kadabra-runes/src/runes/internal/fs"
)

const (
	_fileName  = ".mcp.json"
	_serverKey = "kadabra-runes"
)

// ServerEntry is one server registration inside an .mcp.json file.
type ServerEntry struct {
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
}

// Configure registers the bridge in the .mcp.json of the given directory,
// creating the file if needed. Unknown fields written by other tools are
// preserved. Fails if the bridge is already configured.
func Configure(rfs fs.RunesFS, dir string, command string, args []string) error {
	path := filepath.Join(dir, _fileName)

	root := make(map[string]json.RawMessage)
	exists, err := rfs.FileExists(path)
	if err != nil {
		return err
	}
	if exists {
		data, err := rfs.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &root); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	servers := make(map[string]json.RawMessage)
	if raw, ok := root["mcpServers"]; ok {
		if err := json.Unmarshal(raw, &servers); err != nil {
			return fmt.Errorf("parsing mcpServers in %s: %w", path, err)
		}
	}
	if _, ok := servers[_serverKey]; ok {
		return fmt.Errorf("%s is already configured in %s", _serverKey, path)
	}

	entry, err := json.Marshal(ServerEntry{Command: command, Args: args})
	if err != nil {
		return err
	}
	servers[_serverKey] = entry

	rawServers, err := json.Marshal(servers)
	if err != nil {
		return err
	}
	root["mcpServers"] = rawServers

	out, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(rfs, path, append(out, '\n'))
}

// writeAtomic writes through a temp file and renames it into place, so a
// crash never leaves a truncated config behind.
func writeAtomic(rfs fs.RunesFS, path string, data []byte) error {
	tmp, err := rfs.TempFile(filepath.Dir(path), _fileName+".tmp")
	if err != nil {
		return err
	}
	if err := rfs.WriteFile(tmp, data); err != nil {
		rfs.Remove(tmp)
		return err
	}
	if err := rfs.Rename(tmp, path); err != nil {
		rfs.Remove(tmp)
		return err
	}
	return nil
}
