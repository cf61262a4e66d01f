package mcpconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/kadabra-ai/kadabra-runes/src/runes/internal/fs"
	"github.com/kadabra-ai/kadabra-runes/src/runes/internal/fs/fsmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readServers(t *testing.T, dir string) map[string]ServerEntry {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, ".mcp.json"))
	require.NoError(t, err)

	var root struct {
		MCPServers map[string]ServerEntry `json:"mcpServers"`
	}
	require.NoError(t, json.Unmarshal(data, &root))
	return root.MCPServers
}

func TestConfigureCreatesFile(t *testing.T) {
	dir := t.TempDir()

	err := Configure(fs.New(), dir, "/usr/local/bin/kadabra-runes", []string{"gopls"})
	require.NoError(t, err)

	servers := readServers(t, dir)
	require.Contains(t, servers, "kadabra-runes")
	assert.Equal(t, "/usr/local/bin/kadabra-runes", servers["kadabra-runes"].Command)
	assert.Equal(t, []string{"gopls"}, servers["kadabra-runes"].Args)
}

func TestConfigurePreservesExistingServers(t *testing.T) {
	dir := t.TempDir()
	existing := `{"mcpServers":{"other":{"command":"other-tool"}},"custom":{"keep":true}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".mcp.json"), []byte(existing), 0644))

	require.NoError(t, Configure(fs.New(), dir, "kadabra-runes", nil))

	data, err := os.ReadFile(filepath.Join(dir, ".mcp.json"))
	require.NoError(t, err)
	var root map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &root))
	assert.Contains(t, root, "custom")

	servers := readServers(t, dir)
	assert.Contains(t, servers, "other")
	assert.Contains(t, servers, "kadabra-runes")
}

func TestConfigureWithInMemoryFS(t *testing.T) {
	files := fsmock.New().Add("/ws/.mcp.json", `{"mcpServers":{"other":{"command":"other-tool"}},"custom":{"keep":true}}`)

	require.NoError(t, Configure(files, "/ws", "kadabra-runes", []string{"gopls"}))

	data, err := files.ReadFile("/ws/.mcp.json")
	require.NoError(t, err)
	var root struct {
		MCPServers map[string]ServerEntry     `json:"mcpServers"`
		Custom     map[string]json.RawMessage `json:"custom"`
	}
	require.NoError(t, json.Unmarshal(data, &root))
	assert.Contains(t, root.MCPServers, "other")
	require.Contains(t, root.MCPServers, "kadabra-runes")
	assert.Equal(t, []string{"gopls"}, root.MCPServers["kadabra-runes"].Args)
	assert.Contains(t, root.Custom, "keep")
}

func TestConfigureRefusesDuplicate(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Configure(fs.New(), dir, "kadabra-runes", nil))

	err := Configure(fs.New(), dir, "kadabra-runes", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already configured")
}
