package loader

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) Open(string) (fs.File, error) {
	return nil, fs.ErrNotExist
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func TestTOMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/vigil.toml", `
[bus]
history_capacity = 10

[proctor]
detect_dev_tools = true
`)

	config, err := NewTOMLLoaderWithFS(memfs, "/vigil.toml").Load()
	require.NoError(t, err)

	bus, ok := config["bus"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, int64(10), bus["history_capacity"])
	assert.Equal(t, true, config["proctor"].(map[string]any)["detect_dev_tools"])
}

func TestTOMLLoader_MissingFile(t *testing.T) {
	config, err := NewTOMLLoaderWithFS(NewMemFS(), "/missing.toml").Load()
	assert.NoError(t, err)
	assert.Nil(t, config)

	config, err = NewTOMLLoader("").Load()
	assert.NoError(t, err)
	assert.Nil(t, config)
}

func TestTOMLLoader_ParseError(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.toml", "[bus]\nhistory_capacity = = 3\n")

	_, err := NewTOMLLoaderWithFS(memfs, "/bad.toml").Load()
	require.Error(t, err)

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "/bad.toml", pe.Path)
	assert.Equal(t, 2, pe.Line)
	assert.Contains(t, pe.Error(), "line 2")
	assert.NotNil(t, pe.Unwrap())
}

func TestTOMLLoader_LoadFromReader(t *testing.T) {
	config, err := NewTOMLLoader("").LoadFromReader(strings.NewReader("[ui]\nheadless = true\n"))
	require.NoError(t, err)
	assert.Equal(t, true, config["ui"].(map[string]any)["headless"])
}

func TestParseError_Format(t *testing.T) {
	tests := []struct {
		err  ParseError
		want string
	}{
		{ParseError{Path: "a", Message: "m"}, "parse error in a: m"},
		{ParseError{Path: "a", Line: 3, Message: "m"}, "parse error in a at line 3: m"},
		{ParseError{Path: "a", Line: 3, Column: 4, Message: "m"}, "parse error in a at line 3, column 4: m"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"bus": map[string]any{"history_capacity": 10},
		"log": map[string]any{"level": "info", "color": "auto"},
	}
	src := map[string]any{
		"log": map[string]any{"level": "debug"},
		"ui":  map[string]any{"headless": true},
	}

	got := DeepMerge(Clone(dst), src)

	assert.Equal(t, map[string]any{
		"bus": map[string]any{"history_capacity": 10},
		"log": map[string]any{"level": "debug", "color": "auto"},
		"ui":  map[string]any{"headless": true},
	}, got)
	assert.Equal(t, "info", dst["log"].(map[string]any)["level"], "clone protects the original")
	assert.Equal(t, map[string]any{}, DeepMerge(nil, nil))
}
