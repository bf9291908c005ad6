package extractor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docsync/internal/reference"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_ParseFile(t *testing.T) {
	testFile := filepath.Join("testdata", "sample.go")

	p, err := NewParser("go")
	require.NoError(t, err)

	fu, err := p.ParseFile(context.Background(), testFile)
	require.NoError(t, err)

	unitsByName := make(map[string]*CodeUnit)
	for _, unit := range fu.Units {
		unitsByName[unit.QualifiedName()] = unit
	}

	t.Run("Package", func(t *testing.T) {
		assert.Equal(t, "sample", fu.Package)
		assert.Equal(t, "Package sample exercises the extractor.", fu.PackageDoc)
		for _, unit := range fu.Units {
			assert.Equal(t, "sample", unit.Package)
		}
	})

	t.Run("Only exported top-level symbols", func(t *testing.T) {
		assert.Len(t, fu.Units, 10)
		_, hasHidden := unitsByName["hidden"]
		assert.False(t, hasHidden)
		_, hasLocal := unitsByName["Local"]
		assert.False(t, hasLocal, "types declared inside functions are not documented")
	})

	t.Run("Constants", func(t *testing.T) {
		unit, ok := unitsByName["Version"]
		require.True(t, ok)
		assert.Equal(t, "constant", unit.UnitType)
		assert.Equal(t, "Version is the application version.", unit.Description)
		assert.Equal(t, `const Version = "1.0.0"`, unit.Signature)

		unit, ok = unitsByName["StatusOK"]
		require.True(t, ok)
		assert.Equal(t, "StatusOK indicates success.", unit.Description)
	})

	t.Run("Variables", func(t *testing.T) {
		unit, ok := unitsByName["GlobalVar"]
		require.True(t, ok)
		assert.Equal(t, "variable", unit.UnitType)
		assert.Equal(t, "GlobalVar is a global variable.", unit.Description)
	})

	t.Run("Types", func(t *testing.T) {
		unit, ok := unitsByName["User"]
		require.True(t, ok)
		assert.Equal(t, "struct", unit.UnitType)
		assert.Equal(t, "User is a complex struct.", unit.Description)
		assert.True(t, strings.HasPrefix(unit.Signature, "type User struct"))

		unit, ok = unitsByName["Handler"]
		require.True(t, ok)
		assert.Equal(t, "interface", unit.UnitType)
	})

	t.Run("Functions", func(t *testing.T) {
		unit, ok := unitsByName["MyFunc"]
		require.True(t, ok)
		assert.Equal(t, "function", unit.UnitType)
		assert.Equal(t, "func MyFunc(a int, b string) bool", unit.Signature)
	})

	t.Run("Methods", func(t *testing.T) {
		unit, ok := unitsByName["User.MyMethod"]
		require.True(t, ok)
		assert.Equal(t, "method", unit.UnitType)
		assert.Equal(t, "User", unit.Receiver)
		assert.Equal(t, "MyMethod is a method.", unit.Description)
	})
}

func TestNewParser_UnsupportedLanguage(t *testing.T) {
	_, err := NewParser("cobol")
	require.Error(t, err)
}

func TestReceiverTypeName(t *testing.T) {
	assert.Equal(t, "User", receiverTypeName("(u *User)"))
	assert.Equal(t, "User", receiverTypeName("(User)"))
	assert.Equal(t, "Map", receiverTypeName("(m *Map[K, V])"))
}

func writeModule(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"go.mod":            "module example.com/tenta\n\ngo 1.24\n",
		"tenta.go":          "// Package tenta publishes sensor data.\npackage tenta\n\n// Connect opens a session.\nfunc Connect(url string) error { return nil }\n",
		"client/client.go":  "package client\n\n// Client talks to the broker.\ntype Client struct{}\n\n// Publish sends one message.\nfunc (c *Client) Publish(msg string) {}\n\nfunc helper() {}\n",
		"client/options.go": "package client\n\n// Timeout is the default timeout in seconds.\nconst Timeout = 30\n",
	}
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func TestGoExtractor_Extract(t *testing.T) {
	ext, err := NewGoExtractor(writeModule(t), nil)
	require.NoError(t, err)
	assert.Equal(t, "example.com/tenta", ext.ModulePath())

	md, err := ext.Extract(context.Background(), "example.com/tenta/client")
	require.NoError(t, err)

	want := "<a id=\"example.com/tenta/client\"></a>\n\n" +
		"# example.com/tenta/client\n\n" +
		"<a id=\"example.com/tenta/client.Client\"></a>\n\n" +
		"## Client\n\n```go\ntype Client struct{}\n```\n\nClient talks to the broker.\n\n" +
		"<a id=\"example.com/tenta/client.Client.Publish\"></a>\n\n" +
		"## Client.Publish\n\n```go\nfunc (c *Client) Publish(msg string)\n```\n\nPublish sends one message.\n\n" +
		"<a id=\"example.com/tenta/client.Timeout\"></a>\n\n" +
		"## Timeout\n\n```go\nconst Timeout = 30\n```\n\nTimeout is the default timeout in seconds.\n\n"
	assert.Equal(t, want, md)
}

func TestGoExtractor_Packages(t *testing.T) {
	ext, err := NewGoExtractor(writeModule(t), nil)
	require.NoError(t, err)

	pkgs, err := ext.Packages()
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com/tenta", "example.com/tenta/client"}, pkgs)
}

func TestGoExtractor_UnknownPackage(t *testing.T) {
	ext, err := NewGoExtractor(writeModule(t), nil)
	require.NoError(t, err)

	_, err = ext.Extract(context.Background(), "example.com/tenta/missing")
	require.Error(t, err)
}

func TestGoExtractor_AssemblesIntoReference(t *testing.T) {
	ext, err := NewGoExtractor(writeModule(t), nil)
	require.NoError(t, err)

	asm := reference.NewAssembler(ext, reference.DefaultOptions(), nil)
	page, err := asm.Assemble(context.Background(), []string{"example.com/tenta", "example.com/tenta/client"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(page, "# API Reference\nPackage tenta publishes sensor data.\n\n\n## Connect\n"))
	assert.Contains(t, page, "## Module `example.com/tenta/client`\n")
	assert.Contains(t, page, "### Client.Publish\n")
	assert.NotContains(t, page, "<a id=")
}

func TestGoExtractor_MissingGoMod(t *testing.T) {
	_, err := NewGoExtractor(t.TempDir(), nil)
	require.Error(t, err)
}

func TestReadModulePath(t *testing.T) {
	tests := []struct {
		name  string
		gomod string
		want  string
	}{
		{"plain", "module example.com/tenta\n\ngo 1.24\n", "example.com/tenta"},
		{"trailing comment", "module example.com/tenta // sensor client\n", "example.com/tenta"},
		{"quoted", "// header\nmodule \"example.com/tenta\"\n", "example.com/tenta"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "go.mod")
			require.NoError(t, os.WriteFile(path, []byte(tt.gomod), 0644))
			got, err := readModulePath(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadModulePath_NoDirective(t *testing.T) {
	path := filepath.Join(t.TempDir(), "go.mod")
	require.NoError(t, os.WriteFile(path, []byte("go 1.24\n"), 0644))
	_, err := readModulePath(path)
	require.Error(t, err)
}
