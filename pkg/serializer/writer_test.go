package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type testConfig struct {
	Name  string `json:"name" yaml:"name"`
	Value int    `json:"value" yaml:"value"`
}

type testTable struct{}

func (testTable) Columns() []string { return []string{"step", "outcome", "message"} }

func (testTable) Rows() [][]string {
	return [][]string{
		{"nodes", "passed", "all 2 node(s) ready"},
		{"etcd", "skipped", "no pods"},
	}
}

func (testTable) Footer() string { return "pass (Succeeded)" }

func TestWriter_SerializeJSON(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(FormatJSON, &buf)

	data := []testConfig{{Name: "test1", Value: 123}, {Name: "test2", Value: 456}}
	require.NoError(t, writer.Serialize(context.Background(), data))

	var result []testConfig
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, data, result)
}

func TestWriter_SerializeYAML(t *testing.T) {
	var buf bytes.Buffer
	writer := NewWriter(FormatYAML, &buf)

	require.NoError(t, writer.Serialize(context.Background(), testConfig{Name: "test", Value: 7}))

	var result testConfig
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, testConfig{Name: "test", Value: 7}, result)
}

func TestWriter_SerializeTable_Renderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatTable, &buf).Serialize(context.Background(), testTable{}))

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.GreaterOrEqual(t, len(lines), 3)

	assert.Equal(t, []string{"STEP", "OUTCOME", "MESSAGE"}, strings.Fields(lines[0]))
	assert.True(t, strings.HasPrefix(lines[1], "nodes"))
	assert.Contains(t, lines[1], "Passed")
	assert.Contains(t, lines[2], "Skipped")
	assert.Contains(t, lines[2], "no pods")
	assert.True(t, strings.HasSuffix(out, "\npass (Succeeded)\n"))
}

func TestWriter_SerializeTable_Flattened(t *testing.T) {
	type inner struct {
		Port int
	}
	type outer struct {
		Name   string
		Inner  inner
		Labels map[string]string
		Ptr    *inner
	}

	var buf bytes.Buffer
	data := outer{Name: "probe", Inner: inner{Port: 443}, Labels: map[string]string{"app": "dns"}}
	require.NoError(t, NewWriter(FormatTable, &buf).Serialize(context.Background(), data))

	out := buf.String()
	assert.Contains(t, out, "FIELD")
	assert.Contains(t, out, "Inner.Port")
	assert.Contains(t, out, "443")
	assert.Contains(t, out, "Labels.app")
	assert.Contains(t, out, "Ptr")
}

func TestWriter_SerializeTable_EmptyData(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatTable, &buf).Serialize(context.Background(), struct{}{}))
	assert.Equal(t, "<empty>\n", buf.String())
}

func TestWriter_UnsupportedFormat(t *testing.T) {
	w := &Writer{format: Format("xml"), output: &bytes.Buffer{}}
	assert.Error(t, w.Serialize(context.Background(), testConfig{}))
}

func TestNewWriter_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(Format("xml"), &buf)
	assert.Equal(t, FormatJSON, w.format)
}

func TestNewWriter_DefaultsToStdout(t *testing.T) {
	w := NewWriter(FormatJSON, nil)
	assert.Equal(t, os.Stdout, w.output)
}

func TestFormat_IsUnknown(t *testing.T) {
	for _, f := range SupportedFormats() {
		assert.False(t, Format(f).IsUnknown(), f)
	}
	assert.True(t, Format("csv").IsUnknown())
	assert.True(t, Format("").IsUnknown())
}

func TestNewFileWriterOrStdout(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		w := NewFileWriterOrStdout(FormatJSON, "  ")
		assert.Equal(t, os.Stdout, w.output)
		assert.NoError(t, w.Close())
	})

	t.Run("dash", func(t *testing.T) {
		w := NewFileWriterOrStdout(FormatJSON, "-")
		assert.Equal(t, os.Stdout, w.output)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.yaml")
		w := NewFileWriterOrStdout(FormatYAML, path)
		require.NoError(t, w.Serialize(context.Background(), testConfig{Name: "x", Value: 1}))
		require.NoError(t, w.Close())
		require.NoError(t, w.Close(), "close is idempotent")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "name: x")
	})

	t.Run("invalid path falls back to stdout", func(t *testing.T) {
		w := NewFileWriterOrStdout(FormatJSON, filepath.Join(t.TempDir(), "missing", "dir", "out.json"))
		assert.Equal(t, os.Stdout, w.output)
	})
}
