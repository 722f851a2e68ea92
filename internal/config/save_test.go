package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveEditor_CreatesNewFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	err := SaveEditor(configPath, EditorConfig{WarnOnDelete: false, ShowControls: true, Labels: DefaultLabels()})
	require.NoError(t, err)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "editor:")
	assert.Contains(t, content, "warn_on_delete: false")
	assert.Contains(t, content, "show_controls: true")
	assert.Contains(t, content, "DELETE THIS ROW?")
}

func TestSaveEditor_PreservesOtherConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	initial := `# my settings
codec:
  delimiter: ";"  # semicolon files at work
editor:
  warn_on_delete: true
  show_controls: true
ui:
  max_cell_width: 10
`
	require.NoError(t, os.WriteFile(configPath, []byte(initial), 0o644))

	err := SaveEditor(configPath, EditorConfig{WarnOnDelete: true, ShowControls: false})
	require.NoError(t, err)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "# my settings")
	assert.Contains(t, content, "# semicolon files at work")
	assert.Contains(t, content, "max_cell_width: 10")
	assert.Contains(t, content, "show_controls: false")
}

func TestSaveEditor_AppendsMissingSection(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("auto_reload: false\n"), 0o644))

	require.NoError(t, SaveEditor(configPath, EditorConfig{ShowControls: true}))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "auto_reload: false")
	assert.Contains(t, string(data), "editor:")
}

func TestSaveEditor_Roundtrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o644))

	labels := DefaultLabels()
	labels.DeleteAllWarning = "Really wipe everything?"
	want := EditorConfig{WarnOnDelete: false, ShowControls: false, Labels: labels}
	require.NoError(t, SaveEditor(configPath, want))

	v := viper.New()
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))
	require.Equal(t, want, cfg.Editor)
	require.Equal(t, "auto", cfg.Codec.Delimiter, "codec section untouched")
}

func TestSaveEditor_RejectsNonMappingDocument(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("- just\n- a list\n"), 0o644))

	err := SaveEditor(configPath, EditorConfig{})
	require.Error(t, err)
}

func TestSaveEditor_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("editor: [unclosed\n"), 0o644))

	err := SaveEditor(configPath, EditorConfig{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "parsing config")
}
