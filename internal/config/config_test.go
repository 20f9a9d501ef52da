package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/projector/internal/todo"
)

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestLoad_CUE(t *testing.T) {
	cfg, err := Load("testdata/valid.cue")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, slog.LevelDebug, cfg.Level())
	assert.Equal(t, "/tmp/list.db", cfg.Journal)
	assert.Equal(t, "Groceries", cfg.Title)
	assert.Equal(t, []todo.Item{
		{ID: "item-1", Text: "milk"},
		{ID: "item-2", Text: "eggs", Done: true},
	}, cfg.Items)
}

func TestLoad_YAMLAppliesDefaults(t *testing.T) {
	cfg, err := Load("testdata/valid.yaml")
	require.NoError(t, err)

	assert.Equal(t, slog.LevelWarn, cfg.Level())
	assert.Equal(t, DefaultJournal, cfg.Journal)
	assert.Empty(t, cfg.Session)

	st := cfg.InitialState()
	assert.Equal(t, "Errands", st.Title)
	assert.Equal(t, []todo.Item{{ID: "item-1", Text: "fix bike"}}, st.Items)
	assert.Equal(t, 2, st.NextID)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{"bad log level", "testdata/bad_level.cue", "log_level"},
		{"unknown cue field", "testdata/typo.cue", "titel"},
		{"unknown yaml field", "testdata/typo.yaml", "titel"},
		{"malformed item id", "testdata/bad_id.yaml", "id"},
		{"duplicate item id", "testdata/duplicate.yaml", `duplicate id "a"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_SchemaErrorsAreValidationErrors(t *testing.T) {
	_, err := Load("testdata/bad_level.cue")
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.Pos.IsValid(), "cue errors carry a position")
	assert.Equal(t, "log_level", ve.Field)
	assert.Equal(t, 1, ve.Pos.Line())
	assert.Contains(t, ve.Pos.Filename(), "bad_level.cue")
	assert.NotContains(t, ve.Message, "log_level", "the path is reported once, in Field")
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("title = 'x'"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config format")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.cue"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLevel_UnknownFallsBackToInfo(t *testing.T) {
	cfg := &Config{LogLevel: "chatty"}
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}
