package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"niviskar/internal/export"
	"niviskar/internal/summarizer"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load([]string{"--src", "papers"})
	require.NoError(t, err)

	assert.Equal(t, ModeBatch, cfg.Mode)
	assert.Equal(t, "papers", cfg.SourceDir)
	assert.Equal(t, "summaries", cfg.DestDir)
	assert.Equal(t, summarizer.Student, cfg.Level)
	assert.Equal(t, export.FormatText, cfg.ExportFormat())
	assert.Equal(t, 5, cfg.Workers)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.Equal(t, int64(10<<20), cfg.MaxUpload)
	assert.Equal(t, 100000, cfg.ExtractOptions().Limit)
	assert.Equal(t, 50, cfg.ExtractOptions().MaxPages)
}

func TestLoad_Flags(t *testing.T) {
	cfg, err := Load([]string{
		"--mode", "serve", "--level", "professor", "--format", "json",
		"--timeout", "30s", "--addr", "127.0.0.1:9000", "--max-upload", "2048",
	})
	require.NoError(t, err)

	assert.Equal(t, ModeServe, cfg.Mode)
	assert.Equal(t, summarizer.Professor, cfg.Level)
	assert.Equal(t, export.FormatJSON, cfg.ExportFormat())
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, int64(2048), cfg.MaxUpload)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("NIVISKAR_WORKERS", "7")
	t.Setenv("NIVISKAR_LOG_LEVEL", "debug")

	cfg, err := Load([]string{"--src", "in"})
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Workers)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_FlagBeatsEnvironment(t *testing.T) {
	t.Setenv("NIVISKAR_LEVEL", "student")

	cfg, err := Load([]string{"--src", "in", "--level", "professor"})
	require.NoError(t, err)
	assert.Equal(t, summarizer.Professor, cfg.Level)
}

func TestLoad_LevelFromEnvironment(t *testing.T) {
	t.Setenv("NIVISKAR_LEVEL", "PROFESSOR")
	t.Setenv("NIVISKAR_TIMEOUT", "45s")

	cfg, err := Load([]string{"--src", "in", "--format", "pdf"})
	require.NoError(t, err)
	assert.Equal(t, summarizer.Professor, cfg.Level)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, export.FormatPDF, cfg.ExportFormat())
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "niviskar.yaml")
	content := "src: /data/papers\nlevel: professor\nformat: yaml\nworkers: 3\npages: 10\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load([]string{"--config", path})
	require.NoError(t, err)

	assert.Equal(t, "/data/papers", cfg.SourceDir)
	assert.Equal(t, summarizer.Professor, cfg.Level)
	assert.Equal(t, export.FormatYAML, cfg.ExportFormat())
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 10, cfg.MaxPages)
}

func TestLoad_MissingExplicitConfigFile(t *testing.T) {
	_, err := Load([]string{"--src", "in", "--config", filepath.Join(t.TempDir(), "absent.yaml")})
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"Batch without source", []string{}},
		{"Unknown mode", []string{"--src", "in", "--mode", "daemon"}},
		{"Unknown level", []string{"--src", "in", "--level", "dean"}},
		{"Unknown format", []string{"--src", "in", "--format", "docx"}},
		{"No workers", []string{"--src", "in", "--workers", "0"}},
		{"Unknown flag", []string{"--src", "in", "--colour"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.args)
			assert.Error(t, err)
		})
	}
}
