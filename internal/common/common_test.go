package common

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Pipeline.Months)
	assert.Equal(t, "months", cfg.Pipeline.DeadlineRule)
	assert.Equal(t, 90, cfg.Pipeline.FixedDays)
	assert.Equal(t, 14, cfg.Pipeline.TaskLeadDays)
	assert.Equal(t, "either", cfg.Pipeline.Classifier)
	assert.InDelta(t, 0.35, cfg.Pipeline.OAThreshold, 1e-9)
	assert.Equal(t, "TW", cfg.Pipeline.Jurisdiction)
	assert.Equal(t, 5, cfg.Pipeline.MaxIssues)
	assert.True(t, cfg.OCR.EnableFallback)
	assert.Empty(t, cfg.Database.DSN)
	assert.Equal(t, 4, cfg.Batch.Workers)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("OADOCKET_PIPELINE_MONTHS", "6")
	t.Setenv("OADOCKET_PIPELINE_DEADLINE_RULE", "FIXED_DAYS")
	t.Setenv("OADOCKET_DATABASE_DSN", "file::memory:")

	cfg, err := LoadConfig(NewViper(), "")
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Pipeline.Months)
	assert.Equal(t, "fixed_days", cfg.Pipeline.DeadlineRule)
	assert.Equal(t, "file::memory:", cfg.Database.DSN)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "oadocket.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pipeline:\n  classifier: localized\n  task_lead_days: 7\nbatch:\n  file_timeout: 30s\n"), 0o600))

	cfg, err := LoadConfig(NewViper(), path)
	require.NoError(t, err)
	assert.Equal(t, "localized", cfg.Pipeline.Classifier)
	assert.Equal(t, 7, cfg.Pipeline.TaskLeadDays)
	assert.Equal(t, "30s", cfg.Batch.FileTimeout.String())

	_, err = LoadConfig(NewViper(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, IsCode(err, CodeConfig))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad rule", func(c *Config) { c.Pipeline.DeadlineRule = "lunar" }},
		{"zero months", func(c *Config) { c.Pipeline.Months = 0 }},
		{"zero fixed days", func(c *Config) { c.Pipeline.DeadlineRule = "fixed_days"; c.Pipeline.FixedDays = 0 }},
		{"bad classifier", func(c *Config) { c.Pipeline.Classifier = "neural" }},
		{"zero lead", func(c *Config) { c.Pipeline.TaskLeadDays = 0 }},
		{"threshold above one", func(c *Config) { c.Pipeline.OAThreshold = 1.5 }},
		{"zero issues", func(c *Config) { c.Pipeline.MaxIssues = 0 }},
		{"bad driver", func(c *Config) { c.Database.DSN = "x"; c.Database.Driver = "mysql" }},
		{"no workers", func(c *Config) { c.Batch.Workers = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := FromViper(NewViper())
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestExtractionError(t *testing.T) {
	cause := errors.New("pdftotext: exit status 1")
	err := ExtractionError("/in/oa.pdf", cause)
	assert.ErrorIs(t, err, ErrExtraction)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsCode(err, CodeExtractionFailed))
	assert.Contains(t, err.Error(), "/in/oa.pdf")

	assert.ErrorIs(t, ExtractionError("x", nil), ErrExtraction)
	assert.False(t, IsCode(errors.New("plain"), CodeExtractionFailed))
	assert.Nil(t, WrapError(nil, "ctx"))
}

func TestValidator(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "oa.pdf")
	require.NoError(t, os.WriteFile(file, []byte("%PDF"), 0o600))
	long := "this case reference is far too long"

	v := NewValidator().
		Field("path", file, Required, RegularFile).
		Field("months", 3, NonNegative)
	assert.NoError(t, v.Error())

	v = NewValidator().
		Field("path", "", Required).
		Field("dir", dir, RegularFile).
		Field("missing", filepath.Join(dir, "nope.pdf"), RegularFile).
		Field("months", -1, NonNegative).
		Field("case_ref", &long, MaxLength(10))
	require.Len(t, v.Errors(), 5)
	err := v.Error()
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "is a directory")
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RunIDFromContext(ctx))
	fallback := slog.Default()
	assert.Same(t, fallback, LoggerFromContext(ctx, fallback))

	l := slog.New(slog.DiscardHandler)
	ctx = WithLogger(WithRunID(ctx, "run-1"), l)
	assert.Equal(t, "run-1", RunIDFromContext(ctx))
	assert.Same(t, l, LoggerFromContext(ctx, fallback))
}
