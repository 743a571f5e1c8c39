package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() IngestSettings {
	s := DefaultIngestSettings(DatasetRent)
	s.APIKey = "test-key"
	return s
}

func TestDefaultIngestSettings(t *testing.T) {
	s := DefaultIngestSettings(DatasetSale)

	assert.Equal(t, DatasetSale, s.Dataset)
	assert.Equal(t, "tbLnOpendataRtmsV", s.Service)
	assert.Equal(t, 1000, s.PageSize)
	assert.Equal(t, ModeIncremental, s.Mode)
	assert.Equal(t, ScanForward, s.ScanStrategy)
	assert.Equal(t, 3, s.HeadWindow)
	assert.Equal(t, 5, s.CommitEvery)
}

func TestIngestSettingsValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		require.NoError(t, validSettings().Validate())
	})

	tests := []struct {
		name   string
		mutate func(*IngestSettings)
	}{
		{"missing api key", func(s *IngestSettings) { s.APIKey = "" }},
		{"missing service", func(s *IngestSettings) { s.Service = "" }},
		{"bad dataset", func(s *IngestSettings) { s.Dataset = "bogus" }},
		{"zero page size", func(s *IngestSettings) { s.PageSize = 0 }},
		{"bad mode", func(s *IngestSettings) { s.Mode = "partial" }},
		{"bad strategy", func(s *IngestSettings) { s.ScanStrategy = "sideways" }},
		{"zero commit cadence", func(s *IngestSettings) { s.CommitEvery = 0 }},
		{"zero head window", func(s *IngestSettings) { s.HeadWindow = 0 }},
		{"zero retries", func(s *IngestSettings) { s.MaxRetries = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSettings()
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidInput)
		})
	}
}

func TestIngestModeIsValid(t *testing.T) {
	assert.True(t, ModeFull.IsValid())
	assert.True(t, ModeIncremental.IsValid())
	assert.False(t, IngestMode("resume").IsValid())
}

func TestScanStrategyIsValid(t *testing.T) {
	assert.True(t, ScanForward.IsValid())
	assert.True(t, ScanReverse.IsValid())
	assert.True(t, ScanAuto.IsValid())
	assert.False(t, ScanStrategy("both").IsValid())
}
