package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetIsValid(t *testing.T) {
	tests := []struct {
		name    string
		dataset Dataset
		want    bool
	}{
		{"sale", DatasetSale, true},
		{"rent", DatasetRent, true},
		{"aptinfo", DatasetAptInfo, true},
		{"empty", Dataset(""), false},
		{"unknown", Dataset("parking"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dataset.IsValid())
		})
	}
}

func TestDatasetDefaultService(t *testing.T) {
	assert.Equal(t, "tbLnOpendataRtmsV", DatasetSale.DefaultService())
	assert.Equal(t, "tbLnOpendataRentV", DatasetRent.DefaultService())
	assert.Equal(t, "OpenAptInfo", DatasetAptInfo.DefaultService())
	assert.Empty(t, Dataset("bogus").DefaultService())
}

func TestParseDataset(t *testing.T) {
	d, err := ParseDataset("rent")
	require.NoError(t, err)
	assert.Equal(t, DatasetRent, d)

	_, err = ParseDataset("unknown")
	assert.ErrorIs(t, err, ErrUnsupportedDataset)
}

func TestAllDatasetsStableOrder(t *testing.T) {
	assert.Equal(t, []Dataset{DatasetSale, DatasetRent, DatasetAptInfo}, AllDatasets())
}
