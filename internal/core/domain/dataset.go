package domain

// Dataset identifies one upstream Seoul open-data resource.
// The set is closed: each dataset has its own transformer, its own
// storage table and its own upstream service name, selected once at
// startup rather than dispatched per row.
type Dataset string

// Supported datasets.
const (
	// DatasetSale is the apartment sale contract feed (tbLnOpendataRtmsV).
	DatasetSale Dataset = "sale"

	// DatasetRent is the rental contract feed (tbLnOpendataRentV).
	DatasetRent Dataset = "rent"

	// DatasetAptInfo is the apartment registry feed (OpenAptInfo).
	DatasetAptInfo Dataset = "aptinfo"
)

// IsValid returns true if the dataset is recognised.
func (d Dataset) IsValid() bool {
	switch d {
	case DatasetSale, DatasetRent, DatasetAptInfo:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (d Dataset) String() string {
	return string(d)
}

// DefaultService returns the upstream service name for the dataset.
// A configured service name overrides this.
func (d Dataset) DefaultService() string {
	switch d {
	case DatasetSale:
		return "tbLnOpendataRtmsV"
	case DatasetRent:
		return "tbLnOpendataRentV"
	case DatasetAptInfo:
		return "OpenAptInfo"
	default:
		return ""
	}
}

// AllDatasets returns every supported dataset in stable order.
func AllDatasets() []Dataset {
	return []Dataset{DatasetSale, DatasetRent, DatasetAptInfo}
}

// ParseDataset converts a string into a Dataset.
func ParseDataset(s string) (Dataset, error) {
	d := Dataset(s)
	if !d.IsValid() {
		return "", ErrUnsupportedDataset
	}
	return d, nil
}
