// Package transforms holds the closed set of dataset transformers.
// Each transformer projects raw upstream rows for one dataset into
// canonical records; the transformer is selected once at startup, not
// looked up per row.
package transforms

import (
	"fmt"
	"strings"

	"github.com/hangang-labs/aptsync/internal/core/domain"
	"github.com/hangang-labs/aptsync/internal/core/ports/driven"
	"github.com/hangang-labs/aptsync/internal/normalize"
)

// ForDataset returns the transformer for a dataset.
// It is a driven.TransformerFactory.
func ForDataset(d domain.Dataset) (driven.Transformer, error) {
	switch d {
	case domain.DatasetSale:
		return SaleTransformer{}, nil
	case domain.DatasetRent:
		return RentTransformer{}, nil
	case domain.DatasetAptInfo:
		return AptInfoTransformer{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedDataset, d)
	}
}

// field returns a raw field as a trimmed string. Absent fields, nulls
// and blank strings all collapse to "".
func field(raw domain.RawRecord, key string) string {
	v, ok := raw[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// requireField returns a raw field or an error wrapping
// domain.ErrMissingField when it is blank. Used only for the fields a
// dataset cannot produce a meaningful record without.
func requireField(raw domain.RawRecord, key string) (string, error) {
	s := field(raw, key)
	if s == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrMissingField, key)
	}
	return s, nil
}

// lotKey builds the digits-and-hyphen lot join key from the upstream
// main/sub lot number pair. A sub number without a main number is
// meaningless and yields "".
func lotKey(raw domain.RawRecord) string {
	main := field(raw, "MNO")
	sub := field(raw, "SNO")
	if main == "" {
		return ""
	}
	lot := main
	if sub != "" {
		lot = main + "-" + sub
	}
	return normalize.LotNumber(lot)
}
