package driven

import "github.com/hangang-labs/aptsync/internal/core/domain"

// Transformer canonicalises raw upstream rows for one dataset. It is
// pure: no I/O, no hidden state, same output for same input.
type Transformer interface {
	// Dataset returns the dataset this transformer handles.
	Dataset() domain.Dataset

	// Transform projects a raw row into its canonical form. A missing
	// identity-bearing required field returns an error wrapping
	// domain.ErrMissingField; every other parse failure degrades the
	// affected field to nil instead of failing the record.
	Transform(raw domain.RawRecord) (*domain.CanonicalRecord, error)
}

// TransformerFactory returns the transformer for a dataset. The set is
// closed and selected once at startup, never per row.
type TransformerFactory func(d domain.Dataset) (Transformer, error)
