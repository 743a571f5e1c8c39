package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedDataset indicates an unknown dataset name.
	ErrUnsupportedDataset = errors.New("unsupported dataset")

	// ErrMissingField indicates a record is missing a field the dataset
	// requires. The record is skipped; the surrounding batch continues.
	ErrMissingField = errors.New("required field missing")

	// ErrAnchorNotFound indicates the anchor identity was not located
	// within the scan budget. This is a planning signal, not a failure:
	// the planner degrades to the head-window fallback.
	ErrAnchorNotFound = errors.New("anchor not found within scan budget")

	// ErrEmptyDataset indicates the upstream reports zero rows.
	ErrEmptyDataset = errors.New("dataset is empty upstream")
)
