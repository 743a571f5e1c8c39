package domain

import "time"

// RawRecord is one dataset row exactly as returned by the upstream API.
// It is immutable once fetched and retained verbatim alongside the
// derived fields for audit and debugging.
type RawRecord map[string]any

// CanonicalRecord is the typed projection of a RawRecord.
// Every field is a pure function of the raw payload; parse failures on
// optional fields degrade to nil rather than aborting the record.
type CanonicalRecord struct {
	// ID is the content-derived identity: a 63-bit positive integer
	// computed from the canonical JSON serialisation of Raw. It is the
	// only key the store relies on, since the upstream provides none.
	ID int64

	// Dataset the record belongs to.
	Dataset Dataset

	// ReportYear is the upstream reporting year (RCPT_YR).
	ReportYear *int

	// RecordDate is the contract date for sale/rent records and the
	// use-approval date for registry records.
	RecordDate *time.Time

	// PriceKRW is the sale amount in won, converted exactly from the
	// upstream's ten-thousand-won denomination.
	PriceKRW *int64

	// DepositKRW is the rental deposit in won (rent only).
	DepositKRW *int64

	// RentKRW is the monthly rent in won (rent only).
	RentKRW *int64

	// AreaM2 is the contract or building area in square metres.
	AreaM2 *float64

	// Floor is the floor number of the unit.
	Floor *int

	// BuildYear is the construction year.
	BuildYear *int

	// Households is the total household count (registry only).
	Households *int

	// AptCode is the upstream complex code (registry only).
	AptCode string

	// BuildingName is the building or complex name as reported.
	BuildingName string

	// BuildingUse is the reported building usage class.
	BuildingUse string

	// Join keys: lower-cased, whitespace-stripped lookup strings used
	// by the serving layer. Empty string means absent.
	GuKey   string
	DongKey string
	NameKey string
	LotKey  string

	// Raw is the unmodified upstream payload.
	Raw RawRecord
}

// AnchorPoint is the identity and commit timestamp of the most recently
// committed record for a dataset. Each run uses it to bound how much of
// the upstream dataset must be re-verified.
type AnchorPoint struct {
	ID          int64
	CommittedAt time.Time
}
