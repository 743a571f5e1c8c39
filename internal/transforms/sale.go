package transforms

import (
	"github.com/hangang-labs/aptsync/internal/core/domain"
	"github.com/hangang-labs/aptsync/internal/normalize"
)

// SaleTransformer canonicalises apartment sale contract rows
// (tbLnOpendataRtmsV).
type SaleTransformer struct{}

// Dataset returns the dataset this transformer handles.
func (SaleTransformer) Dataset() domain.Dataset { return domain.DatasetSale }

// Transform projects a sale row. CTRT_DAY is required: a sale record
// with no contract day cannot be distinguished from upstream garbage.
// Everything else degrades to nil on parse failure.
func (SaleTransformer) Transform(raw domain.RawRecord) (*domain.CanonicalRecord, error) {
	if _, err := requireField(raw, "CTRT_DAY"); err != nil {
		return nil, err
	}

	return &domain.CanonicalRecord{
		ID:           normalize.Identity(raw),
		Dataset:      domain.DatasetSale,
		ReportYear:   normalize.Int(field(raw, "RCPT_YR")),
		RecordDate:   normalize.Date(field(raw, "CTRT_DAY")),
		PriceKRW:     normalize.ManwonToKRW(field(raw, "THING_AMT")),
		AreaM2:       normalize.Float(field(raw, "ARCH_AREA")),
		Floor:        normalize.Int(field(raw, "FLR")),
		BuildYear:    normalize.Int(field(raw, "ARCH_YR")),
		BuildingName: field(raw, "BLDG_NM"),
		BuildingUse:  field(raw, "BLDG_USG"),
		GuKey:        normalize.Text(field(raw, "CGG_NM")),
		DongKey:      normalize.Text(field(raw, "STDG_NM")),
		NameKey:      normalize.Text(field(raw, "BLDG_NM")),
		LotKey:       lotKey(raw),
		Raw:          raw,
	}, nil
}
