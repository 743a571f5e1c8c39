package transforms

import (
	"github.com/hangang-labs/aptsync/internal/core/domain"
	"github.com/hangang-labs/aptsync/internal/normalize"
)

// RentTransformer canonicalises rental contract rows
// (tbLnOpendataRentV).
type RentTransformer struct{}

// Dataset returns the dataset this transformer handles.
func (RentTransformer) Dataset() domain.Dataset { return domain.DatasetRent }

// Transform projects a rent row. CTRT_DAY is required; deposit and
// monthly rent are converted exactly from ten-thousand-won units.
func (RentTransformer) Transform(raw domain.RawRecord) (*domain.CanonicalRecord, error) {
	if _, err := requireField(raw, "CTRT_DAY"); err != nil {
		return nil, err
	}

	return &domain.CanonicalRecord{
		ID:           normalize.Identity(raw),
		Dataset:      domain.DatasetRent,
		ReportYear:   normalize.Int(field(raw, "RCPT_YR")),
		RecordDate:   normalize.Date(field(raw, "CTRT_DAY")),
		DepositKRW:   normalize.ManwonToKRW(field(raw, "GRFE")),
		RentKRW:      normalize.ManwonToKRW(field(raw, "RTFE")),
		AreaM2:       normalize.Float(field(raw, "RENT_AREA")),
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
