package transforms

import (
	"github.com/hangang-labs/aptsync/internal/core/domain"
	"github.com/hangang-labs/aptsync/internal/normalize"
)

// AptInfoTransformer canonicalises apartment registry rows
// (OpenAptInfo). Unlike the contract feeds, the registry carries a
// complex code (APT_CD); it is kept as a plain field for joins, but the
// stored key is still the content identity so that registry updates
// upsert exactly like contract rows.
type AptInfoTransformer struct{}

// Dataset returns the dataset this transformer handles.
func (AptInfoTransformer) Dataset() domain.Dataset { return domain.DatasetAptInfo }

// Transform projects a registry row. APT_CD is required.
func (AptInfoTransformer) Transform(raw domain.RawRecord) (*domain.CanonicalRecord, error) {
	aptCode, err := requireField(raw, "APT_CD")
	if err != nil {
		return nil, err
	}

	return &domain.CanonicalRecord{
		ID:           normalize.Identity(raw),
		Dataset:      domain.DatasetAptInfo,
		RecordDate:   normalize.Date(field(raw, "USE_APRV_YMD")),
		Households:   normalize.Int(field(raw, "TNOHSH")),
		AptCode:      aptCode,
		BuildingName: field(raw, "APT_NM"),
		BuildingUse:  field(raw, "HH_TYPE"),
		GuKey:        normalize.Text(field(raw, "SGG_ADDR")),
		DongKey:      normalize.Text(field(raw, "EMD_ADDR")),
		NameKey:      normalize.Text(field(raw, "APT_NM")),
		LotKey:       normalize.LotNumber(field(raw, "APT_STDG_ADDR")),
		Raw:          raw,
	}, nil
}
