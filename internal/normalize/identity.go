package normalize

import (
	"bytes"
	"encoding/binary"
	"encoding/json"

	"golang.org/x/crypto/blake2b"

	"github.com/hangang-labs/aptsync/internal/core/domain"
)

// identityMask keeps identities within the positive signed 64-bit
// range so they fit a BIGINT primary key.
const identityMask = (uint64(1) << 63) - 1

// Identity derives the stable 63-bit identity for a raw record from
// its canonical JSON serialisation: sorted keys, UTF-8, no HTML
// escaping, hashed with an 8-byte BLAKE2b digest. Byte-identical
// payloads always map to the same identity; the zero value is reserved
// and maps to 1.
//
// This is the only key the store can rely on, since the upstream
// datasets carry no natural key that is both unique and stable.
func Identity(raw domain.RawRecord) int64 {
	digest := blake2bSum8(canonicalJSON(raw))
	id := binary.BigEndian.Uint64(digest) & identityMask
	if id == 0 {
		id = 1
	}
	return int64(id)
}

// canonicalJSON serialises a record deterministically. encoding/json
// already emits map keys in sorted order; HTML escaping is disabled so
// the bytes depend only on the field values.
func canonicalJSON(raw domain.RawRecord) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(raw); err != nil {
		// A RawRecord decoded from JSON always re-encodes; reaching
		// this means the record was built from non-JSON values.
		return []byte(err.Error())
	}
	return bytes.TrimRight(buf.Bytes(), "\n")
}

func blake2bSum8(data []byte) []byte {
	h, err := blake2b.New(8, nil)
	if err != nil {
		// Only fails for invalid digest sizes; 8 is valid.
		panic(err)
	}
	h.Write(data)
	return h.Sum(nil)
}
