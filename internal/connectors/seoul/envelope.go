package seoul

import (
	"encoding/json"
	"fmt"

	"github.com/hangang-labs/aptsync/internal/core/domain"
)

// envelope is the useful content of one upstream response, regardless
// of which service key the payload was nested under.
type envelope struct {
	TotalCount int
	Rows       []domain.RawRecord
	Result     *apiResult
}

type apiResult struct {
	Code    string
	Message string
}

// maxEnvelopeDepth bounds the nesting search. Real payloads nest the
// interesting keys one or two levels down; anything deeper is garbage.
const maxEnvelopeDepth = 32

// parseEnvelope decodes a response body and locates the row array,
// total count and RESULT block wherever the service nested them. The
// outer key is the service name and varies per dataset, so the parser
// searches by shape instead of by name: a breadth-first walk over the
// decoded maps, shallowest match wins.
func parseEnvelope(body []byte) (*envelope, error) {
	var root any
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	env := &envelope{TotalCount: -1}

	type item struct {
		node  any
		depth int
	}
	queue := []item{{node: root}}

	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		if it.depth > maxEnvelopeDepth {
			continue
		}

		m, ok := it.node.(map[string]any)
		if !ok {
			if arr, ok := it.node.([]any); ok {
				for _, v := range arr {
					queue = append(queue, item{node: v, depth: it.depth + 1})
				}
			}
			continue
		}

		if v, ok := m["list_total_count"]; ok && env.TotalCount < 0 {
			if n, ok := asInt(v); ok {
				env.TotalCount = n
			}
		}
		if v, ok := m["row"]; ok && env.Rows == nil {
			if arr, ok := v.([]any); ok {
				env.Rows = coerceRows(arr)
			}
		}
		if v, ok := m["RESULT"]; ok && env.Result == nil {
			env.Result = coerceResult(v)
		}
		// A RESULT block at the top level has CODE/MESSAGE inline.
		if _, ok := m["CODE"]; ok && env.Result == nil && it.depth == 0 {
			env.Result = coerceResult(m)
		}

		for _, v := range m {
			queue = append(queue, item{node: v, depth: it.depth + 1})
		}
	}

	return env, nil
}

func coerceRows(arr []any) []domain.RawRecord {
	rows := make([]domain.RawRecord, 0, len(arr))
	for _, v := range arr {
		if m, ok := v.(map[string]any); ok {
			rows = append(rows, domain.RawRecord(m))
		}
	}
	return rows
}

func coerceResult(v any) *apiResult {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	r := &apiResult{}
	if c, ok := m["CODE"].(string); ok {
		r.Code = c
	}
	if msg, ok := m["MESSAGE"].(string); ok {
		r.Message = msg
	}
	if r.Code == "" && r.Message == "" {
		return nil
	}
	return r
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case string:
		var i int
		if _, err := fmt.Sscanf(n, "%d", &i); err == nil {
			return i, true
		}
	}
	return 0, false
}
