package api

import (
	"encoding/json"
	"log/slog"
)

// decodeList reads the array stored under the first present envelope key.
// A bare top-level array is accepted too. Anything else is logged and
// treated as an empty result; entries that fail to decode are skipped.
func decodeList[T any](logger *slog.Logger, body []byte, keys ...string) []T {
	out := []T{}
	raws, ok := envelope(body, keys...)
	if !ok {
		logger.Warn("malformed list response", "expected", keys, "bytes", len(body))
		return out
	}
	for i, raw := range raws {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			logger.Warn("skipping malformed list entry", "index", i, "error", err)
			continue
		}
		out = append(out, item)
	}
	return out
}

func envelope(body []byte, keys ...string) ([]json.RawMessage, bool) {
	var arr []json.RawMessage
	if json.Unmarshal(body, &arr) == nil {
		return arr, true
	}
	obj := objectOf(body)
	if obj == nil {
		return nil, false
	}
	for _, k := range keys {
		raw, present := obj[k]
		if !present {
			continue
		}
		if json.Unmarshal(raw, &arr) == nil && arr != nil {
			return arr, true
		}
		return nil, false
	}
	return nil, false
}

// decodeOne decodes a single created/updated record, bare or wrapped under
// one of keys. ok is false when the body held nothing recognisable.
func decodeOne[T any](body []byte, valid func(T) bool, keys ...string) (T, bool) {
	var zero T
	obj := objectOf(body)
	candidates := []json.RawMessage{body}
	for _, k := range keys {
		if raw, present := obj[k]; present {
			candidates = append([]json.RawMessage{raw}, candidates...)
		}
	}
	for _, raw := range candidates {
		var v T
		if json.Unmarshal(raw, &v) == nil && valid(v) {
			return v, true
		}
	}
	return zero, false
}
