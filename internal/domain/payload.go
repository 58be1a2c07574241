package domain

import (
	"encoding/json"
	"errors"
	"regexp"
)

// ErrMalformedPayload is returned when a payload cannot be decoded by any of
// the accepted encodings.
var ErrMalformedPayload = errors.New("malformed payload")

// bareKey matches unquoted object keys, e.g. `{streamUid: "x"}`.
var bareKey = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)

// DecodePayload decodes an event payload into v. Clients send payloads either
// as native JSON objects or as JSON-encoded strings of an object, sometimes
// with unquoted keys. Fallback order: strict object, string-wrapped object,
// bare-key repair of the string-wrapped form.
func DecodePayload(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return ErrMalformedPayload
	}

	if err := json.Unmarshal(raw, v); err == nil {
		return nil
	}

	// A string payload carries the object as encoded text.
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return ErrMalformedPayload
	}

	inner := []byte(text)
	if err := json.Unmarshal(inner, v); err == nil {
		return nil
	}

	repaired := bareKey.ReplaceAll(inner, []byte(`$1"$2":`))
	if err := json.Unmarshal(repaired, v); err == nil {
		return nil
	}

	return ErrMalformedPayload
}
