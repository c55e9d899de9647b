package jsonsummary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/carbocation/qcreport/table"
)

var ErrMalformed = errors.New("malformed summary")

// decodeData returns the members of the top-level "data" object in file order.
// Token-level decoding keeps that order, which a map would lose.
func decodeData(content []byte) (keys []string, values map[string]table.Value, err error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()

	values = make(map[string]table.Value)

	if err := expectDelim(dec, '{'); err != nil {
		return nil, nil, fmt.Errorf("%w: top level: %v", ErrMalformed, err)
	}

	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, nil, err
		}

		if key != "data" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, nil, fmt.Errorf("%w: %q: %v", ErrMalformed, key, err)
			}
			continue
		}

		// A repeated "data" member replaces the earlier one.
		keys, values, err = decodeObject(dec)
		if err != nil {
			return nil, nil, err
		}
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if _, err := dec.Token(); err != io.EOF {
		return nil, nil, fmt.Errorf("%w: unexpected content after the summary object", ErrMalformed)
	}

	return keys, values, nil
}

func decodeObject(dec *json.Decoder) ([]string, map[string]table.Value, error) {
	keys := make([]string, 0)
	values := make(map[string]table.Value)

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: data: %v", ErrMalformed, err)
	}
	if tok == nil {
		// "data": null carries no metrics
		return keys, values, nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("%w: data is not an object", ErrMalformed)
	}

	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, nil, err
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("%w: data.%s: %v", ErrMalformed, key, err)
		}

		v, err := toValue(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: data.%s: %v", ErrMalformed, key, err)
		}

		if _, seen := values[key]; !seen {
			keys = append(keys, key)
		}
		values[key] = v
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, nil, fmt.Errorf("%w: data: %v", ErrMalformed, err)
	}

	return keys, values, nil
}

// toValue renders one JSON value as a cell. Numbers keep the text they were
// written with; null is missing.
func toValue(raw json.RawMessage) (table.Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return table.MissingValue(), nil
	}

	switch raw[0] {
	case 'n':
		return table.MissingValue(), nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return table.MissingValue(), err
		}
		return table.Observed(s), nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return table.MissingValue(), err
		}
		return table.Observed(buf.String()), nil
	}

	// numbers and booleans
	return table.Observed(string(raw)), nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected an object key, got %v", ErrMalformed, tok)
	}

	return key, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}

	return nil
}
