package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// JSON encodes documents as a single JSON object.
type JSON struct {
	// Indent is applied to encoded documents. Empty means compact output.
	Indent string
	// DisallowUnknownFields rejects struct fragments carrying extra keys.
	DisallowUnknownFields bool
	// UseNumber decodes untyped numbers as json.Number.
	UseNumber bool
}

func (JSON) Name() string { return "json" }

func (JSON) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (f JSON) Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if f.DisallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	if f.UseNumber {
		dec.UseNumber()
	}
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("format: trailing data after json value")
	}
	return nil
}

func (f JSON) EncodeDocument(version int, entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	writeKey := func(key string) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		encoded, err := json.Marshal(key)
		if err != nil {
			return err
		}
		buf.Write(encoded)
		buf.WriteByte(':')
		return nil
	}
	if version > 0 {
		if err := writeKey(VersionKey); err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "%d", version)
	}
	for _, entry := range entries {
		if err := writeKey(entry.Name); err != nil {
			return nil, err
		}
		value := bytes.TrimSpace(entry.Value)
		if len(value) == 0 {
			value = []byte("null")
		}
		if !json.Valid(value) {
			return nil, fmt.Errorf("format: field %q is not valid json", entry.Name)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')

	if f.Indent == "" {
		var out bytes.Buffer
		if err := json.Compact(&out, buf.Bytes()); err != nil {
			return nil, err
		}
		return out.Bytes(), nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", f.Indent); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func (JSON) DecodeDocument(data []byte) (int, []Entry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return 0, nil, ErrEmptyDocument
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return 0, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return 0, nil, fmt.Errorf("format: json document must be an object")
	}

	version := 0
	var entries []Entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return 0, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return 0, nil, fmt.Errorf("format: unexpected json key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return 0, nil, fmt.Errorf("format: field %q: %w", key, err)
		}
		if key == VersionKey {
			var v int
			if err := json.Unmarshal(raw, &v); err == nil {
				version = v
			}
			continue
		}
		entries = append(entries, Entry{Name: key, Value: append([]byte(nil), raw...)})
	}
	if _, err := dec.Token(); err != nil {
		return 0, nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return 0, nil, fmt.Errorf("format: trailing data after json document")
	}
	return version, entries, nil
}
