package format

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// YAML encodes documents as a single YAML mapping.
type YAML struct {
	// KnownFields rejects struct fragments carrying extra keys.
	KnownFields bool
}

func (YAML) Name() string { return "yaml" }

func (YAML) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func (f YAML) Unmarshal(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(f.KnownFields)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func (YAML) EncodeDocument(version int, entries []Entry) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	if version > 0 {
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: VersionKey},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(version)},
		)
	}
	for _, entry := range entries {
		var doc yaml.Node
		if err := yaml.Unmarshal(entry.Value, &doc); err != nil {
			return nil, fmt.Errorf("format: field %q: %w", entry.Name, err)
		}
		value := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
		if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
			value = doc.Content[0]
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: entry.Name},
			value,
		)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (YAML) DecodeDocument(data []byte) (int, []Entry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return 0, nil, ErrEmptyDocument
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return 0, nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return 0, nil, ErrEmptyDocument
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return 0, nil, fmt.Errorf("format: yaml document must be a mapping")
	}

	version := 0
	entries := make([]Entry, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return 0, nil, fmt.Errorf("format: yaml key at line %d is not a scalar", key.Line)
		}
		if key.Value == VersionKey {
			var v int
			if err := value.Decode(&v); err == nil {
				version = v
			}
			continue
		}
		raw, err := yaml.Marshal(value)
		if err != nil {
			return 0, nil, fmt.Errorf("format: field %q: %w", key.Value, err)
		}
		entries = append(entries, Entry{Name: key.Value, Value: raw})
	}
	return version, entries, nil
}
