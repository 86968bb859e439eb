package record

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// EncodeJSON writes r as indented JSON without HTML escaping.
func EncodeJSON(w io.Writer, r Result) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// EncodeYAML writes r as a YAML document.
func EncodeYAML(w io.Writer, r Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func DecodeJSON(rd io.Reader) (Result, error) {
	var r Result
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return Result{}, fmt.Errorf("decode json: %w", err)
	}
	return r, nil
}

func DecodeYAML(rd io.Reader) (Result, error) {
	var r Result
	if err := yaml.NewDecoder(rd).Decode(&r); err != nil {
		return Result{}, fmt.Errorf("decode yaml: %w", err)
	}
	return r, nil
}
