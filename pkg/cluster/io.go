package cluster

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/clustermap/pkg/errors"
)

// Decode reads an analytics payload from r and validates it.
// A payload that fails to decode or validate is returned as an
// INVALID_PAYLOAD error and must not be applied.
func Decode(r io.Reader) (Analytics, error) {
	var a Analytics
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return Analytics{}, errors.Wrap(errors.ErrCodeInvalidPayload, err, "decode payload")
	}
	if err := Validate(a); err != nil {
		return Analytics{}, err
	}
	return a, nil
}

// Unmarshal decodes and validates a payload held in memory.
func Unmarshal(data []byte) (Analytics, error) {
	return Decode(bytes.NewReader(data))
}

// Marshal serializes a payload to pretty-printed JSON bytes.
func Marshal(a Analytics) ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}

// ReadFile reads and validates a payload from a JSON file.
func ReadFile(path string) (Analytics, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Analytics{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "payload %s", path)
		}
		return Analytics{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// WriteFile writes a payload to a JSON file.
func WriteFile(a Analytics, path string) error {
	data, err := Marshal(a)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
