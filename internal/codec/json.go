package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"shareaudit/internal/domain"
)

// JSONCodec handles JSON export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Export writes records as a JSON array. An empty run is [] rather than null.
func (c *JSONCodec) Export(records []domain.PermissionRecord, w io.Writer) error {
	if records == nil {
		records = []domain.PermissionRecord{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
