package models

import (
	"encoding/json"
	"fmt"
)

// Identifier fields removed from document bodies; the value becomes the document key.
const (
	IDField   = "id"
	DateField = "date"
)

// Identifiable is implemented by entities stored as one remote document each.
type Identifiable interface {
	DocumentID() string
}

// DocumentID implements Identifiable.
func (d DayLog) DocumentID() string { return d.Date }

// EncodeDocument marshals v and drops idField from the resulting object.
func EncodeDocument(v any, idField string) (json.RawMessage, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("document is not an object: %w", err)
	}
	delete(fields, idField)
	return json.Marshal(fields)
}

// DecodeDocument restores idField from id and unmarshals body into dst.
func DecodeDocument(id string, body json.RawMessage, dst any, idField string) error {
	fields := map[string]json.RawMessage{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &fields); err != nil {
			return fmt.Errorf("failed to decode document %s: %w", id, err)
		}
	}
	key, err := json.Marshal(id)
	if err != nil {
		return err
	}
	fields[idField] = key
	raw, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode document %s: %w", id, err)
	}
	return nil
}

// IDFieldFor returns the identifier field of a collection kind.
func IDFieldFor(k Kind) string {
	if k == KindLogs {
		return DateField
	}
	return IDField
}
