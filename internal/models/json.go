package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSON type for flexible jsonb storage
type JSON map[string]interface{}

// Snapshot marshals any value into a JSON map, for audit old/new values.
func Snapshot(v interface{}) JSON {
	data, err := json.Marshal(v)
	if err != nil {
		return JSON{}
	}
	var out JSON
	if err := json.Unmarshal(data, &out); err != nil {
		return JSON{}
	}
	return out
}

// Value implements the driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	return json.Marshal(map[string]interface{}(j))
}

// Scan implements the sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("json: unsupported scan type")
	}
	return json.Unmarshal(bytes, j)
}
