package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/jmoiron/sqlx/types"
)

// scanJSON decodes a JSONB column into dest. NULL leaves dest untouched.
func scanJSON(src interface{}, dest interface{}) error {
	if src == nil {
		return nil
	}
	var raw types.JSONText
	if err := raw.Scan(src); err != nil {
		return err
	}
	if len(raw) == 0 {
		return nil
	}
	return raw.Unmarshal(dest)
}

func jsonValue(v interface{}) (driver.Value, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}
