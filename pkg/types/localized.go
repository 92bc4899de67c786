package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// LocalizedText is the Arabic/English display pair stored as jsonb.
type LocalizedText struct {
	EN string `json:"en"`
	AR string `json:"ar"`
}

// In returns the text for the requested locale, falling back to the
// other language when the requested one is empty.
func (t LocalizedText) In(locale string) string {
	if strings.EqualFold(strings.TrimSpace(locale), "ar") {
		if t.AR != "" {
			return t.AR
		}
		return t.EN
	}
	if t.EN != "" {
		return t.EN
	}
	return t.AR
}

// Value implements driver.Valuer.
func (t LocalizedText) Value() (driver.Value, error) {
	return json.Marshal(t)
}

// Scan implements sql.Scanner.
func (t *LocalizedText) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = LocalizedText{}
		return nil
	case []byte:
		return json.Unmarshal(v, t)
	case string:
		return json.Unmarshal([]byte(v), t)
	default:
		return fmt.Errorf("unsupported localized text source %T", src)
	}
}
