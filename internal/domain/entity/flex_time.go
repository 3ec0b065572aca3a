package entity

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// flexLayouts formatos de fecha que devuelve la API de MegaMart según el endpoint.
var flexLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FlexTime fecha/hora JSON tolerante: acepta RFC3339, fecha-hora sin zona o solo fecha.
// El valor cero se serializa como null.
type FlexTime struct {
	time.Time
}

// NewFlexTime envuelve t.
func NewFlexTime(t time.Time) FlexTime { return FlexTime{Time: t} }

// UnmarshalJSON implementa json.Unmarshaler.
func (t *FlexTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	s := strings.Trim(string(data), `"`)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range flexLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("fecha con formato no soportado: %q", s)
}

// MarshalJSON implementa json.Marshaler.
func (t FlexTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(time.RFC3339) + `"`), nil
}
