package models

import (
	"bytes"
	"strconv"
)

// FlexFloat decodes upstream coordinate fields that arrive either as JSON
// numbers or as quoted strings ("25.0375"). Anything unparseable decodes
// to zero rather than erroring: one garbage entry in the multi-thousand
// row store directory must not sink the whole decode.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*f = 0
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil || s == "" {
			return nil
		}
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			*f = FlexFloat(v)
		}
		return nil
	}
	if v, err := strconv.ParseFloat(string(data), 64); err == nil {
		*f = FlexFloat(v)
	}
	return nil
}

func (f FlexFloat) Float() float64 { return float64(f) }
