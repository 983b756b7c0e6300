package validator

import (
	"errors"
	"strings"
)

func ValidateLatitude(lat float64) error {
	if lat < -90 || lat > 90 {
		return errors.New("latitude out of range")
	}
	return nil
}

func ValidateLongitude(lng float64) error {
	if lng < -180 || lng > 180 {
		return errors.New("longitude out of range")
	}
	return nil
}

// ValidateKeyword mirrors the UI rule: suggestions only fire from two
// characters on.
func ValidateKeyword(s string) (string, error) {
	k := strings.TrimSpace(s)
	if len([]rune(k)) < 2 {
		return "", errors.New("keyword too short")
	}
	return k, nil
}
