package utils

import (
	"errors"
	"regexp"
	"time"
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ErrInvalidDateFormat indica uma data fora do formato YYYY-MM-DD
var ErrInvalidDateFormat = errors.New("invalid date format, expected YYYY-MM-DD")

// ParseStrictDate aceita apenas datas no formato YYYY-MM-DD que existam no calendário
func ParseStrictDate(dateStr string) (time.Time, error) {
	if !datePattern.MatchString(dateStr) {
		return time.Time{}, ErrInvalidDateFormat
	}

	date, err := time.Parse(time.DateOnly, dateStr)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}

	return date, nil
}
