package utils

import (
	"fmt"
	"strings"
	"time"
)

// Accepted on top of RFC 3339 because calendar clients commonly send naive
// local datetimes and bare dates.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func ParseDateTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)

	for _, layout := range dateTimeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized datetime: %q", value)
}
