package server

import (
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
)

const dateOnlyLayout = "2006-01-02"

func parseOptionalBool(value string) (*bool, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return nil, invalidRequestError()
	}
	return &parsed, nil
}

func parseOptionalInt64(value string) (*int64, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, invalidRequestError()
	}
	return &parsed, nil
}

func parseOptionalInt32(value string, fallback int32) (int32, error) {
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		return 0, invalidRequestError()
	}
	return int32(parsed), nil
}

func parseOptionalSnowflakeID(value string) (*snowflake.ID, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := snowflake.ParseString(value)
	if err != nil {
		return nil, invalidRequestError()
	}
	return &parsed, nil
}

func parseSnowflakeID(value string) (snowflake.ID, error) {
	parsed, err := snowflake.ParseString(value)
	if err != nil {
		return 0, invalidRequestError()
	}
	return parsed, nil
}

// parseOptionalTime accepts either a date-only value or RFC3339. Date-only
// values resolve to midnight UTC, or the last instant of the day when
// endOfDay is set so range filters stay inclusive.
func parseOptionalTime(value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	if parsed, err := time.Parse(dateOnlyLayout, value); err == nil {
		if endOfDay {
			parsed = parsed.Add(24*time.Hour - time.Nanosecond)
		}
		return &parsed, nil
	}

	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, invalidRequestError()
	}
	return &parsed, nil
}
