package service

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// naive layouts carry no offset and are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp reads an ISO-8601 timestamp. A trailing Z means UTC and values
// without an offset are taken as UTC. The result is always in UTC.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

type syncPayload map[string]json.RawMessage

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// str returns the string stored under key. present is false for absent or null keys.
func (p syncPayload) str(key string) (value string, present bool, valid bool) {
	raw, ok := p[key]
	if !ok || isNull(raw) {
		return "", false, true
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", true, false
	}
	return value, true, true
}

// id returns a positive integer identifier given either as a JSON number or a
// numeric string. Zero and empty strings count as absent.
func (p syncPayload) id(key string) (value int64, present bool, valid bool) {
	raw, ok := p[key]
	if !ok || isNull(raw) {
		return 0, false, true
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		var number json.Number
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&number); err != nil {
			return 0, true, false
		}
		text = number.String()
	}
	text = strings.TrimSpace(text)
	if text == "" || text == "0" {
		return 0, false, true
	}
	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil || value <= 0 {
		return 0, true, false
	}
	return value, true, true
}

// boolean returns the boolean stored under key, or fallback when absent.
func (p syncPayload) boolean(key string, fallback bool) (value bool, valid bool) {
	raw, ok := p[key]
	if !ok || isNull(raw) {
		return fallback, true
	}
	if err := json.Unmarshal(raw, &value); err != nil {
		return fallback, false
	}
	return value, true
}

// timestamp parses the timestamp stored under key, or returns fallback when absent.
func (p syncPayload) timestamp(key string, fallback time.Time) (time.Time, bool) {
	ts, present, valid := p.optionalTimestamp(key)
	if !valid {
		return time.Time{}, false
	}
	if !present {
		return fallback, true
	}
	return ts, true
}

// optionalTimestamp parses the timestamp stored under key. Blank values count as absent.
func (p syncPayload) optionalTimestamp(key string) (value time.Time, present bool, valid bool) {
	raw, present, valid := p.str(key)
	if !valid {
		return time.Time{}, false, false
	}
	if !present || strings.TrimSpace(raw) == "" {
		return time.Time{}, false, true
	}
	ts, ok := ParseTimestamp(raw)
	return ts, ok, ok
}
