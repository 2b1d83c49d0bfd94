package util

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MustParseUint parses s as an unsigned integer, returning 0 on failure.
func MustParseUint(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

// OptionID coerces a submitted scalar into an option identifier. Clients
// send ids as JSON numbers, numeric strings, or single-element arrays
// depending on the widget; a strict type comparison against the stored id
// silently fails, so everything funnels through here first.
func OptionID(v interface{}) (int64, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case float64:
		return int64(val), true
	case int:
		return int64(val), true
	case int64:
		return val, true
	case uint:
		return int64(val), true
	case json.Number:
		id, err := val.Int64()
		return id, err == nil
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		return id, err == nil
	case []interface{}:
		if len(val) == 0 {
			return 0, false
		}
		return OptionID(val[0])
	default:
		return 0, false
	}
}

// OptionIDs coerces a submitted value into the list of selected option ids,
// dropping entries that do not parse. A bare scalar counts as a one-element
// selection.
func OptionIDs(v interface{}) []int64 {
	var raw []interface{}
	switch val := v.(type) {
	case nil:
		return nil
	case []interface{}:
		raw = val
	default:
		raw = []interface{}{val}
	}

	ids := make([]int64, 0, len(raw))
	for _, item := range raw {
		if id, ok := OptionID(item); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// BoolValue interprets boolean-like submissions. Historical clients sent the
// Spanish text forms alongside literal booleans.
func BoolValue(v interface{}) (bool, bool) {
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "true", "verdadero", "v":
			return true, true
		case "false", "falso", "f":
			return false, true
		}
	}
	return false, false
}

// Stringify renders a submitted answer value for storage.
func Stringify(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, Stringify(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", val)
	}
}
