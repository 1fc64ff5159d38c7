package predicate

import (
	"encoding/json"
	"reflect"
)

// toFloat64 coerces the numeric types assertions actually meet (Go ints
// from live counts, int64 from YAML scalars, float64 and json.Number from
// decoded payloads) into one comparison type.
func toFloat64(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int, int8, int16, int32, int64:
		return float64(reflect.ValueOf(n).Int()), true
	case uint, uint8, uint16, uint32, uint64:
		return float64(reflect.ValueOf(n).Uint()), true
	case json.Number:
		parsed, err := n.Float64()
		return parsed, err == nil
	}
	return 0, false
}
