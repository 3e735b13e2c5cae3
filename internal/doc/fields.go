package doc

import (
	"fmt"
	"strconv"
	"strings"
)

// Fields maps placeholder identifiers to the values substituted for them.
// Values usually arrive from JSON, so numbers are float64 and lists are
// []any.
type Fields map[string]any

// SlideRequest selects one catalog layout to instantiate, with the field
// values for that slide. Request order is caller-authoritative.
type SlideRequest struct {
	SlideType string `json:"slide_type"`
	Fields    Fields `json:"fields"`
}

// Stringify renders a field value for plain-text substitution. Lists join
// with ", " so that a list value handed to a plain placeholder stays
// readable; the join policy is deterministic and part of the contract.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		// JSON numbers: render integers without a trailing ".0".
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case []string:
		return strings.Join(t, ", ")
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = Stringify(item)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", t)
	}
}

// ListItems coerces a field value into list items for list-kind rendering.
// Scalar values become a single item.
func ListItems(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []string:
		return t
	case []any:
		items := make([]string, len(t))
		for i, item := range t {
			items[i] = Stringify(item)
		}
		return items
	default:
		return []string{Stringify(t)}
	}
}
