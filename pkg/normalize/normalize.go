// Package normalize coerces heterogeneous hook payloads into a uniform
// event mapping. Host versions disagree about the shape of hook data
// (object, array, scalar, or nothing at all), so the rest of the pipeline
// only ever sees an Event.
package normalize

import "reflect"

// Event is a normalized hook payload. Unknown keys pass through untouched.
type Event map[string]any

// Normalize coerces raw into an Event, merging defaults underneath.
// It is total: any input shape yields a non-nil Event.
//
//   - nil raw: copy of defaults
//   - scalar raw: defaults plus {"value": raw}
//   - slice/array raw: defaults plus {"items": raw}
//   - map raw: defaults with raw's keys winning
func Normalize(raw any, defaults Event) Event {
	out := make(Event, len(defaults)+4)
	for k, v := range defaults {
		out[k] = v
	}

	if raw == nil {
		return out
	}

	switch v := raw.(type) {
	case Event:
		for k, val := range v {
			out[k] = val
		}
		return out
	case map[string]any:
		for k, val := range v {
			out[k] = val
		}
		return out
	}

	switch reflect.ValueOf(raw).Kind() {
	case reflect.Slice, reflect.Array:
		out["items"] = raw
	case reflect.Map:
		// Non-string-keyed or otherwise exotic maps still count as mappings;
		// fold in whatever keys stringify cleanly.
		rv := reflect.ValueOf(raw)
		for _, key := range rv.MapKeys() {
			if ks, ok := key.Interface().(string); ok {
				out[ks] = rv.MapIndex(key).Interface()
			}
		}
	default:
		out["value"] = raw
	}
	return out
}

// String returns the string at key, or "" when absent or not a string.
func (e Event) String(key string) string {
	v, ok := e[key].(string)
	if !ok {
		return ""
	}
	return v
}

// Int returns the integer at key, tolerating the numeric types JSON
// decoding and host callers produce. Zero when absent or non-numeric.
func (e Event) Int(key string) int64 {
	switch v := e[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	case float32:
		return int64(v)
	}
	return 0
}

// Bool returns the boolean at key, false when absent or not a bool.
func (e Event) Bool(key string) bool {
	v, ok := e[key].(bool)
	return ok && v
}

// Has reports whether key is present.
func (e Event) Has(key string) bool {
	_, ok := e[key]
	return ok
}

// Clone returns a shallow copy.
func (e Event) Clone() Event {
	out := make(Event, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
