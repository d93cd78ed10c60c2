package dispatch

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Params is the parameter bag of a dispatch call as decoded from JSON.
type Params map[string]any

type kind int

const (
	kindString kind = iota
	kindInteger
	kindObject
)

type param struct {
	name string
	kind kind
}

func str(name string) param     { return param{name: name, kind: kindString} }
func integer(name string) param { return param{name: name, kind: kindInteger} }
func object(name string) param  { return param{name: name, kind: kindObject} }

// present reports whether the parameter exists with a plausible type.
// Empty strings count as absent.
func (p Params) present(want param) bool {
	switch want.kind {
	case kindString:
		s, ok := p[want.name].(string)
		return ok && s != ""
	case kindInteger:
		_, ok := p.Int64(want.name)
		return ok
	case kindObject:
		_, ok := p[want.name].(map[string]any)
		return ok
	}
	return false
}

// String returns the named string parameter or "".
func (p Params) String(name string) string {
	s, _ := p[name].(string)
	return s
}

// Object returns the named nested object, or nil.
func (p Params) Object(name string) Params {
	m, _ := p[name].(map[string]any)
	return Params(m)
}

// Int64 accepts integral JSON numbers and decimal strings.
func (p Params) Int64(name string) (int64, bool) {
	switch v := p[name].(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) || math.Abs(v) > 1<<53 {
			return 0, false
		}
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	}
	return 0, false
}
