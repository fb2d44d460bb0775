package tool

import (
	"encoding/json"
	"fmt"
	"math"

	contractx "openbank-advisor/agent/contract"
)

type ParamType string

const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeInteger ParamType = "integer"
	TypeBoolean ParamType = "boolean"
)

// Param declares one named tool argument. Every tool argument must be
// declared; undeclared argument names are rejected before the tool runs.
type Param struct {
	Name     string
	Type     ParamType
	Desc     string
	Required bool
	Enum     []string
	Default  any
}

// validateArgs checks args against the declared params and returns a
// normalized copy: required params present, values coerced to the declared
// type, defaults filled in. Every failure wraps ErrInvalidArguments.
func validateArgs(params []Param, args map[string]any) (map[string]any, error) {
	declared := make(map[string]Param, len(params))
	for _, p := range params {
		declared[p.Name] = p
	}

	for name := range args {
		if _, ok := declared[name]; !ok {
			return nil, fmt.Errorf("%w: unknown argument %q", contractx.ErrInvalidArguments, name)
		}
	}

	normalized := make(map[string]any, len(params))
	for _, p := range params {
		raw, present := args[p.Name]
		if !present {
			if p.Required {
				return nil, fmt.Errorf("%w: missing required argument %q", contractx.ErrInvalidArguments, p.Name)
			}
			if p.Default != nil {
				normalized[p.Name] = p.Default
			}
			continue
		}

		value, err := coerce(p, raw)
		if err != nil {
			return nil, err
		}
		normalized[p.Name] = value
	}
	return normalized, nil
}

func coerce(p Param, raw any) (any, error) {
	switch p.Type {
	case TypeString:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: argument %q must be a string", contractx.ErrInvalidArguments, p.Name)
		}
		if len(p.Enum) > 0 && !contains(p.Enum, s) {
			return nil, fmt.Errorf("%w: argument %q must be one of %v", contractx.ErrInvalidArguments, p.Name, p.Enum)
		}
		return s, nil
	case TypeNumber:
		f, ok := toFloat(raw)
		if !ok {
			return nil, fmt.Errorf("%w: argument %q must be a number", contractx.ErrInvalidArguments, p.Name)
		}
		return f, nil
	case TypeInteger:
		f, ok := toFloat(raw)
		if !ok || f != math.Trunc(f) {
			return nil, fmt.Errorf("%w: argument %q must be an integer", contractx.ErrInvalidArguments, p.Name)
		}
		return int(f), nil
	case TypeBoolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: argument %q must be a boolean", contractx.ErrInvalidArguments, p.Name)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: argument %q has unsupported type %q", contractx.ErrInvalidArguments, p.Name, p.Type)
	}
}

// toFloat accepts the numeric shapes a decoded JSON body can carry.
func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
