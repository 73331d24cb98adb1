package resolve

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/lojasmm/cartaz/internal/tmplerr"
)

// Bool coerces a template value to a boolean. Strings accept
// true/false, yes/no, on/off and 1/0 in any case.
func Bool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "on", "1":
			return true, nil
		case "false", "no", "off", "0", "":
			return false, nil
		}
	case json.Number:
		f, err := t.Float64()
		if err == nil {
			return f != 0, nil
		}
	case float64:
		return t != 0, nil
	case int:
		return t != 0, nil
	}
	return false, tmplerr.New(tmplerr.Validation, "%v is not a boolean", v)
}

// Int coerces a template value to an integer. Fractional numbers are
// rejected.
func Int(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n), nil
		}
		f, err := t.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, tmplerr.New(tmplerr.Validation, "%v is not an integer", v)
		}
		return int(f), nil
	case float64:
		if t != math.Trunc(t) {
			return 0, tmplerr.New(tmplerr.Validation, "%v is not an integer", v)
		}
		return int(t), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, tmplerr.New(tmplerr.Validation, "%q is not an integer", t)
		}
		return n, nil
	}
	return 0, tmplerr.New(tmplerr.Validation, "%v is not an integer", v)
}

// Float coerces a template value to a float.
func Float(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, tmplerr.New(tmplerr.Validation, "%q is not a number", t.String())
		}
		return f, nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, tmplerr.New(tmplerr.Validation, "%q is not a number", t)
		}
		return f, nil
	}
	return 0, tmplerr.New(tmplerr.Validation, "%v is not a number", v)
}

// Seconds coerces a number of seconds (possibly fractional) to a duration.
func Seconds(v any) (time.Duration, error) {
	f, err := Float(v)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, tmplerr.New(tmplerr.Validation, "negative duration %v", v)
	}
	return time.Duration(f * float64(time.Second)), nil
}
