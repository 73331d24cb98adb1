package source

import (
	"github.com/lojasmm/cartaz/internal/resolve"
	"github.com/lojasmm/cartaz/internal/tmplerr"
)

// BoolPtr coerces an optional flag value. A nil value stays unset.
func BoolPtr(name string, v any, present bool) (*bool, error) {
	if !present || v == nil {
		return nil, nil
	}
	b, err := resolve.Bool(v)
	if err != nil {
		return nil, tmplerr.Wrap(tmplerr.Validation, err, "field %s", name)
	}
	return &b, nil
}

// FloatPtr coerces an optional numeric value. A nil value stays unset.
func FloatPtr(name string, v any, present bool) (*float64, error) {
	if !present || v == nil {
		return nil, nil
	}
	f, err := resolve.Float(v)
	if err != nil {
		return nil, tmplerr.Wrap(tmplerr.Validation, err, "field %s", name)
	}
	return &f, nil
}

// StringPtr returns a pointer to s when present.
func StringPtr(s string, present bool) *string {
	if !present {
		return nil
	}
	return &s
}
