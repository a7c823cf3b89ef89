package source

import (
	"fmt"
	"strconv"
	"strings"
)

// flexFloat decodes JSON numbers that upstreams serve inconsistently as
// either numbers or quoted strings. Empty and null become zero; anything
// non-numeric fails the decode, which the adapter reports as the source
// being absent this cycle.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid numeric value %q", s)
	}
	*f = flexFloat(v)
	return nil
}

// coalesce returns the first positive value, or zero.
func coalesce(values ...flexFloat) float64 {
	for _, v := range values {
		if v > 0 {
			return float64(v)
		}
	}
	return 0
}
