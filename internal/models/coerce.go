package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrCoercion indicates a numeric field that could not be parsed from the
// request payload. Handlers map it to a 400 response.
var ErrCoercion = errors.New("value is not numeric")

// FlexFloat is a float64 that accepts either a JSON number or a numeric
// string ("1.5") on input.
type FlexFloat float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrCoercion, s)
	}
	*f = FlexFloat(v)
	return nil
}

// FlexInt is an int that accepts either a JSON number or a numeric string
// ("3") on input.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (i *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrCoercion, s)
	}
	*i = FlexInt(v)
	return nil
}
