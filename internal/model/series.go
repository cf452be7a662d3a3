package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Float is a float64 whose undefined state (NaN) marshals to JSON null.
// Warm-up gaps travel to the dashboard as nulls, never as zeros.
type Float float64

// Defined reports whether the value is not NaN.
func (f Float) Defined() bool { return !math.IsNaN(float64(f)) }

// MarshalJSON encodes NaN as null.
func (f Float) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(f)) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(float64(f), 'g', -1, 64)), nil
}

// UnmarshalJSON decodes null as NaN.
func (f *Float) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = Float(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// Series is an indicator value sequence aligned positionally to a bar
// sequence. NaN positions marshal to null.
type Series []float64

// MarshalJSON encodes each NaN element as null.
func (s Series) MarshalJSON() ([]byte, error) {
	out := make([]Float, len(s))
	for i, v := range s {
		out[i] = Float(v)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes null elements as NaN.
func (s *Series) UnmarshalJSON(b []byte) error {
	var in []Float
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*s = make(Series, len(in))
	for i, v := range in {
		(*s)[i] = float64(v)
	}
	return nil
}
