// Package types coerces loosely-typed call arguments into the primitive kinds the
// XML-RPC wire format can carry.
//
// Every coercion takes the raw value and a required flag. A nil raw value is absent,
// as are nil pointers, slices and maps. An absent required value fails with
// apierror.ErrMissingParameter and a present value of the wrong shape fails with
// apierror.ErrWrongType. Both also match apierror.ErrInvalidParameter.
package types

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/natserract/infusionsoft/pkg/infusionsoft/apierror"
)

// WireDouble is a float that prints with at least two decimals when integral, so 5
// reads "5.00". The XML-RPC encoder tags it <double> by kind and does not use this text.
type WireDouble float64

func (d WireDouble) String() string {
	f := float64(d)
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', 2, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (d WireDouble) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func absent(raw any) bool {
	if raw == nil {
		return true
	}
	v := reflect.ValueOf(raw)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
		return v.IsNil()
	}
	return false
}

// deref follows non-nil pointers so *int and int coerce alike.
func deref(raw any) any {
	v := reflect.ValueOf(raw)
	for v.IsValid() && v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil
	}
	return v.Interface()
}

// Any passes the value through unchanged.
func Any(raw any, required bool) (any, error) {
	if required && absent(raw) {
		return nil, apierror.Missing("Any")
	}
	return raw, nil
}

// String stringifies any value. It only fails when a required value is absent.
func String(raw any, required bool) (string, error) {
	if absent(raw) {
		if required {
			return "", apierror.Missing("String")
		}
		return "", nil
	}
	switch v := deref(raw).(type) {
	case string:
		return v, nil
	case time.Time:
		return v.Format(time.RFC3339), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return fmt.Sprint(v), nil
	}
}

// Integer parses raw as an integer, truncating fractional numbers. Values outside the
// range of int fail as wrong type.
func Integer(raw any, required bool) (int, error) {
	if required && absent(raw) {
		return 0, apierror.Missing("Integer")
	}
	n, ok := parseInt(deref(raw))
	if !ok {
		return 0, apierror.WrongType("Integer", raw)
	}
	return n, nil
}

// Double parses raw as a floating point number.
func Double(raw any, required bool) (WireDouble, error) {
	if required && absent(raw) {
		return 0, apierror.Missing("Double")
	}
	n, ok := parseNumber(deref(raw))
	if !ok {
		return 0, apierror.WrongType("Double", raw)
	}
	return WireDouble(n), nil
}

// Boolean coerces truthiness: zero values, empty strings and "false"/"0" are false.
func Boolean(raw any, required bool) (bool, error) {
	if absent(raw) {
		if required {
			return false, apierror.Missing("Boolean")
		}
		return false, nil
	}
	v := reflect.ValueOf(deref(raw))
	switch v.Kind() {
	case reflect.Bool:
		return v.Bool(), nil
	case reflect.String:
		s := strings.TrimSpace(strings.ToLower(v.String()))
		return s != "" && s != "false" && s != "0", nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() != 0, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() != 0, nil
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		return f != 0 && !math.IsNaN(f), nil
	default:
		return true, nil
	}
}

// DateTime accepts only time.Time values; strings are never parsed.
func DateTime(raw any, required bool) (time.Time, error) {
	if required && absent(raw) {
		return time.Time{}, apierror.Missing("Date")
	}
	t, ok := deref(raw).(time.Time)
	if !ok {
		return time.Time{}, apierror.WrongType("Date", raw)
	}
	return t, nil
}

// Array coerces every element of an ordered sequence with elem.
func Array[T any](elem func(raw any, required bool) (T, error), raw any, required bool) ([]T, error) {
	if required && absent(raw) {
		return nil, apierror.Missing("Array")
	}
	v := reflect.ValueOf(deref(raw))
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return nil, apierror.WrongType("Array", raw)
	}

	out := make([]T, v.Len())
	for i := 0; i < v.Len(); i++ {
		item, err := elem(v.Index(i).Interface(), true)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = item
	}
	return out, nil
}

// Struct makes a shallow copy of a string-keyed map, coercing each value with elem.
// A nil elem passes values through, which requires them to already be T.
func Struct[T any](elem func(raw any, required bool) (T, error), raw any, required bool) (map[string]T, error) {
	if required && absent(raw) {
		return nil, apierror.Missing("Struct")
	}
	v := reflect.ValueOf(deref(raw))
	if v.Kind() != reflect.Map || v.Type().Key().Kind() != reflect.String {
		return nil, apierror.WrongType("Struct", raw)
	}

	out := make(map[string]T, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		key := iter.Key().String()
		value := iter.Value().Interface()
		if elem == nil {
			item, ok := value.(T)
			if !ok {
				return nil, fmt.Errorf("key %q: %w", key, apierror.WrongType(reflect.TypeFor[T]().String(), value))
			}
			out[key] = item
			continue
		}
		item, err := elem(value, false)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		out[key] = item
	}
	return out, nil
}

// parseInt keeps integer kinds and integer strings exact; only fractional input goes
// through float64.
func parseInt(raw any) (int, bool) {
	v := reflect.ValueOf(raw)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := v.Int()
		if n < math.MinInt || n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := v.Uint()
		if u > math.MaxInt {
			return 0, false
		}
		return int(u), true
	case reflect.String:
		if n, err := strconv.ParseInt(strings.TrimSpace(v.String()), 10, 0); err == nil {
			return int(n), true
		}
	}

	f, ok := parseNumber(raw)
	if !ok || math.IsInf(f, 0) {
		return 0, false
	}
	f = math.Trunc(f)
	// -math.MinInt is 2^63 (or 2^31), exactly representable unlike math.MaxInt.
	if f < math.MinInt || f >= -float64(math.MinInt) {
		return 0, false
	}
	return int(f), true
}

func parseNumber(raw any) (float64, bool) {
	v := reflect.ValueOf(raw)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		return f, !math.IsNaN(f)
	case reflect.String:
		if n, ok := raw.(json.Number); ok {
			f, err := n.Float64()
			return f, err == nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
		return f, err == nil && !math.IsNaN(f)
	}
	return 0, false
}
