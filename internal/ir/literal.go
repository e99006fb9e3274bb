package ir

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// LiteralOf converts a Go value to a Literal.
//
// Supported: Literal (returned as is), string, bool, all signed and
// unsigned integer kinds, float32, float64 and time.Time.
// Other terms and other Go types are rejected.
func LiteralOf(v any) (Literal, error) {
	switch val := v.(type) {
	case Literal:
		return val, nil
	case string:
		return NewLiteral(val), nil
	case bool:
		return NewTypedLiteral(strconv.FormatBool(val), XSDBoolean), nil
	case int:
		return integer(int64(val)), nil
	case int8:
		return integer(int64(val)), nil
	case int16:
		return integer(int64(val)), nil
	case int32:
		return integer(int64(val)), nil
	case int64:
		return integer(val), nil
	case uint:
		return uinteger(uint64(val)), nil
	case uint8:
		return uinteger(uint64(val)), nil
	case uint16:
		return uinteger(uint64(val)), nil
	case uint32:
		return uinteger(uint64(val)), nil
	case uint64:
		return uinteger(val), nil
	case float32:
		return double(float64(val)), nil
	case float64:
		return double(val), nil
	case time.Time:
		return NewTypedLiteral(val.UTC().Format(time.RFC3339Nano), XSDDateTime), nil
	case Resource, BlankNode, Variable:
		return Literal{}, fmt.Errorf("%T is not convertible to a literal", v)
	case nil:
		return Literal{}, fmt.Errorf("nil is not convertible to a literal")
	default:
		return Literal{}, fmt.Errorf("unsupported value type for literal: %T", v)
	}
}

func integer(n int64) Literal {
	return NewTypedLiteral(strconv.FormatInt(n, 10), XSDInteger)
}

func uinteger(n uint64) Literal {
	return NewTypedLiteral(strconv.FormatUint(n, 10), XSDInteger)
}

// double uses the xsd:double canonical lexical space (mantissa E exponent).
func double(f float64) Literal {
	switch {
	case math.IsNaN(f):
		return NewTypedLiteral("NaN", XSDDouble)
	case math.IsInf(f, 1):
		return NewTypedLiteral("INF", XSDDouble)
	case math.IsInf(f, -1):
		return NewTypedLiteral("-INF", XSDDouble)
	}
	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'E', -1, 64), "E")
	if !strings.Contains(mantissa, ".") {
		mantissa += ".0"
	}
	e, _ := strconv.Atoi(exp)
	return NewTypedLiteral(mantissa+"E"+strconv.Itoa(e), XSDDouble)
}
