package tree

import (
	"cmp"
	"fmt"
	"strconv"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
)

// ValueKind identifies the Go type held by a Value.
type ValueKind uint8

const (
	ValueString ValueKind = iota + 1
	ValueInt
	ValueFloat
	ValueBool
	ValueTime
	ValueGeometry
)

func (k ValueKind) String() string {
	switch k {
	case ValueString:
		return "string"
	case ValueInt:
		return "int"
	case ValueFloat:
		return "float"
	case ValueBool:
		return "bool"
	case ValueTime:
		return "time"
	case ValueGeometry:
		return "geometry"
	default:
		return "invalid"
	}
}

// Value represents a typed leaf operand.
//
// Data holds a string, int64, float64, bool, time.Time or orb.Geometry
// according to Kind. Use the constructors rather than building a Value by hand.
type Value struct {
	Kind ValueKind
	Data any
}

// Constructors for each value kind.

func String(s string) Value { return Value{Kind: ValueString, Data: s} }
func Int(i int64) Value { return Value{Kind: ValueInt, Data: i} }
func Float(f float64) Value { return Value{Kind: ValueFloat, Data: f} }
func Bool(b bool) Value { return Value{Kind: ValueBool, Data: b} }
func Time(t time.Time) Value { return Value{Kind: ValueTime, Data: t} }
func Geometry(g orb.Geometry) Value { return Value{Kind: ValueGeometry, Data: g} }

// IsNumeric reports whether v holds an int or a float.
func (v Value) IsNumeric() bool {
	return v.Kind == ValueInt || v.Kind == ValueFloat
}

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) {
	s, ok := v.Data.(string)
	return s, ok && v.Kind == ValueString
}

// AsInt returns the integer held by v. Floats are not converted.
func (v Value) AsInt() (int64, bool) {
	i, ok := v.Data.(int64)
	return i, ok && v.Kind == ValueInt
}

// AsFloat returns the numeric value of v, converting ints.
func (v Value) AsFloat() (float64, bool) {
	switch v.Kind {
	case ValueFloat:
		f, ok := v.Data.(float64)
		return f, ok
	case ValueInt:
		i, ok := v.Data.(int64)
		return float64(i), ok
	}
	return 0, false
}

func (v Value) AsBool() (bool, bool) {
	b, ok := v.Data.(bool)
	return b, ok && v.Kind == ValueBool
}

func (v Value) AsTime() (time.Time, bool) {
	t, ok := v.Data.(time.Time)
	return t, ok && v.Kind == ValueTime
}

func (v Value) AsGeometry() (orb.Geometry, bool) {
	g, ok := v.Data.(orb.Geometry)
	return g, ok && v.Kind == ValueGeometry && g != nil
}

// Equal reports whether v and o hold the same value.
// Ints and floats compare numerically; times compare as instants.
func (v Value) Equal(o Value) bool {
	if v.IsNumeric() && o.IsNumeric() {
		if v.Kind == ValueInt && o.Kind == ValueInt {
			a, _ := v.AsInt()
			b, _ := o.AsInt()
			return a == b
		}
		a, _ := v.AsFloat()
		b, _ := o.AsFloat()
		return a == b
	}
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case ValueTime:
		a, _ := v.AsTime()
		b, _ := o.AsTime()
		return a.Equal(b)
	case ValueGeometry:
		a, aok := v.AsGeometry()
		b, bok := o.AsGeometry()
		if !aok || !bok {
			return aok == bok
		}
		return orb.Equal(a, b)
	default:
		return v.Data == o.Data
	}
}

// Compare orders v against o. ok is false when the values are not
// ordered with respect to each other (different kinds, bools, geometries).
func (v Value) Compare(o Value) (c int, ok bool) {
	if v.IsNumeric() && o.IsNumeric() {
		if v.Kind == ValueInt && o.Kind == ValueInt {
			a, _ := v.AsInt()
			b, _ := o.AsInt()
			return cmp.Compare(a, b), true
		}
		a, _ := v.AsFloat()
		b, _ := o.AsFloat()
		return cmp.Compare(a, b), true
	}
	if v.Kind != o.Kind {
		return 0, false
	}
	switch v.Kind {
	case ValueString:
		a, _ := v.AsString()
		b, _ := o.AsString()
		return cmp.Compare(a, b), true
	case ValueTime:
		a, _ := v.AsTime()
		b, _ := o.AsTime()
		return a.Compare(b), true
	}
	return 0, false
}

// String returns a debug representation of v. It is not the query syntax;
// use the cql package to render literals.
func (v Value) String() string {
	switch v.Kind {
	case ValueString:
		s, _ := v.AsString()
		return strconv.Quote(s)
	case ValueTime:
		t, _ := v.AsTime()
		return t.UTC().Format(time.RFC3339Nano)
	case ValueGeometry:
		if g, ok := v.AsGeometry(); ok {
			return wkt.MarshalString(g)
		}
		return "<nil geometry>"
	default:
		return fmt.Sprint(v.Data)
	}
}
