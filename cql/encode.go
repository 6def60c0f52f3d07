package cql

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb/encoding/wkt"

	"github.com/hugr-lab/filtertree/tree"
)

// Encode renders root as query text that Parse reads back into an
// equivalent tree.
//
// A plain AND or OR root is written without parentheses; an empty AND root
// gives "". Any other empty root has no text form, since "" parses as an
// empty AND root that matches everything. Nested groups are parenthesized, NOT AND and NOT OR groups are
// written as NOT (...), and a negated node gets one more NOT in front.
// Leaves are written as field, operator and value, with two-value operators
// and "in" taking a bracketed list:
//
//	title contains "foo" AND (created during [2024-01-01T00:00:00Z, 2024-02-01T00:00:00Z] OR NOT (a = 1 OR b = 2))
func Encode(root *tree.Group) (string, error) {
	if root == nil {
		return "", fmt.Errorf("%w: nil root", ErrUnencodable)
	}
	if root.Len() == 0 && (root.Negated() || root.Operator() != tree.And) {
		return "", fmt.Errorf("%w: empty root with operator %s (negated: %t)", ErrUnencodable, root.Operator(), root.Negated())
	}
	var b strings.Builder
	enc := &encoder{b: &b}
	if root.Negated() || root.Operator().IsNegated() {
		if err := enc.group(root); err != nil {
			return "", err
		}
		return b.String(), nil
	}
	if err := enc.children(root); err != nil {
		return "", err
	}
	return b.String(), nil
}

// EncodeLeaf renders a single predicate.
func EncodeLeaf(l *tree.Leaf) (string, error) {
	var b strings.Builder
	if err := (&encoder{b: &b}).leaf(l); err != nil {
		return "", err
	}
	return b.String(), nil
}

type encoder struct {
	b *strings.Builder
}

func (e *encoder) node(n tree.Node) error {
	switch x := n.(type) {
	case *tree.Leaf:
		return e.leaf(x)
	case *tree.Group:
		return e.group(x)
	}
	return fmt.Errorf("%w: nil node", ErrUnencodable)
}

func (e *encoder) group(g *tree.Group) error {
	if g.Len() == 0 {
		return fmt.Errorf("%w: group %s has no children", ErrUnencodable, g.ID())
	}
	if g.Negated() {
		e.b.WriteString("NOT ")
	}
	if g.Operator().IsNegated() {
		e.b.WriteString("NOT ")
	}
	e.b.WriteByte('(')
	if err := e.children(g); err != nil {
		return err
	}
	e.b.WriteByte(')')
	return nil
}

func (e *encoder) children(g *tree.Group) error {
	if !g.Operator().Valid() {
		return fmt.Errorf("%w: group %s has operator %q", ErrUnencodable, g.ID(), string(g.Operator()))
	}
	sep := " " + string(g.Operator().Base()) + " "
	for i := 0; i < g.Len(); i++ {
		if i > 0 {
			e.b.WriteString(sep)
		}
		if err := e.node(g.Child(i)); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) leaf(l *tree.Leaf) error {
	op := l.Operator()
	if !op.Valid() {
		return fmt.Errorf("%w: leaf %s has operator %q", ErrUnencodable, l.ID(), string(op))
	}
	if !op.AcceptsArity(l.NumValues()) {
		return fmt.Errorf("%w: leaf %s: %s with %d values", ErrUnencodable, l.ID(), op, l.NumValues())
	}
	if l.Field() == "" {
		return fmt.Errorf("%w: leaf %s has no field", ErrUnencodable, l.ID())
	}

	if l.Negated() {
		e.b.WriteString("NOT ")
	}
	e.b.WriteString(QuoteField(l.Field()))
	e.b.WriteByte(' ')
	e.b.WriteString(string(op))

	_, max := op.Arity()
	if max == 0 {
		return nil
	}
	e.b.WriteByte(' ')
	list := max != 1
	if list {
		e.b.WriteByte('[')
	}
	for i := 0; i < l.NumValues(); i++ {
		if i > 0 {
			e.b.WriteString(", ")
		}
		lit, err := FormatValue(l.Value(i))
		if err != nil {
			return fmt.Errorf("leaf %s value %d: %w", l.ID(), i, err)
		}
		e.b.WriteString(lit)
	}
	if list {
		e.b.WriteByte(']')
	}
	return nil
}

// FormatValue returns the literal for v. Floats always carry a decimal
// point or exponent so they read back as floats. Times must fall in years
// 0 through 9999, the range of four-digit RFC 3339 dates.
func FormatValue(v tree.Value) (string, error) {
	switch v.Kind {
	case tree.ValueString:
		s, _ := v.AsString()
		return strconv.Quote(s), nil
	case tree.ValueInt:
		i, _ := v.AsInt()
		return strconv.FormatInt(i, 10), nil
	case tree.ValueFloat:
		f, _ := v.AsFloat()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", fmt.Errorf("%w: float %v", ErrUnencodable, f)
		}
		s := strconv.FormatFloat(f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".e") {
			s += ".0"
		}
		return s, nil
	case tree.ValueBool:
		b, _ := v.AsBool()
		return strconv.FormatBool(b), nil
	case tree.ValueTime:
		t, _ := v.AsTime()
		t = t.UTC()
		if y := t.Year(); y < 0 || y > 9999 {
			return "", fmt.Errorf("%w: year %d", ErrUnencodable, y)
		}
		return t.Format(time.RFC3339Nano), nil
	case tree.ValueGeometry:
		g, ok := v.AsGeometry()
		if !ok {
			return "", fmt.Errorf("%w: nil geometry", ErrUnencodable)
		}
		return wkt.MarshalString(g), nil
	}
	return "", fmt.Errorf("%w: value kind %s", ErrUnencodable, v.Kind)
}

// QuoteField returns name as written in a query: bare when it is an
// identifier that is not a keyword, in backquotes otherwise.
func QuoteField(name string) string {
	if needsQuoting(name) {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return name
}

func needsQuoting(name string) bool {
	if name == "" || isReserved(name) {
		return true
	}
	for i, r := range name {
		if i == 0 && !isIdentStart(r) {
			return true
		}
		if !isIdentPart(r) {
			return true
		}
	}
	return false
}

// isReserved reports whether s is a keyword, a word operator or a geometry
// type name, ignoring case.
func isReserved(s string) bool {
	switch strings.ToLower(s) {
	case "and", "or", "not", "true", "false", "is", "null", "empty":
		return true
	}
	if isGeometryType(s) {
		return true
	}
	_, err := tree.ParseComparison(s)
	return err == nil
}
