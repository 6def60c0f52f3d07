package validate

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/hugr-lab/filtertree/fields"
	"github.com/hugr-lab/filtertree/tree"
)

// ErrInvalidLeafValue is matched by every *InvalidLeafValueError.
var ErrInvalidLeafValue = errors.New("invalid leaf value")

// InvalidLeafValueError describes why a leaf cannot be applied to its field.
type InvalidLeafValueError struct {
	LeafID   string
	Field    string
	Operator tree.Comparison
	// Index is the offending value, or -1 when the problem is not tied to
	// one value.
	Index  int
	Reason string
}

func (e *InvalidLeafValueError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("invalid leaf %s (%s %s): value %d: %s", e.LeafID, e.Field, e.Operator, e.Index, e.Reason)
	}
	return fmt.Sprintf("invalid leaf %s (%s %s): %s", e.LeafID, e.Field, e.Operator, e.Reason)
}

func (e *InvalidLeafValueError) Is(target error) bool {
	return target == ErrInvalidLeafValue
}

// Leaf checks that l's operator and values make sense on their own and,
// when lookup is not nil, for the declared type of the field.
//
// Fields unknown to a non-nil lookup are rejected. String values of enum
// fields must be members of the enumeration for =, <> and in.
func Leaf(l *tree.Leaf, lookup fields.Lookup) error {
	if l == nil {
		return fmt.Errorf("%w: nil leaf", ErrInvalidLeafValue)
	}
	c := checker{leaf: l}
	c.operator()
	if c.err == nil && lookup != nil {
		c.field(lookup)
	}
	if c.err != nil {
		return c.err
	}
	return nil
}

// Tree checks every leaf under root and joins the failures.
func Tree(root tree.Node, lookup fields.Lookup) error {
	var errs []error
	for _, l := range tree.Leaves(root) {
		if err := Leaf(l, lookup); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type checker struct {
	leaf *tree.Leaf
	err  *InvalidLeafValueError
}

func (c *checker) fail(index int, format string, args ...any) {
	if c.err != nil {
		return
	}
	c.err = &InvalidLeafValueError{
		LeafID:   c.leaf.ID(),
		Field:    c.leaf.Field(),
		Operator: c.leaf.Operator(),
		Index:    index,
		Reason:   fmt.Sprintf(format, args...),
	}
}

func (c *checker) kind(i int, kinds ...tree.ValueKind) {
	v := c.leaf.Value(i)
	if slices.Contains(kinds, v.Kind) {
		return
	}
	if len(kinds) == 1 {
		c.fail(i, "expected %s, got %s", kinds[0], v.Kind)
		return
	}
	c.fail(i, "expected one of %v, got %s", kinds, v.Kind)
}

func (c *checker) nonNegative(i int) {
	if f, ok := c.leaf.Value(i).AsFloat(); ok && (f < 0 || math.IsNaN(f)) {
		c.fail(i, "must not be negative")
	}
}

// operator checks what the operator alone requires of its values.
func (c *checker) operator() {
	l := c.leaf
	op := l.Operator()
	if l.Field() == "" {
		c.fail(-1, "missing field")
		return
	}
	if !op.Valid() {
		c.fail(-1, "unknown operator %q", string(op))
		return
	}
	if !op.AcceptsArity(l.NumValues()) {
		min, max := op.Arity()
		switch {
		case max < 0:
			c.fail(-1, "needs at least %d values, got %d", min, l.NumValues())
		default:
			c.fail(-1, "needs %d values, got %d", max, l.NumValues())
		}
		return
	}
	for i := 0; i < l.NumValues(); i++ {
		v := l.Value(i)
		if v.Kind == tree.ValueGeometry {
			if _, ok := v.AsGeometry(); !ok {
				c.fail(i, "nil geometry")
			}
		}
		if v.Kind == tree.ValueFloat {
			if f, _ := v.AsFloat(); math.IsNaN(f) || math.IsInf(f, 0) {
				c.fail(i, "not a finite number")
			}
		}
	}

	switch op {
	case tree.Contains, tree.Like:
		c.kind(0, tree.ValueString)
	case tree.Near:
		c.kind(0, tree.ValueString)
		c.kind(1, tree.ValueInt)
		c.nonNegative(1)
	case tree.Before, tree.After, tree.During:
		for i := 0; i < l.NumValues(); i++ {
			c.kind(i, tree.ValueTime)
		}
	case tree.Between:
		c.kind(0, tree.ValueInt, tree.ValueFloat)
		c.kind(1, tree.ValueInt, tree.ValueFloat)
	case tree.Intersects:
		c.kind(0, tree.ValueGeometry)
	case tree.DWithin:
		c.kind(0, tree.ValueGeometry)
		c.kind(1, tree.ValueInt, tree.ValueFloat)
		c.nonNegative(1)
	}
	if c.err != nil {
		return
	}
	if op == tree.During || op == tree.Between {
		if cmp, ok := l.Value(0).Compare(l.Value(1)); ok && cmp > 0 {
			c.fail(1, "range end is before its start")
		}
	}
}

// allowed lists the operators that apply to each family of attribute types.
var (
	equality    = []tree.Comparison{tree.Equals, tree.NotEquals, tree.In, tree.IsNull}
	ordering    = []tree.Comparison{tree.Less, tree.LessOrEqual, tree.Greater, tree.GreaterOrEqual}
	textOps     = []tree.Comparison{tree.Contains, tree.Like, tree.Near}
	temporalOps = []tree.Comparison{tree.Before, tree.After, tree.During}
	spatialOps  = []tree.Comparison{tree.Intersects, tree.DWithin, tree.IsNull}
)

func operatorsFor(t fields.AttributeType) [][]tree.Comparison {
	switch {
	case t.IsSpatial():
		return [][]tree.Comparison{spatialOps}
	case t.IsTemporal():
		return [][]tree.Comparison{equality, ordering, temporalOps}
	case t.IsNumeric():
		return [][]tree.Comparison{equality, ordering, {tree.Between}}
	case t.IsTextual():
		return [][]tree.Comparison{equality, ordering, textOps}
	case t == fields.Boolean:
		return [][]tree.Comparison{equality}
	}
	return [][]tree.Comparison{{tree.IsNull}}
}

func kindsFor(t fields.AttributeType) []tree.ValueKind {
	switch {
	case t.IsSpatial():
		return []tree.ValueKind{tree.ValueGeometry}
	case t.IsTemporal():
		return []tree.ValueKind{tree.ValueTime}
	case t.IsIntegral():
		return []tree.ValueKind{tree.ValueInt}
	case t.IsNumeric():
		return []tree.ValueKind{tree.ValueInt, tree.ValueFloat}
	case t.IsTextual():
		return []tree.ValueKind{tree.ValueString}
	case t == fields.Boolean:
		return []tree.ValueKind{tree.ValueBool}
	}
	return nil
}

// field checks the leaf against the declared type of its field.
func (c *checker) field(lookup fields.Lookup) {
	l := c.leaf
	op := l.Operator()
	typ, ok := lookup.Type(l.Field())
	if !ok {
		c.fail(-1, "unknown field")
		return
	}

	supported := false
	for _, set := range operatorsFor(typ) {
		if slices.Contains(set, op) {
			supported = true
			break
		}
	}
	if !supported {
		c.fail(-1, "operator not supported for %s fields", typ)
		return
	}

	// Operands whose kind the operator fixes were checked already.
	kinds := kindsFor(typ)
	for i := 0; i < l.NumValues(); i++ {
		switch {
		case op == tree.Near && i == 1, op == tree.DWithin && i == 1:
			continue
		case op.IsTextual() || op.IsTemporal() || op.IsSpatial():
			continue
		}
		c.kind(i, kinds...)
		c.intRange(i, typ)
	}
	if c.err != nil {
		return
	}

	if enum, ok := lookup.Enum(l.Field()); ok && (op == tree.Equals || op == tree.NotEquals || op == tree.In) {
		for i := 0; i < l.NumValues(); i++ {
			s, _ := l.Value(i).AsString()
			if !slices.Contains(enum, s) {
				c.fail(i, "%q is not one of %v", s, enum)
			}
		}
	}
}

func (c *checker) intRange(i int, typ fields.AttributeType) {
	n, ok := c.leaf.Value(i).AsInt()
	if !ok {
		return
	}
	switch typ {
	case fields.Short:
		if n < math.MinInt16 || n > math.MaxInt16 {
			c.fail(i, "%d out of range for SHORT", n)
		}
	case fields.Integer:
		if n < math.MinInt32 || n > math.MaxInt32 {
			c.fail(i, "%d out of range for INTEGER", n)
		}
	}
}
