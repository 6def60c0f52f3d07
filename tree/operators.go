package tree

import (
	"fmt"
	"strings"
)

// Operator is the boolean operator of a group.
type Operator string

const (
	And    Operator = "AND"
	Or     Operator = "OR"
	NotAnd Operator = "NOT AND"
	NotOr  Operator = "NOT OR"
)

// Operators lists the group operators in presentation order.
var Operators = []Operator{And, Or, NotAnd, NotOr}

// Valid reports whether op is one of the four group operators.
func (op Operator) Valid() bool {
	switch op {
	case And, Or, NotAnd, NotOr:
		return true
	}
	return false
}

// IsNegated reports whether op is NOT AND or NOT OR.
func (op Operator) IsNegated() bool {
	return op == NotAnd || op == NotOr
}

// Base returns the operator without its NOT prefix.
func (op Operator) Base() Operator {
	switch op {
	case NotAnd:
		return And
	case NotOr:
		return Or
	}
	return op
}

// Negate returns the NOT variant of an AND/OR operator and the plain
// variant of a NOT operator.
func (op Operator) Negate() Operator {
	switch op {
	case And:
		return NotAnd
	case Or:
		return NotOr
	case NotAnd:
		return And
	case NotOr:
		return Or
	}
	return op
}

func (op Operator) String() string {
	return string(op)
}

// ParseOperator parses a group operator token. Matching is case-insensitive
// and tolerates runs of whitespace or a dash between NOT and the base operator.
func ParseOperator(s string) (Operator, error) {
	fields := strings.Fields(strings.ReplaceAll(strings.ToUpper(s), "-", " "))
	op := Operator(strings.Join(fields, " "))
	if !op.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidOperator, s)
	}
	return op, nil
}

// Comparison is the operator of a leaf predicate.
type Comparison string

const (
	Equals         Comparison = "="
	NotEquals      Comparison = "<>"
	Less           Comparison = "<"
	LessOrEqual    Comparison = "<="
	Greater        Comparison = ">"
	GreaterOrEqual Comparison = ">="
	Contains       Comparison = "contains"
	Like           Comparison = "like"
	Before         Comparison = "before"
	After          Comparison = "after"
	During         Comparison = "during"
	Between        Comparison = "between"
	In             Comparison = "in"
	Near           Comparison = "near"
	Intersects     Comparison = "intersects"
	DWithin        Comparison = "dwithin"
	IsNull         Comparison = "is null"
)

// Comparisons lists every leaf operator.
var Comparisons = []Comparison{
	Equals, NotEquals, Less, LessOrEqual, Greater, GreaterOrEqual,
	Contains, Like, Before, After, During, Between, In, Near,
	Intersects, DWithin, IsNull,
}

// Valid reports whether c is a known leaf operator.
func (c Comparison) Valid() bool {
	_, _, ok := c.arity()
	return ok
}

// Arity returns the minimum and maximum number of values the operator takes.
// max is -1 when the operator accepts any number of values from min upward.
func (c Comparison) Arity() (min, max int) {
	min, max, _ = c.arity()
	return min, max
}

func (c Comparison) arity() (int, int, bool) {
	switch c {
	case Equals, NotEquals, Less, LessOrEqual, Greater, GreaterOrEqual,
		Contains, Like, Before, After, Intersects:
		return 1, 1, true
	case During, Between, Near, DWithin:
		return 2, 2, true
	case In:
		return 1, -1, true
	case IsNull:
		return 0, 0, true
	}
	return 0, 0, false
}

// AcceptsArity reports whether n values satisfy the operator's arity.
func (c Comparison) AcceptsArity(n int) bool {
	min, max, ok := c.arity()
	if !ok || n < min {
		return false
	}
	return max < 0 || n <= max
}

// IsSpatial reports whether the operator compares geometries.
func (c Comparison) IsSpatial() bool {
	return c == Intersects || c == DWithin
}

// IsTemporal reports whether the operator compares timestamps only.
func (c Comparison) IsTemporal() bool {
	return c == Before || c == After || c == During
}

// IsTextual reports whether the operator matches string content.
func (c Comparison) IsTextual() bool {
	return c == Contains || c == Like || c == Near
}

func (c Comparison) String() string {
	return string(c)
}

// ParseComparison parses a leaf operator token, case-insensitively.
// "!=" is accepted as an alias of "<>".
func ParseComparison(s string) (Comparison, error) {
	norm := strings.Join(strings.Fields(strings.ToLower(s)), " ")
	if norm == "!=" {
		return NotEquals, nil
	}
	c := Comparison(norm)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidComparison, s)
	}
	return c, nil
}
