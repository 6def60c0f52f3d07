package cql

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb/encoding/wkt"

	"github.com/hugr-lab/filtertree/tree"
)

// Parse parses query text into a new tree. Every node gets a fresh id.
//
// Empty or blank text yields an empty AND root. A query that is a single
// predicate yields an AND root with that one leaf. On failure the returned
// error is a *QuerySyntaxError and no tree is returned.
func Parse(text string) (*tree.Group, error) {
	p := &parser{lex: lexer{src: text}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if p.tok.kind == tokEOF {
		return tree.NewRoot(), nil
	}

	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, syntaxError(p.tok, "unexpected token")
	}
	if g, ok := n.(*tree.Group); ok {
		return g, nil
	}
	return tree.NewGroup(tree.And, n), nil
}

// MustParse is like Parse but panics on error. It simplifies building
// fixed trees in tests and examples.
func MustParse(text string) *tree.Group {
	g, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return g
}

type parser struct {
	lex lexer
	tok token
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	t := p.tok
	if t.kind != kind {
		return t, syntaxError(t, "expected %s", what)
	}
	return t, p.advance()
}

// parseOr and parseAnd collect a chain of operands into one group. A chain
// of one operand is returned as is, so parentheses decide nesting.
func (p *parser) parseOr() (tree.Node, error) {
	return p.parseChain(tree.Or, p.parseAnd)
}

func (p *parser) parseAnd() (tree.Node, error) {
	return p.parseChain(tree.And, p.parseUnary)
}

func (p *parser) parseChain(op tree.Operator, operand func() (tree.Node, error)) (tree.Node, error) {
	first, err := operand()
	if err != nil {
		return nil, err
	}
	nodes := []tree.Node{first}
	for p.tok.is(string(op)) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		n, err := operand()
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if len(nodes) == 1 {
		return first, nil
	}
	return tree.NewGroup(op, nodes...), nil
}

// parseUnary applies NOT. The first NOT on a plain AND or OR group selects
// its NOT AND or NOT OR variant; any other NOT flips the negation flag.
func (p *parser) parseUnary() (tree.Node, error) {
	if !p.tok.is("NOT") {
		return p.parsePrimary()
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	n, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	switch x := n.(type) {
	case *tree.Group:
		if !x.Negated() && !x.Operator().IsNegated() {
			return x.WithOperator(x.Operator().Negate()), nil
		}
		return x.WithNegated(!x.Negated()), nil
	case *tree.Leaf:
		return x.WithNegated(!x.Negated()), nil
	}
	return n, nil
}

func (p *parser) parsePrimary() (tree.Node, error) {
	if p.tok.kind != tokLParen {
		return p.parseLeaf()
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	if l, ok := n.(*tree.Leaf); ok {
		return tree.NewGroup(tree.And, l), nil
	}
	return n, nil
}

func (p *parser) parseLeaf() (tree.Node, error) {
	field := p.tok
	switch {
	case field.kind == tokQuotedIdent:
	case field.kind == tokIdent && !isReserved(field.text):
	default:
		return nil, syntaxError(field, "expected field name")
	}
	if err := p.advance(); err != nil {
		return nil, err
	}

	opTok := p.tok
	op, err := p.parseComparison()
	if err != nil {
		return nil, err
	}

	var values []tree.Value
	if _, max := op.Arity(); max != 0 {
		values, err = p.parseValues()
		if err != nil {
			return nil, err
		}
	}
	if !op.AcceptsArity(len(values)) {
		return nil, syntaxError(opTok, "operator %s takes %s", op, arityText(op))
	}
	return tree.NewLeaf(field.text, op, values...), nil
}

func (p *parser) parseComparison() (tree.Comparison, error) {
	t := p.tok
	switch {
	case t.kind == tokOp:
		op, err := tree.ParseComparison(t.text)
		if err != nil {
			return "", syntaxError(t, "unknown operator")
		}
		return op, p.advance()
	case t.is("is"):
		if err := p.advance(); err != nil {
			return "", err
		}
		if !p.tok.is("null") {
			return "", syntaxError(p.tok, "expected NULL after IS")
		}
		return tree.IsNull, p.advance()
	case t.kind == tokIdent:
		op, err := tree.ParseComparison(t.text)
		if err != nil || op == tree.IsNull {
			return "", syntaxError(t, "unknown operator")
		}
		return op, p.advance()
	}
	return "", syntaxError(t, "expected operator")
}

func (p *parser) parseValues() ([]tree.Value, error) {
	if p.tok.kind != tokLBracket {
		v, err := p.parseScalar()
		if err != nil {
			return nil, err
		}
		return []tree.Value{v}, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	var values []tree.Value
	for {
		v, err := p.parseScalar()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		if p.tok.kind != tokComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(tokRBracket, "',' or ']'"); err != nil {
		return nil, err
	}
	return values, nil
}

func (p *parser) parseScalar() (tree.Value, error) {
	t := p.tok
	switch {
	case t.kind == tokString, t.kind == tokNumber, t.kind == tokTime:
		return t.val, p.advance()
	case t.is("true"):
		return tree.Bool(true), p.advance()
	case t.is("false"):
		return tree.Bool(false), p.advance()
	case t.kind == tokIdent && isGeometryType(t.text):
		return p.parseGeometry()
	}
	return tree.Value{}, syntaxError(t, "expected value")
}

// parseGeometry reads a WKT literal. The tokens are reassembled in the
// compact form produced by wkt.MarshalString before being decoded.
func (p *parser) parseGeometry() (tree.Value, error) {
	start := p.tok
	var b strings.Builder
	b.WriteString(strings.ToUpper(start.text))
	if err := p.advance(); err != nil {
		return tree.Value{}, err
	}
	if p.tok.is("EMPTY") {
		return tree.Value{}, syntaxError(p.tok, "empty geometries are not supported")
	}
	if p.tok.kind != tokLParen {
		return tree.Value{}, syntaxError(p.tok, "expected '(' after %s", strings.ToUpper(start.text))
	}

	depth := 0
	prevNumber := false
	for {
		t := p.tok
		switch t.kind {
		case tokLParen:
			depth++
			b.WriteByte('(')
			prevNumber = false
		case tokRParen:
			depth--
			b.WriteByte(')')
			prevNumber = false
		case tokComma:
			b.WriteByte(',')
			prevNumber = false
		case tokNumber:
			if prevNumber {
				b.WriteByte(' ')
			}
			b.WriteString(t.text)
			prevNumber = true
		case tokIdent:
			// nested type names inside GEOMETRYCOLLECTION
			if !isGeometryType(t.text) {
				return tree.Value{}, syntaxError(t, "unexpected token in geometry")
			}
			b.WriteString(strings.ToUpper(t.text))
			prevNumber = false
		default:
			return tree.Value{}, syntaxError(t, "unexpected token in geometry")
		}
		if err := p.advance(); err != nil {
			return tree.Value{}, err
		}
		if depth == 0 {
			break
		}
	}

	g, err := wkt.Unmarshal(b.String())
	if err != nil {
		return tree.Value{}, syntaxError(start, "invalid geometry: %v", err)
	}
	return tree.Geometry(g), nil
}

func isGeometryType(s string) bool {
	switch strings.ToUpper(s) {
	case "POINT", "LINESTRING", "POLYGON", "MULTIPOINT", "MULTILINESTRING", "MULTIPOLYGON", "GEOMETRYCOLLECTION":
		return true
	}
	return false
}

func arityText(op tree.Comparison) string {
	min, max := op.Arity()
	switch {
	case max == 0:
		return "no value"
	case max < 0:
		return "a value or a list of values"
	case min == max && min == 1:
		return "one value"
	default:
		return "a list of " + strconv.Itoa(min) + " values"
	}
}
