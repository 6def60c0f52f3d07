package sqlfilter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb/encoding/wkt"

	"github.com/hugr-lab/filtertree/tree"
)

// DuckDBEncoder encodes filter trees to DuckDB SQL syntax.
type DuckDBEncoder struct {
	opts *EncoderOptions
}

var _ Encoder = (*DuckDBEncoder)(nil)

// NewDuckDBEncoder creates a new DuckDB SQL encoder.
// If opts is nil, default options are used.
func NewDuckDBEncoder(opts *EncoderOptions) *DuckDBEncoder {
	if opts == nil {
		opts = &EncoderOptions{}
	}
	return &DuckDBEncoder{opts: opts}
}

// Encode converts a tree to a condition. Returns empty string if nothing
// can be encoded, which means no filtering.
//
// Leaves the dialect cannot express (near, and spatial operators without
// EncoderOptions.Spatial) are unsupported. The result never filters out a
// row the tree matches:
//   - AND children that are unsupported are skipped
//   - an OR with an unsupported child is skipped entirely
//   - a negated group or leaf with anything unsupported below it is
//     skipped entirely
func (e *DuckDBEncoder) Encode(n tree.Node) string {
	if g, ok := n.(*tree.Group); ok && g != nil && g.Len() == 0 && !g.Negated() && g.Operator() == tree.And {
		return ""
	}
	sql, _ := e.encode(n, false)
	return sql
}

// encode returns the condition for n, or false when n cannot be used. Under
// negation (strict) a node is usable only if all of it is encoded.
func (e *DuckDBEncoder) encode(n tree.Node, strict bool) (string, bool) {
	switch x := n.(type) {
	case *tree.Group:
		if x == nil {
			return "", false
		}
		return e.encodeGroup(x, strict)
	case *tree.Leaf:
		if x == nil {
			return "", false
		}
		sql := e.encodeLeaf(x)
		if sql == "" {
			return "", false
		}
		if x.Negated() {
			return not(sql, false), true
		}
		return sql, true
	}
	return "", false
}

func (e *DuckDBEncoder) encodeGroup(g *tree.Group, strict bool) (string, bool) {
	negated := g.Negated() || g.Operator().IsNegated()
	inner := strict || negated
	isOr := g.Operator().Base() == tree.Or

	var parts []string
	for i := 0; i < g.Len(); i++ {
		sql, ok := e.encode(g.Child(i), inner)
		if !ok {
			// Handle unsupported children:
			// - under negation the whole group is unusable
			// - For OR: if any child is unsupported, skip entire OR
			// - For AND: skip unsupported children, keep others
			if inner || isOr {
				return "", false
			}
			continue
		}
		parts = append(parts, sql)
	}

	var sql string
	wrapped := false
	switch {
	case g.Len() == 0 && isOr:
		sql = "FALSE"
	case g.Len() == 0:
		sql = "TRUE"
	case len(parts) == 0:
		return "", false
	case len(parts) == 1:
		sql = parts[0]
	default:
		op := " AND "
		if isOr {
			op = " OR "
		}
		sql = "(" + strings.Join(parts, op) + ")"
		wrapped = true
	}

	if g.Operator().IsNegated() {
		sql = not(sql, wrapped)
		wrapped = false
	}
	if g.Negated() {
		sql = not(sql, wrapped)
	}
	return sql, true
}

func not(sql string, wrapped bool) string {
	if wrapped {
		return "NOT " + sql
	}
	return "NOT (" + sql + ")"
}

// column returns the SQL for a field.
func (e *DuckDBEncoder) column(field string) string {
	// Check for expression mapping first (takes precedence)
	if e.opts.ColumnExpressions != nil {
		if expr, ok := e.opts.ColumnExpressions[field]; ok {
			return expr
		}
	}
	if e.opts.ColumnMapping != nil {
		if mapped, ok := e.opts.ColumnMapping[field]; ok {
			return quoteIdentifier(mapped)
		}
	}
	return quoteIdentifier(field)
}

// encodeLeaf encodes a leaf without its negation.
// Returns empty string if the leaf is unsupported.
func (e *DuckDBEncoder) encodeLeaf(l *tree.Leaf) string {
	op := l.Operator()
	if l.Field() == "" || !op.Valid() || !op.AcceptsArity(l.NumValues()) {
		return ""
	}
	col := e.column(l.Field())

	values := make([]string, l.NumValues())
	for i := range values {
		values[i] = e.formatValue(l.Value(i))
		if values[i] == "" {
			return ""
		}
	}

	switch op {
	case tree.Equals, tree.NotEquals, tree.Less, tree.LessOrEqual, tree.Greater, tree.GreaterOrEqual:
		return col + " " + string(op) + " " + values[0]
	case tree.Contains:
		if l.Value(0).Kind != tree.ValueString {
			return ""
		}
		return "contains(lower(" + col + "), lower(" + values[0] + "))"
	case tree.Like:
		s, ok := l.Value(0).AsString()
		if !ok {
			return ""
		}
		return col + " LIKE " + quoteLiteral(likePattern(s)) + ` ESCAPE '\'`
	case tree.Before, tree.After:
		if l.Value(0).Kind != tree.ValueTime {
			return ""
		}
		if op == tree.Before {
			return col + " < " + values[0]
		}
		return col + " > " + values[0]
	case tree.During:
		if l.Value(0).Kind != tree.ValueTime || l.Value(1).Kind != tree.ValueTime {
			return ""
		}
		return col + " BETWEEN " + values[0] + " AND " + values[1]
	case tree.Between:
		return col + " BETWEEN " + values[0] + " AND " + values[1]
	case tree.In:
		return col + " IN (" + strings.Join(values, ", ") + ")"
	case tree.IsNull:
		return col + " IS NULL"
	case tree.Intersects:
		if !e.opts.Spatial || l.Value(0).Kind != tree.ValueGeometry {
			return ""
		}
		return "ST_Intersects(" + col + ", " + values[0] + ")"
	case tree.DWithin:
		if !e.opts.Spatial || l.Value(0).Kind != tree.ValueGeometry || !l.Value(1).IsNumeric() {
			return ""
		}
		// Distance in meters between centroids, in lon/lat order.
		return "(ST_Intersects(" + col + ", " + values[0] + ") OR ST_Distance_Sphere(ST_Centroid(" +
			col + "), ST_Centroid(" + values[0] + ")) <= " + values[1] + ")"
	default:
		// near has no SQL equivalent
		return ""
	}
}

// formatValue formats a leaf operand as a SQL literal.
// Returns empty string for values that cannot be written.
func (e *DuckDBEncoder) formatValue(v tree.Value) string {
	switch v.Kind {
	case tree.ValueString:
		s, _ := v.AsString()
		return quoteLiteral(s)
	case tree.ValueInt:
		i, _ := v.AsInt()
		return strconv.FormatInt(i, 10)
	case tree.ValueFloat:
		f, _ := v.AsFloat()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return ""
		}
		return strconv.FormatFloat(f, 'g', -1, 64)
	case tree.ValueBool:
		b, _ := v.AsBool()
		if b {
			return "TRUE"
		}
		return "FALSE"
	case tree.ValueTime:
		t, _ := v.AsTime()
		return formatTimestamp(t)
	case tree.ValueGeometry:
		g, ok := v.AsGeometry()
		if !ok || !e.opts.Spatial {
			return ""
		}
		return "ST_GeomFromText(" + quoteLiteral(wkt.MarshalString(g)) + ")"
	default:
		return ""
	}
}

// formatTimestamp formats t in UTC with microsecond precision if needed.
func formatTimestamp(t time.Time) string {
	t = t.UTC()
	formatted := t.Format("2006-01-02 15:04:05")
	if micro := t.Nanosecond() / 1000; micro != 0 {
		formatted = fmt.Sprintf("%s.%06d", formatted, micro)
	}
	return "TIMESTAMP '" + formatted + "'"
}
