// Package cql translates filter trees to and from a CQL-like query text.
//
// Text is the durable form of a tree: it is produced when an editing session
// is saved and parsed when one is loaded. Node ids are not part of the text,
// so Parse assigns fresh ids and a round trip yields an equivalent tree, not
// an identical one.
//
// # Grammar
//
//	query   := [ expr ]
//	expr    := and { OR and }
//	and     := unary { AND unary }
//	unary   := NOT unary | primary
//	primary := "(" expr ")" | leaf
//	leaf    := field operator [ value ]
//	value   := scalar | "[" scalar { "," scalar } "]"
//	scalar  := string | number | timestamp | TRUE | FALSE | wkt
//
// Keywords and word operators are case-insensitive. Strings use Go double
// quote syntax. Timestamps are bare RFC 3339 values such as
// 2024-05-01T10:00:00Z. Geometries are WKT, for example POINT(30 10).
// Field names that are not plain identifiers, or that collide with a
// keyword, are written in backquotes.
//
// # Negation
//
// The first NOT applied to a parenthesized AND or OR selects the NOT AND or
// NOT OR operator; a further NOT sets the group's negation flag. On a leaf,
// NOT sets the leaf's negation flag:
//
//	NOT (a = 1 OR b = 2)       // NOT OR group
//	NOT NOT (a = 1 OR b = 2)   // negated NOT OR group
//	NOT a = 1                  // negated leaf
//
// # Usage
//
//	root, err := cql.Parse(`title contains "foo" AND created after 2024-01-01T00:00:00Z`)
//	if err != nil {
//	    var se *cql.QuerySyntaxError
//	    if errors.As(err, &se) {
//	        // se.Pos, se.Token locate the problem
//	    }
//	}
//
//	text, err := cql.Encode(root)
package cql
