// Package sqlfilter renders filter trees as SQL conditions.
//
// The DuckDB encoder turns a tree into the body of a WHERE clause:
//
//	enc := sqlfilter.NewDuckDBEncoder(&sqlfilter.EncoderOptions{
//	    ColumnMapping: map[string]string{"title": "doc_title"},
//	})
//	where := enc.Encode(root) // (doc_title = 'x' AND n > 1)
//
// # Unsupported leaves
//
// Some leaves have no SQL form. The encoder drops them in a way that can
// only widen the result, so the condition can be used to prefilter rows
// and the tree evaluated exactly afterwards with tree.Evaluate. This holds
// for columns without NULLs; see below.
//
// # Null handling
//
// SQL comparisons against NULL are unknown, so a negated leaf on a NULL
// column excludes the row, while tree.Evaluate treats a missing value as
// not matching and its negation as matching.
package sqlfilter
