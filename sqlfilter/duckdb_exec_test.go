package sqlfilter

import (
	"database/sql"
	"slices"
	"testing"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/hugr-lab/filtertree/cql"
	"github.com/hugr-lab/filtertree/tree"
)

type row struct {
	id      int
	title   string
	n       int64
	score   float64
	created time.Time
	flag    bool
}

func day(d, h int) time.Time {
	return time.Date(2024, 1, d, h, 0, 0, 0, time.UTC)
}

var rows = []row{
	{1, "Quick Fox", 1, 0.5, day(1, 0), true},
	{2, "lazy dog", 2, 1.5, day(2, 0), false},
	{3, "O'Brien_x", 3, 2.5, day(3, 12), true},
	{4, "fox%trot", 4, 3.5, day(4, 0), false},
}

func (r row) record() tree.Attributes {
	return tree.Attributes{
		"title":   {tree.String(r.title)},
		"n":       {tree.Int(r.n)},
		"score":   {tree.Float(r.score)},
		"created": {tree.Time(r.created)},
		"flag":    {tree.Bool(r.flag)},
	}
}

// openItems opens an in-memory DuckDB holding rows.
func openItems(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("duckdb", "")
	if err != nil {
		t.Fatalf("DuckDB not available: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE items (
		id INTEGER, title VARCHAR, n BIGINT, score DOUBLE, created TIMESTAMP, flag BOOLEAN
	)`)
	if err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	for _, r := range rows {
		_, err := db.Exec("INSERT INTO items VALUES (?, "+
			quoteLiteral(r.title)+", ?, ?, "+formatTimestamp(r.created)+", ?)",
			r.id, r.n, r.score, r.flag)
		if err != nil {
			t.Fatalf("Failed to insert row %d: %v", r.id, err)
		}
	}
	return db
}

func queryIDs(t *testing.T, db *sql.DB, where string) []int {
	t.Helper()

	query := "SELECT id FROM items"
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY id"

	res, err := db.Query(query)
	if err != nil {
		t.Fatalf("Query %q failed: %v", query, err)
	}
	defer res.Close()

	var ids []int
	for res.Next() {
		var id int
		if err := res.Scan(&id); err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		ids = append(ids, id)
	}
	if err := res.Err(); err != nil {
		t.Fatalf("Rows failed: %v", err)
	}
	return ids
}

func evaluateIDs(root *tree.Group) []int {
	var ids []int
	for _, r := range rows {
		if tree.Evaluate(root, r.record()) {
			ids = append(ids, r.id)
		}
	}
	return ids
}

func TestDuckDBMatchesEvaluate(t *testing.T) {
	db := openItems(t)
	enc := NewDuckDBEncoder(nil)

	tests := []struct {
		query    string
		expected []int
	}{
		{"", []int{1, 2, 3, 4}},
		{`title contains "fox"`, []int{1, 4}},
		{`title like "*fox*"`, []int{4}},
		{`title like "O'Brien\\_x"`, []int{3}},
		{`title like "fox\\%*"`, []int{4}},
		{`title like "?azy*"`, []int{2}},
		{"n between [2, 3] AND NOT flag = true", []int{2}},
		{"NOT (n = 1 OR score > 3)", []int{2, 3}},
		{"created during [2024-01-02T00:00:00Z, 2024-01-03T12:00:00Z]", []int{2, 3}},
		{"created before 2024-01-02T00:00:00Z OR n in [3, 4]", []int{1, 3, 4}},
		{"NOT NOT (n < 2 AND flag = true)", []int{1}},
		{`title <> "lazy dog" AND score >= 2.5`, []int{3, 4}},
		{"n is null", nil},
		{"NOT n is null", []int{1, 2, 3, 4}},
		{"created after 2024-01-03 AND (flag = false OR n <= 3)", []int{3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			root := cql.MustParse(tt.query)
			got := queryIDs(t, db, enc.Encode(root))
			want := evaluateIDs(root)
			if !slices.Equal(got, want) {
				t.Errorf("DuckDB returned %v, Evaluate returned %v", got, want)
			}
			if !slices.Equal(want, tt.expected) {
				t.Errorf("expected %v, Evaluate returned %v", tt.expected, want)
			}
		})
	}
}

func TestDuckDBUnsupportedWidens(t *testing.T) {
	db := openItems(t)
	enc := NewDuckDBEncoder(nil)

	queries := []string{
		`title near ["quick fox", 1] OR n = 2`,
		`title near ["quick fox", 1] AND n = 2`,
		`NOT (title near ["quick", 0] AND n = 1) AND flag = true`,
		`NOT title near ["lazy dog", 0] AND score < 2`,
	}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			root := cql.MustParse(q)
			got := queryIDs(t, db, enc.Encode(root))
			for _, id := range evaluateIDs(root) {
				if !slices.Contains(got, id) {
					t.Errorf("row %d matches the tree but not the SQL (%v)", id, got)
				}
			}
		})
	}
}
