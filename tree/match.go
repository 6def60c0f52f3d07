package tree

import (
	"strings"
	"unicode"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
	"golang.org/x/text/cases"
)

// Wildcards understood by the like operator. A backslash makes the next
// rune literal.
const (
	WildcardAny    = '*'
	WildcardSingle = '?'
	WildcardEscape = '\\'
)

// fold returns s in Unicode case-folded form. cases.Caser keeps state,
// so a new one is made per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

func containsFold(s, sub string) bool {
	return strings.Contains(fold(s), fold(sub))
}

// MatchWildcard reports whether s matches pattern, where * matches any run
// of runes and ? matches exactly one. Matching is case-sensitive.
func MatchWildcard(pattern, s string) bool {
	p, t := []rune(pattern), []rune(s)
	pi, ti := 0, 0
	star, mark := -1, 0
	for ti < len(t) {
		if pi < len(p) {
			switch {
			case p[pi] == WildcardAny:
				star, mark = pi, ti
				pi++
				continue
			case p[pi] == WildcardSingle:
				pi++
				ti++
				continue
			case p[pi] == WildcardEscape && pi+1 < len(p):
				if p[pi+1] == t[ti] {
					pi += 2
					ti++
					continue
				}
			case p[pi] == t[ti]:
				pi++
				ti++
				continue
			}
		}
		if star < 0 {
			return false
		}
		pi = star + 1
		mark++
		ti = mark
	}
	for pi < len(p) && p[pi] == WildcardAny {
		pi++
	}
	return pi == len(p)
}

func words(s string) []string {
	return strings.FieldsFunc(fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// near reports whether the words of phrase occur in text in order, with at
// most distance other words between consecutive ones.
func near(text, phrase string, distance int) bool {
	terms := words(phrase)
	if len(terms) == 0 {
		return false
	}
	toks := words(text)
	var from func(k, pos int) bool
	from = func(k, pos int) bool {
		if k == len(terms) {
			return true
		}
		end := min(len(toks), pos+distance+2)
		for j := pos + 1; j < end; j++ {
			if toks[j] == terms[k] && from(k+1, j) {
				return true
			}
		}
		return false
	}
	for i, tok := range toks {
		if tok == terms[0] && from(1, i) {
			return true
		}
	}
	return false
}

// intersects is exact when either side is a point and compares bounds
// otherwise.
func intersects(a, b orb.Geometry) bool {
	if !a.Bound().Intersects(b.Bound()) {
		return false
	}
	if p, ok := a.(orb.Point); ok {
		return containsPoint(b, p)
	}
	if p, ok := b.(orb.Point); ok {
		return containsPoint(a, p)
	}
	return true
}

func containsPoint(g orb.Geometry, p orb.Point) bool {
	switch g := g.(type) {
	case orb.Point:
		return g.Equal(p)
	case orb.Polygon:
		return planar.PolygonContains(g, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, p)
	case orb.Bound:
		return g.Contains(p)
	case orb.Ring:
		return planar.RingContains(g, p)
	}
	return g.Bound().Contains(p)
}

// withinDistance uses the geodesic distance in meters between the bound
// centers of a and b, or zero when they intersect.
func withinDistance(a, b orb.Geometry, meters float64) bool {
	if meters < 0 {
		return false
	}
	if intersects(a, b) {
		return true
	}
	return geo.Distance(a.Bound().Center(), b.Bound().Center()) <= meters
}
