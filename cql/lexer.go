package cql

import (
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/hugr-lab/filtertree/tree"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokQuotedIdent
	tokString
	tokNumber
	tokTime
	tokOp
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
)

type token struct {
	kind tokenKind
	text string // source text; the unquoted name for tokQuotedIdent
	pos  int
	val  tree.Value
}

// is reports whether t is the identifier kw, ignoring case.
func (t token) is(kw string) bool {
	return t.kind == tokIdent && strings.EqualFold(t.text, kw)
}

type lexer struct {
	src string
	pos int
}

func (l *lexer) peekByte(off int) byte {
	if l.pos+off < len(l.src) {
		return l.src[l.pos+off]
	}
	return 0
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !unicode.IsSpace(r) {
			break
		}
		l.pos += size
	}
	start := l.pos
	if start >= len(l.src) {
		return token{kind: tokEOF, pos: start}, nil
	}

	single := func(kind tokenKind) (token, error) {
		l.pos++
		return token{kind: kind, text: l.src[start:l.pos], pos: start}, nil
	}

	c := l.src[start]
	switch {
	case c == '(':
		return single(tokLParen)
	case c == ')':
		return single(tokRParen)
	case c == '[':
		return single(tokLBracket)
	case c == ']':
		return single(tokRBracket)
	case c == ',':
		return single(tokComma)
	case c == '=':
		return single(tokOp)
	case c == '<':
		l.pos++
		if b := l.peekByte(0); b == '=' || b == '>' {
			l.pos++
		}
		return token{kind: tokOp, text: l.src[start:l.pos], pos: start}, nil
	case c == '>':
		l.pos++
		if l.peekByte(0) == '=' {
			l.pos++
		}
		return token{kind: tokOp, text: l.src[start:l.pos], pos: start}, nil
	case c == '!':
		if l.peekByte(1) != '=' {
			return token{}, &QuerySyntaxError{Pos: start, Token: "!", Msg: "unexpected character"}
		}
		l.pos += 2
		return token{kind: tokOp, text: "!=", pos: start}, nil
	case c == '"':
		return l.lexString()
	case c == '`':
		return l.lexQuotedIdent()
	case isDigit(c) || ((c == '-' || c == '+' || c == '.') && (isDigit(l.peekByte(1)) || l.peekByte(1) == '.')):
		if l.looksLikeTime() {
			return l.lexTime()
		}
		return l.lexNumber()
	}

	r, _ := utf8.DecodeRuneInString(l.src[start:])
	if isIdentStart(r) {
		for l.pos < len(l.src) {
			r, size := utf8.DecodeRuneInString(l.src[l.pos:])
			if !isIdentPart(r) {
				break
			}
			l.pos += size
		}
		return token{kind: tokIdent, text: l.src[start:l.pos], pos: start}, nil
	}
	return token{}, &QuerySyntaxError{Pos: start, Token: string(r), Msg: "unexpected character"}
}

func (l *lexer) lexString() (token, error) {
	start := l.pos
	i := start + 1
	for i < len(l.src) {
		switch l.src[i] {
		case '\\':
			i += 2
			continue
		case '"':
			raw := l.src[start : i+1]
			s, err := strconv.Unquote(raw)
			if err != nil {
				return token{}, &QuerySyntaxError{Pos: start, Token: raw, Msg: "invalid string literal"}
			}
			l.pos = i + 1
			return token{kind: tokString, text: raw, pos: start, val: tree.String(s)}, nil
		case '\n':
			return token{}, &QuerySyntaxError{Pos: start, Token: l.src[start:i], Msg: "newline in string literal"}
		}
		i++
	}
	return token{}, &QuerySyntaxError{Pos: start, Token: l.src[start:], Msg: "unterminated string literal"}
}

// lexQuotedIdent reads a backquoted field name. A doubled backquote stands
// for one backquote.
func (l *lexer) lexQuotedIdent() (token, error) {
	start := l.pos
	var b strings.Builder
	i := start + 1
	for i < len(l.src) {
		if l.src[i] == '`' {
			if i+1 < len(l.src) && l.src[i+1] == '`' {
				b.WriteByte('`')
				i += 2
				continue
			}
			l.pos = i + 1
			if b.Len() == 0 {
				return token{}, &QuerySyntaxError{Pos: start, Token: "``", Msg: "empty field name"}
			}
			return token{kind: tokQuotedIdent, text: b.String(), pos: start}, nil
		}
		b.WriteByte(l.src[i])
		i++
	}
	return token{}, &QuerySyntaxError{Pos: start, Token: l.src[start:], Msg: "unterminated field name"}
}

// looksLikeTime reports whether the input at pos starts with four digits
// and a dash, the prefix of an RFC 3339 timestamp.
func (l *lexer) looksLikeTime() bool {
	for i := 0; i < 4; i++ {
		if !isDigit(l.peekByte(i)) {
			return false
		}
	}
	return l.peekByte(4) == '-'
}

func (l *lexer) lexTime() (token, error) {
	start := l.pos
	for l.pos < len(l.src) && strings.IndexByte("0123456789-:.+TZtz", l.src[l.pos]) >= 0 {
		l.pos++
	}
	text := l.src[start:l.pos]
	t, err := time.Parse(time.RFC3339Nano, strings.ToUpper(text))
	if err != nil {
		t, err = time.Parse(time.DateOnly, text)
	}
	if err != nil {
		return token{}, &QuerySyntaxError{Pos: start, Token: text, Msg: "invalid timestamp"}
	}
	return token{kind: tokTime, text: text, pos: start, val: tree.Time(t)}, nil
}

func (l *lexer) lexNumber() (token, error) {
	start := l.pos
	isFloat := false
	if c := l.peekByte(0); c == '-' || c == '+' {
		l.pos++
	}
	l.skipDigits()
	if l.peekByte(0) == '.' {
		isFloat = true
		l.pos++
		l.skipDigits()
	}
	if c := l.peekByte(0); c == 'e' || c == 'E' {
		isFloat = true
		l.pos++
		if c := l.peekByte(0); c == '-' || c == '+' {
			l.pos++
		}
		l.skipDigits()
	}
	text := l.src[start:l.pos]
	if r, _ := utf8.DecodeRuneInString(l.src[l.pos:]); l.pos < len(l.src) && (isIdentPart(r) || r == '.') {
		return token{}, &QuerySyntaxError{Pos: start, Token: text + string(r), Msg: "malformed number"}
	}

	if !isFloat {
		i, err := strconv.ParseInt(text, 10, 64)
		if err == nil {
			return token{kind: tokNumber, text: text, pos: start, val: tree.Int(i)}, nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return token{}, &QuerySyntaxError{Pos: start, Token: text, Msg: "malformed number"}
	}
	return token{kind: tokNumber, text: text, pos: start, val: tree.Float(f)}, nil
}

func (l *lexer) skipDigits() {
	for isDigit(l.peekByte(0)) {
		l.pos++
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r) || r == '.' || r == ':' || r == '-'
}
