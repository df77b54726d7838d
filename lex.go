package formula

import (
	"strconv"
	"strings"
	"unicode"
)

// VarPrefix marks a variable reference in a formula, as in $x or
// $player.Health.
const VarPrefix = '$'

type lexToken struct {
	text string
	kind tokenKind
	pos  int
}

func (t lexToken) String() string {
	return t.kind.String() + ":" + t.text + "@" + strconv.Itoa(t.pos)
}

type tokenKind int8

const (
	tokenNone tokenKind = iota
	// tokenNum is a numeric literal.
	tokenNum
	// tokenVar is a prefixed variable reference.
	tokenVar
	// tokenIdent is a run of letters, which is usually an operator name.
	tokenIdent
	// tokenOp is a run of symbols, which is usually an operator.
	tokenOp
	// tokenOpen is (.
	tokenOpen
	// tokenClose is ).
	tokenClose
)

func (k tokenKind) String() string {
	switch k {
	case tokenNone:
		return "None"
	case tokenNum:
		return "Num"
	case tokenVar:
		return "Var"
	case tokenIdent:
		return "Ident"
	case tokenOp:
		return "Op"
	case tokenOpen:
		return "Open"
	case tokenClose:
		return "Close"
	default:
		return "tokenKind(" + strconv.Itoa(int(k)) + ")"
	}
}

type lexer struct {
	src []rune
	reg *Registry
	// at is the index of the next rune to scan.
	at   int
	toks []lexToken
}

// Tokenize splits a formula into its tokens using the built-in operators.
// Commas count as whitespace, so "min(1,2)", "min 1 2", and "min(1 2)" all
// give the same tokens. Tokenize never fails; text that is not an operator,
// bracket, or number is passed through as a candidate variable name.
func Tokenize(src string) []string {
	toks := lex(src, builtins)
	r := make([]string, len(toks))
	for i, tok := range toks {
		r[i] = tok.text
	}
	return r
}

// lex scans every token in src.
func lex(src string, reg *Registry) []lexToken {
	l := lexer{src: []rune(src), reg: reg}
	for l.at < len(l.src) {
		l.next()
	}
	return l.toks
}

func (l *lexer) peek(k int) rune {
	if l.at+k >= len(l.src) {
		return 0
	}
	return l.src[l.at+k]
}

func (l *lexer) emit(start int, kind tokenKind) {
	l.toks = append(l.toks, lexToken{text: string(l.src[start:l.at]), kind: kind, pos: start + 1})
}

// next scans one token, or skips one separator.
func (l *lexer) next() {
	start := l.at
	r := l.src[l.at]
	switch {
	case r == ',', unicode.IsSpace(r):
		l.at++
	case r == '(':
		l.at++
		l.emit(start, tokenOpen)
	case r == ')':
		l.at++
		l.emit(start, tokenClose)
	case r == VarPrefix:
		l.at++
		l.scanName()
		l.emit(start, tokenVar)
	case isDigit(r), r == '.' && isDigit(l.peek(1)):
		l.scanNum()
		l.emit(start, tokenNum)
	case unicode.IsLetter(r):
		l.scanName()
		l.emit(start, tokenIdent)
	default:
		l.scanSymbols()
	}
}

// scanName scans letters, digits, dots, and underscores. Digits and dots are
// included so that names like log10 and $player.Health stay whole.
func (l *lexer) scanName() {
	for l.at < len(l.src) {
		r := l.src[l.at]
		if r != '.' && r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return
		}
		l.at++
	}
}

// scanNum scans digits with at most one decimal point and an optional
// exponent. The exponent marker is consumed only when digits follow it, so
// that 2e is a number followed by the e operator.
func (l *lexer) scanNum() {
	dot := false
	for l.at < len(l.src) {
		r := l.src[l.at]
		switch {
		case isDigit(r):
			l.at++
		case r == '.' && !dot:
			dot = true
			l.at++
		case r == 'e' || r == 'E':
			k := 1
			if s := l.peek(1); s == '+' || s == '-' {
				k = 2
			}
			if !isDigit(l.peek(k)) {
				return
			}
			l.at += k
			for l.at < len(l.src) && isDigit(l.src[l.at]) {
				l.at++
			}
			return
		default:
			return
		}
	}
}

// scanSymbols scans a maximal run of symbol runes. If the whole run is not a
// registered operator, it is split greedily into the longest registered
// operators it starts with; a remainder that matches nothing stays whole.
func (l *lexer) scanSymbols() {
	start := l.at
	for l.at < len(l.src) && isSymbol(l.src[l.at]) {
		l.at++
	}
	if l.at == start {
		// Not a symbol, e.g. a lone dot. Take it alone.
		l.at++
		l.emit(start, tokenOp)
		return
	}
	end := l.at
	if _, ok := l.reg.Lookup(string(l.src[start:end])); ok {
		l.emit(start, tokenOp)
		return
	}
	l.at = start
	for l.at < end {
		k := l.longestOp(end)
		if k == 0 {
			s := l.at
			l.at = end
			l.emit(s, tokenOp)
			return
		}
		s := l.at
		l.at += k
		l.emit(s, tokenOp)
	}
}

// longestOp returns the length of the longest registered operator starting
// at l.at and ending no later than end, or 0 if there is none.
func (l *lexer) longestOp(end int) int {
	for k := end - l.at; k > 0; k-- {
		if _, ok := l.reg.Lookup(string(l.src[l.at : l.at+k])); ok {
			return k
		}
	}
	return 0
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

// isSymbol reports whether r can be part of a symbolic operator.
func isSymbol(r rune) bool {
	switch {
	case r == '(', r == ')', r == ',', r == '.', r == '_', r == VarPrefix:
		return false
	case unicode.IsSpace(r), unicode.IsLetter(r), unicode.IsDigit(r):
		return false
	}
	return true
}

// trimVarPrefix removes a leading variable prefix from name.
func trimVarPrefix(name string) string {
	return strings.TrimPrefix(name, string(VarPrefix))
}
