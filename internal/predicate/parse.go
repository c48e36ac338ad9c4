package predicate

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/pinpoint-db/pinpoint/internal/sym"
)

// ParseError reports a syntax error with its byte offset in the input.
type ParseError struct {
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("predicate syntax error at offset %d: %s", e.Offset, e.Message)
}

// Parse parses predicate text into a symbol tree.
func Parse(input string) (sym.Symbol, error) {
	p := &parser{lex: newLexer(input)}
	if err := p.next(); err != nil {
		return nil, err
	}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected %q after predicate", p.tok.text)
	}
	return expr, nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokInt
	tokOp     // = == != < <= > >=
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind   tokenKind
	text   string
	offset int
}

type lexer struct {
	input string
	pos   int
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

func (l *lexer) lex() (token, error) {
	for l.pos < len(l.input) && unicode.IsSpace(rune(l.input[l.pos])) {
		l.pos++
	}
	start := l.pos
	if l.pos >= len(l.input) {
		return token{kind: tokEOF, offset: start}, nil
	}

	c := l.input[l.pos]
	switch {
	case c == '(':
		l.pos++
		return token{kind: tokLParen, text: "(", offset: start}, nil
	case c == ')':
		l.pos++
		return token{kind: tokRParen, text: ")", offset: start}, nil
	case c == ',':
		l.pos++
		return token{kind: tokComma, text: ",", offset: start}, nil
	case c == '\'' || c == '"':
		return l.lexString(c)
	case c == '=' || c == '!' || c == '<' || c == '>':
		return l.lexOp()
	case c == '-' || c >= '0' && c <= '9':
		return l.lexNumber()
	case isIdentStart(c):
		for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
			l.pos++
		}
		return token{kind: tokIdent, text: l.input[start:l.pos], offset: start}, nil
	default:
		return token{}, &ParseError{Offset: start, Message: fmt.Sprintf("unexpected character %q", c)}
	}
}

func (l *lexer) lexString(quote byte) (token, error) {
	start := l.pos
	l.pos++ // opening quote
	var b strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == quote {
			l.pos++
			return token{kind: tokString, text: b.String(), offset: start}, nil
		}
		b.WriteByte(c)
		l.pos++
	}
	return token{}, &ParseError{Offset: start, Message: "unterminated string literal"}
}

func (l *lexer) lexOp() (token, error) {
	start := l.pos
	c := l.input[l.pos]
	l.pos++
	if l.pos < len(l.input) && l.input[l.pos] == '=' {
		l.pos++
		return token{kind: tokOp, text: l.input[start:l.pos], offset: start}, nil
	}
	if c == '!' {
		return token{}, &ParseError{Offset: start, Message: "expected != operator"}
	}
	return token{kind: tokOp, text: l.input[start:l.pos], offset: start}, nil
}

func (l *lexer) lexNumber() (token, error) {
	start := l.pos
	if l.input[l.pos] == '-' {
		l.pos++
	}
	for l.pos < len(l.input) && l.input[l.pos] >= '0' && l.input[l.pos] <= '9' {
		l.pos++
	}
	if l.pos < len(l.input) && (l.input[l.pos] == '.' || l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		return token{}, &ParseError{Offset: start, Message: "floats are not allowed in predicates"}
	}
	if l.pos == start || l.pos == start+1 && l.input[start] == '-' {
		return token{}, &ParseError{Offset: start, Message: "malformed number"}
	}
	return token{kind: tokInt, text: l.input[start:l.pos], offset: start}, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || c == '.' || c >= '0' && c <= '9'
}

type parser struct {
	lex *lexer
	tok token
}

func (p *parser) next() error {
	tok, err := p.lex.lex()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Offset: p.tok.offset, Message: fmt.Sprintf(format, args...)}
}

// keyword reports whether the current token is the given keyword,
// case-insensitively.
func (p *parser) keyword(kw string) bool {
	return p.tok.kind == tokIdent && strings.EqualFold(p.tok.text, kw)
}

func (p *parser) parseOr() (sym.Symbol, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	args := []sym.Symbol{left}
	for p.keyword("or") {
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		args = append(args, right)
	}
	if len(args) == 1 {
		return left, nil
	}
	return sym.Or(args...), nil
}

func (p *parser) parseAnd() (sym.Symbol, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	args := []sym.Symbol{left}
	for p.keyword("and") {
		if err := p.next(); err != nil {
			return nil, err
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		args = append(args, right)
	}
	if len(args) == 1 {
		return left, nil
	}
	return sym.And(args...), nil
}

func (p *parser) parseUnary() (sym.Symbol, error) {
	if p.keyword("not") {
		if err := p.next(); err != nil {
			return nil, err
		}
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return sym.Not(inner), nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (sym.Symbol, error) {
	switch {
	case p.tok.kind == tokLParen:
		if err := p.next(); err != nil {
			return nil, err
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, p.errorf("expected closing parenthesis")
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		return inner, nil

	case p.keyword("match"):
		return p.parseMatch()

	case p.tok.kind == tokIdent:
		return p.parseComparison()

	default:
		return nil, p.errorf("expected predicate, got %q", p.tok.text)
	}
}

// parseMatch parses MATCH(column, 'query').
func (p *parser) parseMatch() (sym.Symbol, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.tok.kind != tokLParen {
		return nil, p.errorf("expected ( after MATCH")
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.tok.kind != tokIdent {
		return nil, p.errorf("expected column in MATCH")
	}
	col := sym.ParseColumn(p.tok.text)
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.tok.kind != tokComma {
		return nil, p.errorf("expected , in MATCH")
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.tok.kind != tokString {
		return nil, p.errorf("expected quoted query in MATCH")
	}
	query := p.tok.text
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.tok.kind != tokRParen {
		return nil, p.errorf("expected ) after MATCH query")
	}
	if err := p.next(); err != nil {
		return nil, err
	}
	return sym.Match{Col: col, Query: query}, nil
}

// comparison operator names for non-equality operators. The extractor
// treats these as unanalyzable boolean constraints.
var opNames = map[string]string{
	"!=": "neq",
	"<":  "lt",
	"<=": "lte",
	">":  "gt",
	">=": "gte",
}

// parseComparison parses `column op literal` or `column IN (...)`.
func (p *parser) parseComparison() (sym.Symbol, error) {
	col := sym.ParseColumn(p.tok.text)
	if err := p.next(); err != nil {
		return nil, err
	}

	if p.keyword("in") {
		return p.parseIn(col)
	}

	if p.tok.kind != tokOp {
		return nil, p.errorf("expected comparison operator after %s", col.Fqn())
	}
	op := p.tok.text
	if err := p.next(); err != nil {
		return nil, err
	}

	val, typ, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}

	switch op {
	case "=", "==":
		return sym.Function{
			Name: sym.OpEq,
			Args: []sym.Symbol{
				sym.Reference{Col: col, Type: typ},
				sym.Literal{Val: val, Type: typ},
			},
			Type: sym.TypeBool,
		}, nil
	default:
		return sym.Function{
			Name: opNames[op],
			Args: []sym.Symbol{
				sym.Reference{Col: col, Type: typ},
				sym.Literal{Val: val, Type: typ},
			},
			Type: sym.TypeBool,
		}, nil
	}
}

// parseIn desugars `col IN (v1, v2, ...)` into a disjunction of equalities.
func (p *parser) parseIn(col sym.ColumnIdent) (sym.Symbol, error) {
	if err := p.next(); err != nil {
		return nil, err
	}
	if p.tok.kind != tokLParen {
		return nil, p.errorf("expected ( after IN")
	}
	if err := p.next(); err != nil {
		return nil, err
	}

	var args []sym.Symbol
	for {
		val, typ, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		args = append(args, sym.Function{
			Name: sym.OpEq,
			Args: []sym.Symbol{
				sym.Reference{Col: col, Type: typ},
				sym.Literal{Val: val, Type: typ},
			},
			Type: sym.TypeBool,
		})
		if p.tok.kind == tokComma {
			if err := p.next(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if p.tok.kind != tokRParen {
		return nil, p.errorf("expected ) to close IN list")
	}
	if err := p.next(); err != nil {
		return nil, err
	}

	if len(args) == 1 {
		return args[0], nil
	}
	return sym.Or(args...), nil
}

// parseLiteral consumes a literal token and returns its value and type.
func (p *parser) parseLiteral() (sym.Value, sym.Type, error) {
	switch {
	case p.tok.kind == tokString:
		v := sym.String(p.tok.text)
		if err := p.next(); err != nil {
			return nil, sym.TypeUndefined, err
		}
		return v, sym.TypeString, nil
	case p.tok.kind == tokInt:
		n, err := strconv.ParseInt(p.tok.text, 10, 64)
		if err != nil {
			return nil, sym.TypeUndefined, p.errorf("integer out of range: %s", p.tok.text)
		}
		if err := p.next(); err != nil {
			return nil, sym.TypeUndefined, err
		}
		return sym.Int(n), sym.TypeInt, nil
	case p.keyword("true"):
		if err := p.next(); err != nil {
			return nil, sym.TypeUndefined, err
		}
		return sym.Bool(true), sym.TypeBool, nil
	case p.keyword("false"):
		if err := p.next(); err != nil {
			return nil, sym.TypeUndefined, err
		}
		return sym.Bool(false), sym.TypeBool, nil
	case p.keyword("null"):
		if err := p.next(); err != nil {
			return nil, sym.TypeUndefined, err
		}
		return sym.Null{}, sym.TypeUndefined, nil
	default:
		return nil, sym.TypeUndefined, p.errorf("expected literal, got %q", p.tok.text)
	}
}
