package expr

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/paveg/clump/internal/errors"
)

const parseOp = "Parse"

// Parse reads a filter or value expression such as
//
//	age >= 30 && department == "Sales"
//	meta.score * 2 > 10 || !has(meta.score)
//
// Identifiers are keys, dots walk nested records, and backquoted names
// allow keys that are not identifiers. Literals are numbers, double-quoted
// strings, true, false and null. The keywords and, or and not are accepted
// for &&, || and !.
func Parse(src string) (Expr, error) {
	p := &parser{}
	p.s.Init(strings.NewReader(src))
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanFloats | scanner.ScanStrings | scanner.ScanRawStrings
	p.s.Error = func(_ *scanner.Scanner, msg string) { p.fail(msg) }
	p.next()

	e := p.parseOr()
	if p.err == nil && p.tok != scanner.EOF {
		p.fail(fmt.Sprintf("unexpected %q", p.text))
	}
	if p.err != nil {
		return nil, errors.NewArgumentError(parseOp, fmt.Sprintf("%s in %q", p.err.Error(), src))
	}
	return e, nil
}

// MustParse is Parse for expressions known to be valid.
func MustParse(src string) Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

type parser struct {
	s    scanner.Scanner
	tok  rune
	text string
	pos  scanner.Position
	err  error
}

func (p *parser) fail(msg string) {
	if p.err == nil {
		p.err = fmt.Errorf("%s at column %d", msg, p.pos.Column)
	}
}

// next advances one token, folding two-character operators into one.
func (p *parser) next() {
	p.tok = p.s.Scan()
	p.text = p.s.TokenText()
	p.pos = p.s.Position
	switch p.tok {
	case '=', '!', '<', '>':
		if p.s.Peek() == '=' {
			p.s.Next()
			p.text += "="
		}
	case '&', '|':
		if p.s.Peek() == p.tok {
			p.s.Next()
			p.text += string(p.tok)
		}
	}
}

func (p *parser) is(texts ...string) bool {
	for _, t := range texts {
		if p.text == t && p.tok != scanner.String && p.tok != scanner.RawString {
			return true
		}
	}
	return false
}

func (p *parser) expect(text string) {
	if !p.is(text) {
		p.fail(fmt.Sprintf("expected %q, got %q", text, p.text))
		return
	}
	p.next()
}

func (p *parser) parseOr() Expr {
	left := p.parseAnd()
	for p.err == nil && p.is("||", "or") {
		p.next()
		left = &BinaryExpr{left: left, op: OpOr, right: p.parseAnd()}
	}
	return left
}

func (p *parser) parseAnd() Expr {
	left := p.parseNot()
	for p.err == nil && p.is("&&", "and") {
		p.next()
		left = &BinaryExpr{left: left, op: OpAnd, right: p.parseNot()}
	}
	return left
}

func (p *parser) parseNot() Expr {
	if p.is("!", "not") {
		p.next()
		return Not(p.parseNot())
	}
	return p.parseComparison()
}

var comparisonOps = map[string]BinaryOp{
	"==": OpEq, "!=": OpNe, "<": OpLt, "<=": OpLe, ">": OpGt, ">=": OpGe,
}

func (p *parser) parseComparison() Expr {
	left := p.parseTerm()
	if op, ok := comparisonOps[p.text]; ok && p.err == nil {
		p.next()
		return &BinaryExpr{left: left, op: op, right: p.parseTerm()}
	}
	if p.is("=") {
		p.fail("use == for equality")
	}
	return left
}

func (p *parser) parseTerm() Expr {
	left := p.parseFactor()
	for p.err == nil && p.is("+", "-") {
		op := OpAdd
		if p.text == "-" {
			op = OpSub
		}
		p.next()
		left = &BinaryExpr{left: left, op: op, right: p.parseFactor()}
	}
	return left
}

func (p *parser) parseFactor() Expr {
	left := p.parseAtom()
	for p.err == nil && p.is("*", "/") {
		op := OpMul
		if p.text == "/" {
			op = OpDiv
		}
		p.next()
		left = &BinaryExpr{left: left, op: op, right: p.parseAtom()}
	}
	return left
}

func (p *parser) parseAtom() Expr {
	if p.err != nil {
		return nil
	}

	switch p.tok {
	case scanner.Int:
		v, err := strconv.ParseInt(p.text, 0, 64)
		if err != nil {
			p.fail(err.Error())
			return nil
		}
		p.next()
		return Lit(v)
	case scanner.Float:
		v, err := strconv.ParseFloat(p.text, 64)
		if err != nil {
			p.fail(err.Error())
			return nil
		}
		p.next()
		return Lit(v)
	case scanner.String:
		v, err := strconv.Unquote(p.text)
		if err != nil {
			p.fail(err.Error())
			return nil
		}
		p.next()
		return Lit(v)
	case scanner.RawString, scanner.Ident:
		return p.parseName()
	case scanner.EOF:
		p.fail("unexpected end of expression")
		return nil
	}

	switch {
	case p.is("("):
		p.next()
		e := p.parseOr()
		p.expect(")")
		return e
	case p.is("-"):
		p.next()
		return Neg(p.parseAtom())
	}
	p.fail(fmt.Sprintf("unexpected %q", p.text))
	return nil
}

var functions = map[string]bool{"has": true, "lower": true, "upper": true, "len": true, "abs": true}

// parseName reads a keyword literal, a function call or a column path.
func (p *parser) parseName() Expr {
	if p.tok == scanner.Ident {
		switch p.text {
		case "true", "false":
			v := p.text == "true"
			p.next()
			return Lit(v)
		case "null":
			p.next()
			return Lit(nil)
		}
	}

	name := p.name()
	p.next()

	if p.is("(") {
		if !functions[name] {
			p.fail(fmt.Sprintf("unknown function %q", name))
			return nil
		}
		p.next()
		arg := p.parseOr()
		p.expect(")")
		return &FunctionExpr{name: name, args: []Expr{arg}}
	}

	path := []string{name}
	for p.err == nil && p.is(".") {
		p.next()
		if p.tok != scanner.Ident && p.tok != scanner.RawString {
			p.fail(fmt.Sprintf("expected key after '.', got %q", p.text))
			return nil
		}
		path = append(path, p.name())
		p.next()
	}
	return &ColumnExpr{path: path}
}

func (p *parser) name() string {
	if p.tok == scanner.RawString {
		return strings.Trim(p.text, "`")
	}
	return p.text
}
