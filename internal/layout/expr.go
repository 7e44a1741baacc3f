package layout

import (
	"fmt"
	"strconv"
)

// Eval evaluates a geometry expression over the terminal size. The
// grammar is integer arithmetic with + - * /, parentheses, unary minus,
// integer literals and the variables lines and cols.
func Eval(expr string, lines, cols int) (int, error) {
	p := &exprParser{src: expr, vars: map[string]int{"lines": lines, "cols": cols}}
	p.next()
	v, err := p.sum()
	if err != nil {
		return 0, err
	}
	if p.tok.kind != tokEOF {
		return 0, fmt.Errorf("unexpected %q at %d in %q", p.tok.text, p.tok.pos, expr)
	}
	return v, nil
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokNum
	tokIdent
	tokOp
)

type token struct {
	kind tokKind
	text string
	pos  int
}

type exprParser struct {
	src  string
	pos  int
	tok  token
	vars map[string]int
}

func (p *exprParser) next() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
	start := p.pos
	if p.pos >= len(p.src) {
		p.tok = token{kind: tokEOF, pos: start}
		return
	}
	c := p.src[p.pos]
	switch {
	case c >= '0' && c <= '9':
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
		p.tok = token{kind: tokNum, text: p.src[start:p.pos], pos: start}
	case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_':
		for p.pos < len(p.src) && isIdent(p.src[p.pos]) {
			p.pos++
		}
		p.tok = token{kind: tokIdent, text: p.src[start:p.pos], pos: start}
	default:
		p.pos++
		p.tok = token{kind: tokOp, text: string(c), pos: start}
	}
}

func isIdent(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

func (p *exprParser) sum() (int, error) {
	v, err := p.product()
	if err != nil {
		return 0, err
	}
	for p.tok.kind == tokOp && (p.tok.text == "+" || p.tok.text == "-") {
		op := p.tok.text
		p.next()
		r, err := p.product()
		if err != nil {
			return 0, err
		}
		if op == "+" {
			v += r
		} else {
			v -= r
		}
	}
	return v, nil
}

func (p *exprParser) product() (int, error) {
	v, err := p.unary()
	if err != nil {
		return 0, err
	}
	for p.tok.kind == tokOp && (p.tok.text == "*" || p.tok.text == "/") {
		op := p.tok.text
		p.next()
		r, err := p.unary()
		if err != nil {
			return 0, err
		}
		if op == "*" {
			v *= r
			continue
		}
		if r == 0 {
			return 0, fmt.Errorf("division by zero in %q", p.src)
		}
		v /= r
	}
	return v, nil
}

func (p *exprParser) unary() (int, error) {
	if p.tok.kind == tokOp && p.tok.text == "-" {
		p.next()
		v, err := p.unary()
		return -v, err
	}
	if p.tok.kind == tokOp && p.tok.text == "+" {
		p.next()
		return p.unary()
	}
	return p.primary()
}

func (p *exprParser) primary() (int, error) {
	t := p.tok
	switch t.kind {
	case tokNum:
		p.next()
		v, err := strconv.Atoi(t.text)
		if err != nil {
			return 0, fmt.Errorf("bad number %q: %w", t.text, err)
		}
		return v, nil
	case tokIdent:
		v, ok := p.vars[t.text]
		if !ok {
			return 0, fmt.Errorf("unknown variable %q in %q", t.text, p.src)
		}
		p.next()
		return v, nil
	case tokOp:
		if t.text == "(" {
			p.next()
			v, err := p.sum()
			if err != nil {
				return 0, err
			}
			if p.tok.kind != tokOp || p.tok.text != ")" {
				return 0, fmt.Errorf("missing ) in %q", p.src)
			}
			p.next()
			return v, nil
		}
	}
	if t.kind == tokEOF {
		return 0, fmt.Errorf("unexpected end of %q", p.src)
	}
	return 0, fmt.Errorf("unexpected %q at %d in %q", t.text, t.pos, p.src)
}
