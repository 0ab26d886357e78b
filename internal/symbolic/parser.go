// Package symbolic parses the textual algebraic expressions carried by
// candidates. Parsing is best effort: it checks that an expression is
// well-formed and reports its free symbols, without unit tracking or algebra.
//
// Bad input never panics and never surfaces as a Go error. Every parse
// returns a Result that is either Ok with a value or a parse failure with a
// human-readable reason.
package symbolic

import (
	"fmt"
	"strconv"
	"strings"
)

// Options tune parsing.
type Options struct {
	// Constants are names resolved to fixed values instead of free symbols.
	Constants map[string]float64
}

// PhysicsConstants returns the constant table used by the mathematical check:
// the Stefan-Boltzmann constant, standard gravity and the gas constant.
func PhysicsConstants() map[string]float64 {
	return map[string]float64{
		"σ": 5.67e-8,
		"g": 9.81,
		"R": 8.314,
	}
}

// Equation is a parsed equation. Right is nil when the text had no '='.
type Equation struct {
	Left  Expr
	Right Expr
}

// HasRight reports whether the equation had an '=' separator.
func (e Equation) HasRight() bool { return e.Right != nil }

// FreeSymbols returns the free symbols of both sides.
func (e Equation) FreeSymbols() []string {
	if e.Right == nil {
		return FreeSymbols(e.Left)
	}
	return FreeSymbols(&Binary{Op: "=", Left: e.Left, Right: e.Right})
}

// Parse parses a single expression.
func Parse(text string, opts Options) Result[Expr] {
	p, err := newParser(text, opts)
	if err != nil {
		return Fail[Expr](err.Error())
	}
	e, err := p.parseAll()
	if err != nil {
		return Fail[Expr](err.Error())
	}
	return Ok(e)
}

// ParseEquation splits text around '=' and parses each side.
// Text with more than one '=' is rejected.
func ParseEquation(text string, opts Options) Result[Equation] {
	parts := strings.Split(text, "=")
	switch len(parts) {
	case 1:
		left := Parse(parts[0], opts)
		if !left.OK() {
			return Fail[Equation](left.Reason())
		}
		return Ok(Equation{Left: left.Value()})
	case 2:
		left := Parse(parts[0], opts)
		if !left.OK() {
			return Fail[Equation]("left side: " + left.Reason())
		}
		right := Parse(parts[1], opts)
		if !right.OK() {
			return Fail[Equation]("right side: " + right.Reason())
		}
		return Ok(Equation{Left: left.Value(), Right: right.Value()})
	default:
		return Fail[Equation](fmt.Sprintf("expected at most one '=', found %d", len(parts)-1))
	}
}

// MaxDepth bounds expression nesting. Deeper input fails to parse instead of
// exhausting the goroutine stack.
const MaxDepth = 256

type parser struct {
	toks  []token
	pos   int
	depth int
	opts  Options
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > MaxDepth {
		return fmt.Errorf("expression nested too deeply (limit %d)", MaxDepth)
	}
	return nil
}

func (p *parser) leave() { p.depth-- }

func newParser(text string, opts Options) (*parser, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty expression")
	}
	toks, err := lex(text)
	if err != nil {
		return nil, err
	}
	return &parser{toks: toks, opts: opts}, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) acceptOp(ops ...string) (string, bool) {
	t := p.peek()
	if t.kind != tokOp {
		return "", false
	}
	for _, op := range ops {
		if t.text == op {
			p.pos++
			return op, true
		}
	}
	return "", false
}

func (p *parser) parseAll() (Expr, error) {
	e, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		if t.startsOperand() {
			return nil, fmt.Errorf("unexpected %s at offset %d: missing operator", t, t.pos)
		}
		return nil, fmt.Errorf("unexpected %s at offset %d", t, t.pos)
	}
	return e, nil
}

// Grammar, lowest precedence first:
//
//	comparison = additive { ("<" | ">") additive }
//	additive   = term { ("+" | "-") term }
//	term       = unary { ("*" | "/" | "%") unary }
//	unary      = ("+" | "-") unary | power
//	power      = primary [ "^" unary ]
//	primary    = number | name [ "(" args ")" ] | "(" comparison ")"
func (p *parser) parseComparison() (Expr, error) {
	return p.parseLeftAssoc(p.parseAdditive, "<", ">")
}

func (p *parser) parseAdditive() (Expr, error) {
	return p.parseLeftAssoc(p.parseTerm, "+", "-")
}

func (p *parser) parseTerm() (Expr, error) {
	return p.parseLeftAssoc(p.parseUnary, "*", "/", "%")
}

func (p *parser) parseLeftAssoc(operand func() (Expr, error), ops ...string) (Expr, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp(ops...)
		if !ok {
			return left, nil
		}
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseUnary() (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	if op, ok := p.acceptOp("+", "-"); ok {
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: rune(op[0]), X: x}, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Expr, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if _, ok := p.acceptOp("^"); !ok {
		return base, nil
	}
	exp, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &Binary{Op: "^", Left: base, Right: exp}, nil
}

func (p *parser) parsePrimary() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		v, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q at offset %d", t.text, t.pos)
		}
		return &Number{Value: v}, nil
	case tokIdent:
		if p.peek().kind == tokLParen {
			p.next()
			return p.parseCall(t)
		}
		if v, ok := p.opts.Constants[t.text]; ok {
			return &Constant{Name: t.text, Value: v}, nil
		}
		return &Symbol{Name: t.text}, nil
	case tokLParen:
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()
		inner, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return nil, fmt.Errorf("expected ')' at offset %d, found %s", closing.pos, closing)
		}
		return inner, nil
	default:
		return nil, fmt.Errorf("unexpected %s at offset %d", t, t.pos)
	}
}

func (p *parser) parseCall(name token) (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	call := &Call{Func: name.text}
	if p.peek().kind == tokRParen {
		p.next()
		return call, nil
	}
	for {
		arg, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		switch t := p.next(); t.kind {
		case tokComma:
		case tokRParen:
			return call, nil
		default:
			return nil, fmt.Errorf("expected ',' or ')' in call to %s at offset %d, found %s", name.text, t.pos, t)
		}
	}
}
