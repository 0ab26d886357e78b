package symbolic

import (
	"slices"
	"strconv"
	"strings"
)

// Expr is a parsed algebraic expression.
type Expr interface {
	// String renders the expression with explicit grouping.
	String() string

	walk(fn func(Expr))
}

// Number is a numeric literal.
type Number struct {
	Value float64
}

// Constant is a named value resolved from the constant table at parse time.
type Constant struct {
	Name  string
	Value float64
}

// Symbol is a free variable.
type Symbol struct {
	Name string
}

// Unary is a prefix sign applied to an operand.
type Unary struct {
	Op rune
	X  Expr
}

// Binary is an infix operation. Power is written '^'.
type Binary struct {
	Op          string
	Left, Right Expr
}

// Call is a function application such as sqrt(x).
type Call struct {
	Func string
	Args []Expr
}

func (n *Number) String() string   { return strconv.FormatFloat(n.Value, 'g', -1, 64) }
func (c *Constant) String() string { return c.Name }
func (s *Symbol) String() string   { return s.Name }
func (u *Unary) String() string    { return string(u.Op) + u.X.String() }

func (b *Binary) String() string {
	return "(" + b.Left.String() + " " + b.Op + " " + b.Right.String() + ")"
}

func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return c.Func + "(" + strings.Join(args, ", ") + ")"
}

func (n *Number) walk(fn func(Expr))   { fn(n) }
func (c *Constant) walk(fn func(Expr)) { fn(c) }
func (s *Symbol) walk(fn func(Expr))   { fn(s) }

func (u *Unary) walk(fn func(Expr)) {
	fn(u)
	u.X.walk(fn)
}

func (b *Binary) walk(fn func(Expr)) {
	fn(b)
	b.Left.walk(fn)
	b.Right.walk(fn)
}

func (c *Call) walk(fn func(Expr)) {
	fn(c)
	for _, a := range c.Args {
		a.walk(fn)
	}
}

// FreeSymbols returns the sorted, de-duplicated names of the free variables in e.
// Resolved constants and function names are not free symbols.
func FreeSymbols(e Expr) []string {
	if e == nil {
		return nil
	}
	seen := make(map[string]struct{})
	e.walk(func(n Expr) {
		if s, ok := n.(*Symbol); ok {
			seen[s.Name] = struct{}{}
		}
	})
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}
