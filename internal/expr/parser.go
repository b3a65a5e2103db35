/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package expr

import (
	"errors"
	"go/scanner"
	"go/token"
	"math"
	"strconv"
	"strings"
)

// item is one lexed token with its 1-based column.
type item struct {
	tok token.Token
	lit string
	col int
}

func lex(src string) ([]item, error) {
	fset := token.NewFileSet()
	file := fset.AddFile("expr", fset.Base(), len(src))
	var firstErr error
	var s scanner.Scanner
	s.Init(file, []byte(src), func(pos token.Position, msg string) {
		if firstErr == nil {
			firstErr = &Error{Expr: src, Col: pos.Column, Msg: msg, Err: ErrSyntax}
		}
	}, 0)
	var out []item
	for {
		pos, tok, lit := s.Scan()
		if firstErr != nil {
			return nil, firstErr
		}
		// automatic semicolon at end of input
		if tok == token.SEMICOLON && lit == "\n" {
			continue
		}
		col := file.Position(pos).Column
		if tok == token.EOF {
			out = append(out, item{tok: tok, col: col})
			return out, nil
		}
		if lit == "" {
			lit = tok.String()
		}
		out = append(out, item{tok: tok, lit: lit, col: col})
	}
}

// node is a parsed expression that writes itself as Go source.
type node interface {
	emit(b *strings.Builder, c *emitter)
}

type (
	numNode struct{ v float64 }
	varNode struct{}
	negNode struct{ x node }
	binNode struct {
		op   token.Token
		l, r node
	}
	callNode struct {
		fn   builtin
		args []node
	}
)

// builtin maps a function name to its Go rendition.
type builtin struct {
	gofn  string
	arity int
}

var builtins = map[string]builtin{
	"sin": {"math.Sin", 1}, "cos": {"math.Cos", 1}, "tan": {"math.Tan", 1},
	"asin": {"math.Asin", 1}, "acos": {"math.Acos", 1}, "atan": {"math.Atan", 1},
	"atan2": {"math.Atan2", 2},
	"sinh": {"math.Sinh", 1}, "cosh": {"math.Cosh", 1}, "tanh": {"math.Tanh", 1},
	"asinh": {"math.Asinh", 1}, "acosh": {"math.Acosh", 1}, "atanh": {"math.Atanh", 1},
	"exp": {"math.Exp", 1}, "log": {"math.Log", 1}, "ln": {"math.Log", 1},
	"log10": {"math.Log10", 1}, "log2": {"math.Log2", 1}, "log1p": {"math.Log1p", 1},
	"sqrt": {"math.Sqrt", 1}, "cbrt": {"math.Cbrt", 1}, "abs": {"math.Abs", 1},
	"floor": {"math.Floor", 1}, "ceil": {"math.Ceil", 1}, "round": {"math.Round", 1},
	"trunc": {"math.Trunc", 1},
	"min": {"math.Min", 2}, "max": {"math.Max", 2}, "pow": {"math.Pow", 2},
	"hypot": {"math.Hypot", 2}, "mod": {"math.Mod", 2},
	"sgn": {"sgn", 1}, "sec": {"sec", 1}, "csc": {"csc", 1}, "cot": {"cot", 1},
}

var constants = map[string]float64{
	"pi":      math.Pi,
	"e":       math.E,
	"inf":     math.Inf(1),
	"epsilon": 0x1p-52,
}

// emitter collects numeric literals into a table so that the generated code
// has no constant subexpressions; Go would reject 1/0 at compile time.
type emitter struct {
	lits []float64
}

func (n numNode) emit(b *strings.Builder, c *emitter) {
	b.WriteString("k[")
	b.WriteString(strconv.Itoa(len(c.lits)))
	b.WriteString("]")
	c.lits = append(c.lits, n.v)
}

func (varNode) emit(b *strings.Builder, _ *emitter) { b.WriteString("v") }

func (n negNode) emit(b *strings.Builder, c *emitter) {
	b.WriteString("(-")
	n.x.emit(b, c)
	b.WriteString(")")
}

func (n binNode) emit(b *strings.Builder, c *emitter) {
	switch n.op {
	case token.XOR:
		emitCall(b, c, "math.Pow", n.l, n.r)
	case token.REM:
		emitCall(b, c, "math.Mod", n.l, n.r)
	default:
		b.WriteString("(")
		n.l.emit(b, c)
		b.WriteString(" " + n.op.String() + " ")
		n.r.emit(b, c)
		b.WriteString(")")
	}
}

func (n callNode) emit(b *strings.Builder, c *emitter) { emitCall(b, c, n.fn.gofn, n.args...) }

func emitCall(b *strings.Builder, c *emitter, fn string, args ...node) {
	b.WriteString(fn)
	b.WriteString("(")
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		a.emit(b, c)
	}
	b.WriteString(")")
}

// parser is a precedence climbing parser over lexed items.
//
//	sum     = product {("+" | "-") product}
//	product = unary {("*" | "/" | "%") unary | implicit}
//	unary   = ("-" | "+") unary | power
//	power   = primary ["^" unary]
//	primary = number | name | name "(" args ")" | "(" sum ")"
//
// "^" is right-associative and binds tighter than unary minus, so -x^2 is
// -(x^2) and 2^-1 is 0.5. A number or ")" directly followed by a name or "("
// multiplies.
type parser struct {
	src   string
	items []item
	pos   int
	name  string
}

func (p *parser) peek() item { return p.items[p.pos] }

func (p *parser) next() item {
	it := p.items[p.pos]
	if it.tok != token.EOF {
		p.pos++
	}
	return it
}

func (p *parser) fail(it item, sentinel error, msg string) error {
	return &Error{Expr: p.src, Col: it.col, Msg: msg, Err: sentinel}
}

func (p *parser) unexpected(it item) error {
	if it.tok == token.EOF {
		return p.fail(it, ErrSyntax, "unexpected end of expression")
	}
	return p.fail(it, ErrSyntax, "unexpected "+strconv.Quote(it.lit))
}

func parse(src, varName string) (node, error) {
	items, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{src: src, items: items, name: strings.ToLower(varName)}
	if p.peek().tok == token.EOF {
		return nil, &Error{Expr: src, Err: ErrEmpty}
	}
	n, err := p.sum()
	if err != nil {
		return nil, err
	}
	if it := p.peek(); it.tok != token.EOF {
		return nil, p.unexpected(it)
	}
	return n, nil
}

func (p *parser) sum() (node, error) {
	l, err := p.product()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().tok
		if op != token.ADD && op != token.SUB {
			return l, nil
		}
		p.next()
		r, err := p.product()
		if err != nil {
			return nil, err
		}
		l = binNode{op: op, l: l, r: r}
	}
}

func (p *parser) product() (node, error) {
	l, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek().tok
		switch op {
		case token.MUL, token.QUO, token.REM:
			p.next()
		case token.IDENT, token.LPAREN:
			if !p.implicit(p.items[p.pos-1]) {
				return l, nil
			}
			op = token.MUL
		default:
			return l, nil
		}
		r, err := p.unary()
		if err != nil {
			return nil, err
		}
		l = binNode{op: op, l: l, r: r}
	}
}

// implicit reports whether prev may be followed by an implied "*".
func (p *parser) implicit(prev item) bool {
	switch prev.tok {
	case token.INT, token.FLOAT, token.RPAREN:
		return true
	case token.IDENT:
		name := strings.ToLower(prev.lit)
		_, isConst := constants[name]
		return name == p.name || isConst
	}
	return false
}

func (p *parser) unary() (node, error) {
	switch p.peek().tok {
	case token.SUB:
		p.next()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return negNode{x: x}, nil
	case token.ADD:
		p.next()
		return p.unary()
	}
	return p.power()
}

func (p *parser) power() (node, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if p.peek().tok != token.XOR {
		return base, nil
	}
	p.next()
	exp, err := p.unary()
	if err != nil {
		return nil, err
	}
	return binNode{op: token.XOR, l: base, r: exp}, nil
}

func (p *parser) primary() (node, error) {
	it := p.next()
	switch it.tok {
	case token.INT, token.FLOAT:
		v, err := strconv.ParseFloat(strings.ReplaceAll(it.lit, "_", ""), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, p.fail(it, ErrSyntax, "bad number "+strconv.Quote(it.lit))
		}
		return numNode{v: v}, nil
	case token.LPAREN:
		n, err := p.sum()
		if err != nil {
			return nil, err
		}
		if cl := p.next(); cl.tok != token.RPAREN {
			return nil, p.fail(cl, ErrSyntax, "missing )")
		}
		return n, nil
	case token.IDENT:
		return p.ident(it)
	}
	return nil, p.unexpected(it)
}

func (p *parser) ident(it item) (node, error) {
	name := strings.ToLower(it.lit)
	if p.peek().tok == token.LPAREN {
		fn, ok := builtins[name]
		if !ok {
			if name == p.name {
				// x(x+1) multiplies
				return varNode{}, nil
			}
			return nil, p.fail(it, ErrUnknownIdent, "unknown function "+strconv.Quote(it.lit))
		}
		p.next()
		args, err := p.args()
		if err != nil {
			return nil, err
		}
		if len(args) != fn.arity {
			return nil, p.fail(it, ErrArity, it.lit+" takes "+strconv.Itoa(fn.arity)+" argument(s), got "+strconv.Itoa(len(args)))
		}
		return callNode{fn: fn, args: args}, nil
	}
	if name == p.name {
		return varNode{}, nil
	}
	if v, ok := constants[name]; ok {
		return numNode{v: v}, nil
	}
	if _, ok := builtins[name]; ok {
		return nil, p.fail(it, ErrSyntax, it.lit+" needs arguments")
	}
	return nil, p.fail(it, ErrUnknownIdent, strconv.Quote(it.lit))
}

func (p *parser) args() ([]node, error) {
	var args []node
	if p.peek().tok == token.RPAREN {
		p.next()
		return args, nil
	}
	for {
		a, err := p.sum()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		it := p.next()
		switch it.tok {
		case token.COMMA:
			continue
		case token.RPAREN:
			return args, nil
		}
		return nil, p.fail(it, ErrSyntax, "expected , or )")
	}
}
