/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package expr turns user text such as "y = sin(x)/x" or "x = y^2" into a
// plot.Func. The text is parsed into a small expression tree, emitted as a Go
// function and compiled with the yaegi interpreter.
package expr

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	applog "funcplot/internal/log"
	"funcplot/internal/plot"
)

// prelude holds helpers for functions math does not provide.
const prelude = `package plotexpr

import "math"

func sgn(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return v
}

func sec(v float64) float64 { return 1 / math.Cos(v) }
func csc(v float64) float64 { return 1 / math.Sin(v) }
func cot(v float64) float64 { return 1 / math.Tan(v) }
`

// Func is a compiled expression. It implements plot.Func.
type Func struct {
	input Input
	gosrc string
	eval  func(float64) float64
}

var _ plot.Func = (*Func)(nil)

// Eval evaluates the expression at v. Results may be NaN or ±Inf.
func (f *Func) Eval(v float64) float64 { return f.eval(v) }

// Input returns the classified input the function was compiled from.
func (f *Func) Input() Input { return f.input }

// Mode is the plot mode of the input.
func (f *Func) Mode() plot.Mode { return f.input.Mode }

// GoSource returns the generated Go source, for diagnostics.
func (f *Func) GoSource() string { return f.gosrc }

func (f *Func) String() string { return f.input.Body }

// CompileInput classifies text with Parse and compiles its body.
func CompileInput(text string) (*Func, error) {
	in, err := Parse(text)
	if err != nil {
		return nil, err
	}
	f, err := Compile(in.Body, in.Var)
	if err != nil {
		return nil, err
	}
	in.Text = text
	f.input = in
	return f, nil
}

// Compile compiles body as a function of varName ("x" or "y"). Names are
// case-insensitive.
func Compile(body, varName string) (*Func, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, &Error{Expr: body, Err: ErrEmpty}
	}
	n, err := parse(body, varName)
	if err != nil {
		return nil, err
	}
	src := generate(n)

	start := time.Now()
	fn, err := interpret(src)
	if err != nil {
		applog.WithComponent("expr").Error("interpreter rejected generated code", slog.String("body", body), slog.Any("err", err))
		return nil, fmt.Errorf("compile %q: %w", body, err)
	}
	applog.WithComponent("expr").Debug("compiled",
		slog.String("body", body),
		slog.String("var", varName),
		slog.Duration("took", time.Since(start)))

	mode := plot.YofX
	if strings.EqualFold(varName, "y") {
		mode = plot.XofY
	}
	return &Func{
		input: Input{Text: body, Mode: mode, Var: strings.ToLower(varName), Body: body},
		gosrc: src,
		eval:  fn,
	}, nil
}

// generate renders the tree as a complete Go file declaring F.
func generate(n node) string {
	var body strings.Builder
	var em emitter
	n.emit(&body, &em)

	var b strings.Builder
	b.WriteString(prelude)
	b.WriteString("\nvar k = [...]float64{")
	for i, v := range em.lits {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(literal(v))
	}
	b.WriteString("}\n\nfunc F(v float64) float64 { return ")
	b.WriteString(body.String())
	b.WriteString(" }\n")
	return b.String()
}

// literal writes v so that it parses back to exactly v as a float64.
func literal(v float64) string {
	switch {
	case math.IsNaN(v):
		return "math.NaN()"
	case math.IsInf(v, 1):
		return "math.Inf(1)"
	case math.IsInf(v, -1):
		return "math.Inf(-1)"
	}
	return strconv.FormatFloat(v, 'e', -1, 64)
}

func interpret(src string) (func(float64) float64, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return nil, err
	}
	if _, err := i.Eval(src); err != nil {
		return nil, err
	}
	v, err := i.Eval("plotexpr.F")
	if err != nil {
		return nil, err
	}
	fn, ok := v.Interface().(func(float64) float64)
	if !ok {
		return nil, fmt.Errorf("unexpected type %s", v.Type())
	}
	return fn, nil
}
