/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package expr

import (
	"strings"

	"funcplot/internal/plot"
)

// Input is user text split into plot mode, variable name and body.
type Input struct {
	Text string
	Mode plot.Mode
	Var  string
	Body string
}

// Parse classifies text. A leading "x=" or "x =" (any case) selects x=f(y)
// with variable y; anything else is y=f(x) with variable x. Everything up to
// and including the first '=' is dropped from the body.
func Parse(text string) (Input, error) {
	in := Input{Text: text, Mode: plot.YofX, Var: "x"}
	t := strings.TrimSpace(text)
	lower := strings.ToLower(t)
	if strings.HasPrefix(lower, "x=") || strings.HasPrefix(lower, "x =") {
		in.Mode = plot.XofY
		in.Var = "y"
	}
	if i := strings.IndexByte(t, '='); i >= 0 {
		t = t[i+1:]
	}
	in.Body = strings.TrimSpace(t)
	if in.Body == "" {
		return in, &Error{Expr: text, Err: ErrEmpty}
	}
	return in, nil
}
