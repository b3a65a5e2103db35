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
	"fmt"
)

var (
	ErrEmpty        = errors.New("empty expression")
	ErrSyntax       = errors.New("syntax error")
	ErrUnknownIdent = errors.New("unknown identifier")
	ErrArity        = errors.New("wrong number of arguments")
)

// Error describes a compilation failure at a 1-based column of the body.
type Error struct {
	Expr string
	Col  int
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Col > 0 {
		return fmt.Sprintf("%s at column %d: %s", e.Err, e.Col, e.Msg)
	}
	if e.Msg == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }
