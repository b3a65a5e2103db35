/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package undo keeps bounded undo/redo stacks of plain state values, such as
// the plot view before a pan or zoom.
package undo

import (
	"sync"
	"time"
)

// Entry is one recorded state and when it was captured.
type Entry[T any] struct {
	State T
	TS    time.Time
}

// Config controls depth and coalescing.
type Config struct {
	// MaxDepth limits the undo stack; the oldest entries are dropped (0 means 64).
	MaxDepth int
	// MinInterval merges pushes that arrive closer together than this into
	// the earlier entry, so a wheel burst undoes in one step.
	MinInterval time.Duration
}

// Stack is an undo/redo history. Push records the state to return to before
// a change; Undo and Redo take the current state so it can be restored.
// It is safe for concurrent use.
type Stack[T any] struct {
	cfg  Config
	mu   sync.Mutex
	undo []Entry[T]
	redo []Entry[T]
}

func New[T any](cfg Config) *Stack[T] {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 64
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 250 * time.Millisecond
	}
	return &Stack[T]{cfg: cfg}
}

// Push records s captured at ts and clears the redo stack. Within MinInterval
// of the previous push the earlier state is kept and only its time advances.
func (m *Stack[T]) Push(s T, ts time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.redo = nil
	if n := len(m.undo); n > 0 && ts.Sub(m.undo[n-1].TS) < m.cfg.MinInterval {
		m.undo[n-1].TS = ts
		return
	}
	m.undo = append(m.undo, Entry[T]{State: s, TS: ts})
	if extra := len(m.undo) - m.cfg.MaxDepth; extra > 0 {
		m.undo = append([]Entry[T]{}, m.undo[extra:]...)
	}
}

// Undo returns the last recorded state and moves current onto the redo stack.
func (m *Stack[T]) Undo(current T) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.undo) == 0 {
		var zero T
		return zero, false
	}
	e := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.redo = append(m.redo, Entry[T]{State: current, TS: e.TS})
	return e.State, true
}

// Redo reverses the last Undo and moves current back onto the undo stack.
func (m *Stack[T]) Redo(current T) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.redo) == 0 {
		var zero T
		return zero, false
	}
	e := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	// zero time so the next Push never merges into a restored entry
	m.undo = append(m.undo, Entry[T]{State: current})
	return e.State, true
}

// Clear drops both stacks.
func (m *Stack[T]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo, m.redo = nil, nil
}

// Len reports the depth of both stacks.
func (m *Stack[T]) Len() (undo, redo int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo), len(m.redo)
}
