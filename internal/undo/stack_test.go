/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"testing"
	"time"
)

func TestUndoRedoBasic(t *testing.T) {
	m := New[string](Config{MaxDepth: 10, MinInterval: 10 * time.Millisecond})
	t0 := time.Now()
	m.Push("a", t0)
	m.Push("b", t0.Add(20*time.Millisecond))
	if u, r := m.Len(); u != 2 || r != 0 {
		t.Fatalf("expected 2 undo and 0 redo entries, got %d/%d", u, r)
	}
	s, ok := m.Undo("c")
	if !ok || s != "b" {
		t.Fatalf("undo expected 'b', got ok=%v state=%q", ok, s)
	}
	s, ok = m.Redo("b")
	if !ok || s != "c" {
		t.Fatalf("redo expected 'c', got ok=%v state=%q", ok, s)
	}
	if u, r := m.Len(); u != 2 || r != 0 {
		t.Fatalf("redo should restore the undo depth, got %d/%d", u, r)
	}
}

func TestEmpty(t *testing.T) {
	m := New[int](Config{})
	if _, ok := m.Undo(1); ok {
		t.Fatalf("undo on empty stack must fail")
	}
	if _, ok := m.Redo(1); ok {
		t.Fatalf("redo on empty stack must fail")
	}
}

func TestCoalesceKeepsEarliest(t *testing.T) {
	m := New[int](Config{MinInterval: 50 * time.Millisecond})
	t0 := time.Now()
	for i := range 5 {
		m.Push(i, t0.Add(time.Duration(i)*20*time.Millisecond))
	}
	if u, _ := m.Len(); u != 1 {
		t.Fatalf("expected a burst to coalesce into 1 entry, got %d", u)
	}
	s, ok := m.Undo(99)
	if !ok || s != 0 {
		t.Fatalf("expected the state before the burst, got ok=%v state=%d", ok, s)
	}
}

func TestPushClearsRedo(t *testing.T) {
	m := New[int](Config{MinInterval: time.Millisecond})
	t0 := time.Now()
	m.Push(1, t0)
	m.Undo(2)
	m.Push(3, t0.Add(time.Second))
	if _, r := m.Len(); r != 0 {
		t.Fatalf("push must clear redo, got %d", r)
	}
}

func TestMaxDepth(t *testing.T) {
	m := New[int](Config{MaxDepth: 2, MinInterval: time.Millisecond})
	t0 := time.Now()
	for i := range 10 {
		m.Push(i, t0.Add(time.Duration(i)*time.Second))
	}
	if u, _ := m.Len(); u != 2 {
		t.Fatalf("expected depth cap 2, got %d", u)
	}
	if s, _ := m.Undo(10); s != 9 {
		t.Fatalf("expected newest entry 9, got %d", s)
	}
	if s, _ := m.Undo(9); s != 8 {
		t.Fatalf("expected 8, got %d", s)
	}
	m.Clear()
	if u, r := m.Len(); u != 0 || r != 0 {
		t.Fatalf("clear left %d/%d", u, r)
	}
}
