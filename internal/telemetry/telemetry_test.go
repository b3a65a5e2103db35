/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type sink struct {
	mu      sync.Mutex
	events  []Event
	crashes [][]byte
}

func newSink(t *testing.T) (*sink, *httptest.Server) {
	t.Helper()
	s := &sink{}
	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		var ev Event
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		s.events = append(s.events, ev)
		s.mu.Unlock()
	})
	mux.HandleFunc("/crash", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.crashes = append(s.crashes, b)
		s.mu.Unlock()
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return s, srv
}

func TestClient_TrackAndUploadCrash(t *testing.T) {
	s, srv := newSink(t)
	c := New(Config{OptIn: true, EventsURL: srv.URL + "/events", CrashURL: srv.URL + "/crash", Timeout: 2 * time.Second})
	defer c.Close()
	if !c.Enabled() {
		t.Fatalf("expected client to be enabled")
	}

	c.Track("render", map[string]string{"format": "svg", "expr": "x*x", "mode": ""})
	c.Flush(context.Background())

	s.mu.Lock()
	if len(s.events) != 1 {
		s.mu.Unlock()
		t.Fatalf("expected 1 event, got %d", len(s.events))
	}
	ev := s.events[0]
	s.mu.Unlock()
	if ev.Name != "render" || ev.TS == "" || ev.Version == "" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if len(ev.Props) != 1 || ev.Props["format"] != "svg" {
		t.Fatalf("only allowed non-empty props may be sent, got %v", ev.Props)
	}

	if err := c.UploadCrash(context.Background(), []byte("STACKTRACE")); err != nil {
		t.Fatalf("crash upload: %v", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.crashes) != 1 || string(s.crashes[0]) != "STACKTRACE" {
		t.Fatalf("unexpected crash uploads: %q", s.crashes)
	}
}

func TestClient_Disabled(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits.Add(1) }))
	defer srv.Close()

	c := New(Config{OptIn: false, EventsURL: srv.URL, CrashURL: srv.URL, Timeout: time.Second})
	defer c.Close()
	if c.Enabled() {
		t.Fatalf("expected disabled client")
	}
	c.Track("ignored", nil)
	if err := c.UploadCrash(context.Background(), []byte("x")); err != ErrDisabled {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}

	c2 := New(Config{OptIn: true, EventsURL: srv.URL, Timeout: time.Second})
	defer c2.Close()
	c2.Track("", nil)
	c2.Flush(nil)
	if hits.Load() != 0 {
		t.Fatalf("expected no requests, got %d", hits.Load())
	}

	var nilClient *Client
	nilClient.Track("x", nil)
	nilClient.Flush(context.Background())
}

func TestClient_SendErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	c := New(Config{OptIn: true, EventsURL: "http://127.0.0.1:1/events", CrashURL: srv.URL, Timeout: 50 * time.Millisecond, DebugLogging: true})
	defer c.Close()

	c.Track("err", nil)
	c.Flush(context.Background())
	if c.pending.Load() != 0 {
		t.Fatalf("failed sends must still drain the queue")
	}
	if err := c.UploadCrash(context.Background(), []byte("oops")); err == nil {
		t.Fatalf("expected an error for a 500 response")
	}
}

func TestFromEnvAndDefault(t *testing.T) {
	t.Setenv(EnvOptIn, "yes")
	t.Setenv(EnvURL, " http://127.0.0.1:0 ")
	t.Setenv(EnvCrashURL, "")
	t.Setenv(EnvTimeoutMS, "100")

	cfg := FromEnv()
	if !cfg.OptIn || cfg.EventsURL != "http://127.0.0.1:0" || cfg.Timeout != 100*time.Millisecond {
		t.Fatalf("FromEnv did not parse correctly: %+v", cfg)
	}

	old := Default()
	t.Cleanup(func() { SetDefault(old) })
	c := New(cfg)
	defer c.Close()
	SetDefault(c)
	if !Default().Enabled() {
		t.Fatalf("default client should be enabled")
	}
	if err := UploadCrash([]byte("x")); err != ErrDisabled {
		t.Fatalf("no crash URL means disabled, got %v", err)
	}
}
