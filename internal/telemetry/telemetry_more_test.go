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
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestClient_DisabledAndEmptyEventName(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(Config{OptIn: false, EventsURL: srv.URL + "/events", CrashURL: srv.URL + "/crash", Timeout: time.Second})
	defer c.Close()
	if c.Enabled() {
		t.Fatalf("expected disabled client")
	}
	c.Event(EventResourceCreated, map[string]any{"kind": "toolbox"})
	c.UploadCrash([]byte("ignored"))
	c.Flush(nil)
	time.Sleep(50 * time.Millisecond)
	if got := atomic.LoadInt32(&hits); got != 0 {
		t.Fatalf("requests = %d, want 0 when disabled", got)
	}

	c2 := New(Config{OptIn: true, EventsURL: srv.URL + "/events", Timeout: time.Second})
	defer c2.Close()
	c2.Event("", nil)
	c2.Flush(nil)
	if got := atomic.LoadInt32(&hits); got != 0 {
		t.Fatalf("requests = %d, want 0 for an empty event name", got)
	}
}

func TestClient_DropsDisallowedProps(t *testing.T) {
	var (
		mu     sync.Mutex
		events []map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		var m map[string]any
		_ = json.Unmarshal(b, &m)
		mu.Lock()
		events = append(events, m)
		mu.Unlock()
	}))
	defer srv.Close()

	c := New(Config{OptIn: true, EventsURL: srv.URL, Timeout: time.Second})
	defer c.Close()
	c.Event(EventResourceCreated, map[string]any{
		"kind":    "library",
		"name":    "MyFirstBlockLibrary",
		"payload": "<xml/>",
		"command": strings.Repeat("x", maxPropLen+1),
	})
	c.Event(EventProjectSaved, map[string]any{"resources": 4})
	c.Flush(nil)

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	first := events[0]
	if first["kind"] != "library" {
		t.Fatalf("kind = %v, want library", first["kind"])
	}
	for _, k := range []string{"name", "payload", "command"} {
		if _, ok := first[k]; ok {
			t.Fatalf("property %q should have been dropped: %v", k, first)
		}
	}
	if events[1]["resources"] != float64(4) {
		t.Fatalf("resources = %v, want 4", events[1]["resources"])
	}
	s1, _ := first["session"].(string)
	if s1 == "" || s1 != events[1]["session"] {
		t.Fatalf("session ids differ or are empty: %v / %v", first["session"], events[1]["session"])
	}
}
