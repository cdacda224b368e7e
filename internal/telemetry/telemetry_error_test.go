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
	"testing"
	"time"
)

// An unroutable address exercises the send error path.
func TestTelemetry_SendErrorBranches(t *testing.T) {
	c := New(Config{
		OptIn:        true,
		EventsURL:    "http://127.0.0.1:1/events",
		CrashURL:     "http://127.0.0.1:1/crash",
		Timeout:      50 * time.Millisecond,
		DebugLogging: true,
	})
	defer c.Close()

	c.Event(EventProjectSaved, map[string]any{"resources": 1})
	start := time.Now()
	c.Flush(context.Background())
	if d := time.Since(start); d > flushTimeout+250*time.Millisecond {
		t.Fatalf("Flush took %v, want at most about %v", d, flushTimeout)
	}
	c.UploadCrash([]byte("oops"))
	time.Sleep(50 * time.Millisecond)
}

func TestFlush_CancelledContextReturns(t *testing.T) {
	var c *Client
	c.Flush(context.Background())

	c = New(Config{OptIn: true, EventsURL: "http://127.0.0.1:1/events", Timeout: time.Second})
	defer c.Close()
	c.Event(EventAppStarted, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	c.Flush(ctx)
	if d := time.Since(start); d > 100*time.Millisecond {
		t.Fatalf("Flush with a cancelled context took %v", d)
	}
}
