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
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics("bf_test")
	m.ResourceCreated("toolbox")
	m.ResourceCreated("toolbox")
	m.ResourceCreated("library")
	m.PopupOpened("NEW_BLOCK")
	m.Switched("ToolboxEditor")
	m.Exported("file", nil)
	m.Exported("file", errors.New("boom"))
	m.ObserveSave(20 * time.Millisecond)

	if got := testutil.ToFloat64(m.resourcesCreated.WithLabelValues("toolbox")); got != 2 {
		t.Fatalf("toolbox created = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.resourcesCreated.WithLabelValues("library")); got != 1 {
		t.Fatalf("library created = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.exports.WithLabelValues("file", "error")); got != 1 {
		t.Fatalf("failed exports = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.popupsOpened.WithLabelValues("NEW_BLOCK")); got != 1 {
		t.Fatalf("popups = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.saveDuration); n != 1 {
		t.Fatalf("save histogram series = %d, want 1", n)
	}
}

func TestMetricsNilIsNoop(t *testing.T) {
	var m *Metrics
	m.ResourceCreated("toolbox")
	m.Exported("s3", nil)
	m.ObserveSave(time.Second)
	if m.Registry() != nil {
		t.Fatalf("nil metrics should have no registry")
	}
}

func TestMetricsHandlerExposesText(t *testing.T) {
	m := NewMetrics("")
	m.Switched("BlockEditor")
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(b), `blockfactory_environment_switches_total{editor="BlockEditor"} 1`) {
		t.Fatalf("metrics output missing switch counter:\n%s", b)
	}
}
