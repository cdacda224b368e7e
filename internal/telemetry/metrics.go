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
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the in-process Prometheus collectors for editor operations.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	resourcesCreated *prometheus.CounterVec
	resourcesRemoved *prometheus.CounterVec
	namingCancelled  *prometheus.CounterVec
	popupsOpened     *prometheus.CounterVec
	switches         *prometheus.CounterVec
	contractErrors   *prometheus.CounterVec
	exports          *prometheus.CounterVec
	saveDuration     prometheus.Histogram
}

// NewMetrics registers all collectors on a fresh registry under the given namespace.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "blockfactory"
	}
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		resourcesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resources_created_total",
			Help:      "Resources created, by kind",
		}, []string{"kind"}),
		resourcesRemoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resources_removed_total",
			Help:      "Resources removed, by kind",
		}, []string{"kind"}),
		namingCancelled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "naming_cancelled_total",
			Help:      "Naming prompts abandoned by the user, by kind",
		}, []string{"kind"}),
		popupsOpened: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "popups_opened_total",
			Help:      "Modal popups opened, by mode",
		}, []string{"mode"}),
		switches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "environment_switches_total",
			Help:      "Editor environment switches, by editor",
		}, []string{"editor"}),
		contractErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contract_errors_total",
			Help:      "Contract violations reported by the orchestrator, by error type",
		}, []string{"type"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Export hand-offs, by sink and status",
		}, []string{"sink", "status"}),
		saveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "save_duration_seconds",
			Help:      "Time spent persisting the project",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(
		m.resourcesCreated, m.resourcesRemoved, m.namingCancelled, m.popupsOpened,
		m.switches, m.contractErrors, m.exports, m.saveDuration,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry exposes the underlying registry, e.g. for tests or custom exposition.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ResourceCreated(kind string) {
	if m != nil {
		m.resourcesCreated.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) ResourceRemoved(kind string) {
	if m != nil {
		m.resourcesRemoved.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) NamingCancelled(kind string) {
	if m != nil {
		m.namingCancelled.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) PopupOpened(mode string) {
	if m != nil {
		m.popupsOpened.WithLabelValues(mode).Inc()
	}
}

func (m *Metrics) Switched(editor string) {
	if m != nil {
		m.switches.WithLabelValues(editor).Inc()
	}
}

func (m *Metrics) ContractError(errType string) {
	if m != nil {
		m.contractErrors.WithLabelValues(errType).Inc()
	}
}

// Exported records one export hand-off; status is "ok" or "error".
func (m *Metrics) Exported(sink string, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.exports.WithLabelValues(sink, status).Inc()
}

func (m *Metrics) ObserveSave(d time.Duration) {
	if m != nil {
		m.saveDuration.Observe(d.Seconds())
	}
}
