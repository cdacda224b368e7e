/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package telemetry provides a tiny, privacy‑respecting, opt‑in event sender
// for anonymous usage events and optional crash uploads, plus in-process
// Prometheus counters for the editor's own operations.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	applog "blockfactory/internal/log"
	"blockfactory/internal/version"
)

// Config holds runtime configuration for telemetry and crash uploads.
// All telemetry is strictly opt‑in and disabled by default.
//
// Environment variables (read by FromEnv):
// - BF_TELEMETRY_OPT_IN: "1", "true", "yes" to enable events
// - BF_TELEMETRY_URL: URL to POST JSON events to
// - BF_CRASH_UPLOAD_URL: URL to POST crash reports to
// - BF_TELEMETRY_TIMEOUT_MS: optional request timeout, default 1500ms
// - BF_TELEMETRY_DEBUG: if set, logs event send attempts
//
// Without URLs, events are dropped even if opt‑in is true.
type Config struct {
	OptIn        bool
	EventsURL    string
	CrashURL     string
	Timeout      time.Duration
	DebugLogging bool
}

// Event names. Properties never carry resource names or payloads.
const (
	EventAppStarted      = "app_started"
	EventResourceCreated = "resource_created"
	EventProjectSaved    = "project_saved"
)

// allowedProps are the only event properties that leave the machine. Anything else,
// including resource and project names, is dropped.
var allowedProps = map[string]bool{
	"surface":   true,
	"command":   true,
	"kind":      true,
	"mode":      true,
	"sink":      true,
	"resources": true,
}

const maxPropLen = 40

// sanitize keeps allowed keys with scalar values; long strings are dropped.
func sanitize(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		if !allowedProps[k] {
			continue
		}
		switch val := v.(type) {
		case string:
			if len(val) <= maxPropLen {
				out[k] = val
			}
		case bool, int, int64, float64:
			out[k] = val
		}
	}
	return out
}

func FromEnv() Config {
	cfg := Config{
		OptIn:        parseBool(os.Getenv("BF_TELEMETRY_OPT_IN")),
		EventsURL:    strings.TrimSpace(os.Getenv("BF_TELEMETRY_URL")),
		CrashURL:     strings.TrimSpace(os.Getenv("BF_CRASH_UPLOAD_URL")),
		Timeout:      1500 * time.Millisecond,
		DebugLogging: os.Getenv("BF_TELEMETRY_DEBUG") != "",
	}
	if ms := strings.TrimSpace(os.Getenv("BF_TELEMETRY_TIMEOUT_MS")); ms != "" {
		if v, err := time.ParseDuration(ms + "ms"); err == nil && v > 0 {
			cfg.Timeout = v
		}
	}
	return cfg
}

// WithOptIn returns cfg with the opt-in flag from the user config applied on top of the env.
func (cfg Config) WithOptIn(optIn bool) Config {
	cfg.OptIn = cfg.OptIn || optIn
	return cfg
}

func parseBool(v string) bool {
	s := strings.ToLower(strings.TrimSpace(v))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

// Client is a minimal async sender; it drops events silently on errors.
// It never blocks the caller; the queue is bounded. Events of one client share an
// anonymous session id that is not persisted.
type Client struct {
	cfg     Config
	log     *slog.Logger
	cli     *http.Client
	session string
	q       chan map[string]any
	pending sync.WaitGroup
	once    sync.Once
	closed  chan struct{}
}

var (
	defaultClient *Client
	defaultOnce   sync.Once
	defaultMu     sync.Mutex
)

// InitDefault initializes the package‑level default client from env when first used.
func InitDefault() {
	defaultOnce.Do(func() {
		defaultMu.Lock()
		defer defaultMu.Unlock()
		if defaultClient == nil {
			defaultClient = New(FromEnv())
		}
	})
}

// NewDefault creates and installs the default client with cfg, closing any previous one.
func NewDefault(cfg Config) {
	defaultOnce.Do(func() {})
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultClient != nil {
		defaultClient.Close()
	}
	defaultClient = New(cfg)
}

func current() *Client {
	InitDefault()
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultClient
}

// New constructs a client and starts its sender goroutine.
func New(cfg Config) *Client {
	c := &Client{
		cfg:     cfg,
		log:     applog.WithComponent("telemetry"),
		cli:     &http.Client{Timeout: cfg.Timeout},
		session: uuid.NewString(),
		q:       make(chan map[string]any, 64),
		closed:  make(chan struct{}),
	}
	go c.loop()
	return c
}

// Enabled reports whether anonymous telemetry is enabled and an endpoint is configured.
func (c *Client) Enabled() bool { return c != nil && c.cfg.OptIn && c.cfg.EventsURL != "" }

// Enabled reports whether anonymous telemetry is enabled using the default client.
func Enabled() bool { return current().Enabled() }

// Event queues a small JSON event if enabled. Safe to call from any goroutine.
func (c *Client) Event(name string, props map[string]any) {
	if !c.Enabled() || name == "" {
		return
	}
	payload := sanitize(props)
	payload["name"] = name
	payload["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	payload["version"] = version.String()
	payload["os"] = runtime.GOOS
	payload["arch"] = runtime.GOARCH
	payload["session"] = c.session
	c.pending.Add(1)
	select {
	case c.q <- payload:
	default:
		// queue full
		c.pending.Done()
	}
}

// Event using default client.
func Event(name string, props map[string]any) { current().Event(name, props) }

// flushTimeout bounds Flush so exiting never waits on a slow endpoint for long.
const flushTimeout = 500 * time.Millisecond

// Flush waits until queued events have been sent, ctx is done or flushTimeout passed.
func (c *Client) Flush(ctx context.Context) {
	if c == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	done := make(chan struct{})
	go func() {
		c.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	case <-time.After(flushTimeout):
	}
}

// Flush using default client.
func Flush(ctx context.Context) { current().Flush(ctx) }

// Close stops the sender goroutine.
func (c *Client) Close() { c.once.Do(func() { close(c.closed) }) }

func (c *Client) loop() {
	for {
		select {
		case <-c.closed:
			return
		case item := <-c.q:
			buf, _ := json.Marshal(item)
			c.post(c.cfg.EventsURL, "application/json", buf, "telemetry event")
			c.pending.Done()
		}
	}
}

// post sends body to url and reports the outcome at debug level only.
func (c *Client) post(url, contentType string, body []byte, what string) {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := c.cli.Do(req)
	if err != nil {
		if c.cfg.DebugLogging {
			c.log.Debug(what+" failed", slog.Any("err", err))
		}
		return
	}
	_ = resp.Body.Close()
	if c.cfg.DebugLogging {
		c.log.Debug(what+" sent", slog.Int("status", resp.StatusCode))
	}
}

// UploadCrash posts an already‑serialized crash report to the configured crash URL if opt‑in.
func (c *Client) UploadCrash(report []byte) {
	if c == nil || !c.cfg.OptIn || c.cfg.CrashURL == "" {
		return
	}
	b := append([]byte(nil), report...)
	go c.post(c.cfg.CrashURL, "text/plain; charset=utf-8", b, "crash upload")
}

// UploadCrash using default client.
func UploadCrash(report []byte) { current().UploadCrash(report) }
