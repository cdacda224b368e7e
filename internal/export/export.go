/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package export hands generated documents to a storage sink. Callers fire and forget: the
// outcome is logged and counted, never returned.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"blockfactory/internal/config"
	applog "blockfactory/internal/log"
	"blockfactory/internal/storage"
	"blockfactory/internal/telemetry"
)

// Sink stores one exported document under name.
type Sink interface {
	Name() string
	Put(ctx context.Context, name, mimeType string, data []byte) error
}

// Discard drops every document. It backs the "none" sink setting.
type Discard struct{}

func (Discard) Name() string { return "none" }

func (Discard) Put(context.Context, string, string, []byte) error { return nil }

// DefaultTimeout bounds a single hand-off to a sink.
const DefaultTimeout = 30 * time.Second

// Service dispatches exports to a Sink in background goroutines.
type Service struct {
	sink    Sink
	metrics *telemetry.Metrics
	timeout time.Duration
	log     *slog.Logger

	wg sync.WaitGroup
}

// NewService returns a service writing to sink. m may be nil.
func NewService(sink Sink, m *telemetry.Metrics) *Service {
	if sink == nil {
		sink = Discard{}
	}
	return &Service{sink: sink, metrics: m, timeout: DefaultTimeout, log: applog.WithComponent("export")}
}

// Sink returns the configured sink.
func (s *Service) Sink() Sink { return s.sink }

// Export queues content for the sink and returns immediately.
func (s *Service) Export(content, filename, mimeType string) {
	data := []byte(content)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		err := s.put(ctx, filename, mimeType, data)
		s.metrics.Exported(s.sink.Name(), err)
		l := applog.WithOperation(s.log, "export").With(
			slog.String("sink", s.sink.Name()), slog.String("file", filename))
		if err != nil {
			l.Error("export failed", slog.Any("err", err))
			return
		}
		l.Info("exported", slog.Int("bytes", len(data)))
	}()
}

// ExportBytes is Export for binary payloads such as bundles. Unlike Export it waits for
// the sink and reports the outcome.
func (s *Service) ExportBytes(ctx context.Context, data []byte, filename, mimeType string) error {
	err := s.put(ctx, filename, mimeType, data)
	s.metrics.Exported(s.sink.Name(), err)
	return err
}

// Wait blocks until every queued export has finished.
func (s *Service) Wait() { s.wg.Wait() }

func (s *Service) put(ctx context.Context, filename, mimeType string, data []byte) error {
	name, err := cleanName(filename)
	if err != nil {
		return err
	}
	if err := s.sink.Put(ctx, name, mimeType, data); err != nil {
		return fmt.Errorf("%s sink: %w", s.sink.Name(), err)
	}
	return nil
}

// cleanName reduces filename to a single path element so exports never escape the sink root.
func cleanName(filename string) (string, error) {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || strings.TrimSpace(name) == "" || name == ".." {
		return "", errors.New("export: empty filename")
	}
	return name, nil
}

// NewSink builds the sink selected by cfg. projectRoot supplies the default file sink
// directory; secret is the S3 secret key, if any.
func NewSink(ctx context.Context, cfg config.ExportConfig, secret, projectRoot string) (Sink, error) {
	switch cfg.Sink {
	case "", "file":
		dir := cfg.Dir
		if dir == "" {
			if projectRoot == "" {
				return nil, errors.New("file sink: no export directory")
			}
			dir = filepath.Join(projectRoot, storage.ExportsDirName)
		}
		return NewFileSink(dir), nil
	case "none":
		return Discard{}, nil
	case "s3":
		return NewS3Sink(ctx, S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			PathStyle:       cfg.S3PathStyle,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: secret,
			KeyPrefix:       cfg.S3KeyPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown export sink %q", cfg.Sink)
	}
}
