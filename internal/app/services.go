/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package app

import (
	"context"
	"fmt"

	"blockfactory/internal/config"
	"blockfactory/internal/export"
	"blockfactory/internal/telemetry"
)

// Services are the process-wide collaborators built from the user configuration.
type Services struct {
	Config  config.AppConfig
	Metrics *telemetry.Metrics
	Exports *export.Service
}

// NewServices builds metrics and the export service for a project rooted at projectRoot.
// secret is the S3 secret key from config.Load.
func NewServices(ctx context.Context, cfg config.AppConfig, secret, projectRoot string) (*Services, error) {
	m := telemetry.NewMetrics("")
	sink, err := export.NewSink(ctx, cfg.Export, secret, projectRoot)
	if err != nil {
		return nil, fmt.Errorf("export sink: %w", err)
	}
	return &Services{Config: cfg, Metrics: m, Exports: export.NewService(sink, m)}, nil
}

// Close waits for pending exports.
func (s *Services) Close() {
	if s != nil && s.Exports != nil {
		s.Exports.Wait()
	}
}
