/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"blockfactory/internal/crash"
	applog "blockfactory/internal/log"
	"blockfactory/internal/telemetry"
)

func main() {
	os.Exit(run())
}

func run() int {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	e := newEnv()
	defer crash.RecoverFunc(e.currentHandle)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	l.Debug("start", slog.Int("args", len(os.Args)))
	err := newRootCommand(e).ExecuteContext(ctx)
	telemetry.Flush(context.Background())
	if err != nil {
		l.Debug("command failed", slog.Any("err", err))
		return 1
	}
	return 0
}
