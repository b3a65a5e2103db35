/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"funcplot/internal/config"
	"funcplot/internal/history"
)

func runHistory(cfg config.AppConfig, args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("history", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	n := fs.IntP("limit", "n", 20, "number of entries to list (0 lists all)")
	clearAll := fs.Bool("clear", false, "forget all remembered expressions")
	logLevel := fs.String("log-level", "", "override the configured log level: debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		return usageError("history: %v", err)
	}
	if err := applyLogLevel(fs, *logLevel); err != nil {
		return err
	}
	if !cfg.General.History {
		_, _ = fmt.Fprintln(stderr, "note: history is disabled in the config; showing stored entries")
	}

	hp, err := historyPath()
	if err != nil {
		return err
	}
	st, err := history.Open(hp)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()
	if *clearAll {
		if err := st.Clear(ctx); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(stdout, "history cleared")
		return nil
	}
	entries, err := st.Recent(ctx, *n)
	if err != nil {
		return err
	}
	for _, e := range entries {
		_, _ = fmt.Fprintf(stdout, "%4d  %s  %s\n", e.Uses, e.LastUsed.Local().Format("2006-01-02 15:04"), e.Text)
	}
	return nil
}
