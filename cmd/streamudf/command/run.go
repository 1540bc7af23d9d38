/*
 * Copyright 2025 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package command

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/rulego/streamudf"
	"github.com/rulego/streamudf/logger"
	"github.com/rulego/streamudf/stream"
)

// maxLineSize bounds one JSON line of input.
const maxLineSize = 16 * 1024 * 1024

// listen opens the metrics listener; tests replace it to learn the bound address.
var listen = net.Listen

type runCommandeer struct {
	cmd            *cobra.Command
	rootCommandeer *RootCommandeer
	inputPath      string
	outputPath     string
	metricsAddr    string
	failFast       bool
}

func newRunCommandeer(rootCommandeer *RootCommandeer) *runCommandeer {
	commandeer := &runCommandeer{
		rootCommandeer: rootCommandeer,
	}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Process JSON lines through the configured query",
		Long: `Reads one JSON object per line, runs it through the query of the
configuration file and writes every emitted row as a JSON line. When the query
aggregates, the aggregate row is written once the input is exhausted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rootCommandeer.configPath == "" {
				return errors.New("run requires --config")
			}

			var options []streamudf.Option
			var registry *prometheus.Registry
			if commandeer.metricsAddr != "" {
				registry = prometheus.NewRegistry()
				options = append(options, streamudf.WithMetrics(registry))
			}

			if err := rootCommandeer.initialize(options...); err != nil {
				return err
			}
			defer rootCommandeer.close()

			if registry != nil {
				shutdown, err := serveMetrics(commandeer.metricsAddr, registry)
				if err != nil {
					return err
				}
				defer shutdown()
			}

			s, err := rootCommandeer.runtime.Query(rootCommandeer.config.Query)
			if err != nil {
				return fmt.Errorf("failed to compile query: %w", err)
			}

			input, closeInput, err := openInput(cmd, commandeer.inputPath)
			if err != nil {
				return err
			}
			defer closeInput()

			output, closeOutput, err := openOutput(cmd, commandeer.outputPath)
			if err != nil {
				return err
			}
			defer closeOutput()

			return commandeer.process(cmd.Context(), s, input, output)
		},
	}

	cmd.Flags().StringVarP(&commandeer.inputPath, "input", "i", "-", "Input file of JSON lines, - for stdin")
	cmd.Flags().StringVarP(&commandeer.outputPath, "output", "o", "-", "Output file of JSON lines, - for stdout")
	cmd.Flags().StringVar(&commandeer.metricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address, e.g. :9090")
	cmd.Flags().BoolVar(&commandeer.failFast, "fail-fast", false, "Stop at the first record that fails")

	commandeer.cmd = cmd

	return commandeer
}

func (rc *runCommandeer) process(ctx context.Context, s *stream.Stream, input io.Reader, output io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	writer := bufio.NewWriter(output)
	defer writer.Flush()
	encoder := json.NewEncoder(writer)

	// the aggregate row arrives through the sink on Flush
	var writeErr error
	s.AddSink(func(rows []map[string]interface{}) {
		for _, row := range rows {
			if err := encoder.Encode(row); err != nil && writeErr == nil {
				writeErr = err
			}
		}
	})

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		var record map[string]interface{}
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			if rc.failFast {
				return fmt.Errorf("line %d: %w", lineNumber, err)
			}
			logger.Error("line %d: invalid JSON: %v", lineNumber, err)
			continue
		}

		rows, err := s.Process(ctx, record)
		if err != nil {
			if rc.failFast {
				return fmt.Errorf("line %d: %w", lineNumber, err)
			}
			logger.Error("line %d: %v", lineNumber, err)
			continue
		}
		for _, row := range rows {
			if err := encoder.Encode(row); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	s.Flush()
	if writeErr != nil {
		return writeErr
	}

	stats := s.Stats()
	logger.Info("processed %d records: %d rows out, %d filtered, %d failed",
		stats[stream.InputCount], stats[stream.OutputCount], stats[stream.FilteredCount], stats[stream.ErrorCount])
	return nil
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func openOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func serveMetrics(addr string, registry *prometheus.Registry) (func(), error) {
	listener, err := listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Handler: mux}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped: %v", err)
		}
	}()
	logger.Info("serving metrics on %s/metrics", listener.Addr())

	return func() {
		server.Close()
	}, nil
}
