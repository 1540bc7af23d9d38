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
	"bytes"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rulego/streamudf/functions"
	"github.com/rulego/streamudf/logger"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	return executeWith(t, strings.NewReader(stdin), args...)
}

func executeWith(t *testing.T, stdin io.Reader, args ...string) (string, string, error) {
	t.Helper()
	previous := logger.GetDefault()
	t.Cleanup(func() { logger.SetDefault(previous) })

	rootCommandeer := NewRootCommandeer()
	var out, errOut bytes.Buffer
	cmd := rootCommandeer.GetCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(stdin)
	cmd.SetArgs(args)

	err := rootCommandeer.Execute()
	return out.String(), errOut.String(), err
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "streamudf.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func decodeLines(t *testing.T, out string) []map[string]interface{} {
	t.Helper()
	var rows []map[string]interface{}
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		var row map[string]interface{}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &row))
		rows = append(rows, row)
	}
	return rows
}

func TestFunctionsCommand(t *testing.T) {
	out, _, err := execute(t, "", "functions")
	require.NoError(t, err)
	assert.Contains(t, out, "| name")
	assert.Contains(t, out, "rename_json_field")
	assert.Contains(t, out, "json_field_renamer")

	out, _, err = execute(t, "", "functions", "--json", "--type", "table")
	require.NoError(t, err)
	var descriptors []functions.Descriptor
	require.NoError(t, json.Unmarshal([]byte(out), &descriptors))

	names := make([]string, len(descriptors))
	for i, d := range descriptors {
		names[i] = d.Name
		assert.Equal(t, functions.TypeTable, d.Type)
	}
	assert.Equal(t, []string{"string_logging", "string_logging_table", "text_extractor"}, names)
	assert.Equal(t, "ROW<word STRING, length INT>", descriptors[2].Result)
	assert.Equal(t, "string_logging", descriptors[1].Alias)
}

func TestEvalCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"boolean", []string{"eval", "tshirt_sizing_is_smaller('S', 'M')"}, "true\n"},
		{"string", []string{"eval", "rename_json_field(doc, 'a', 'b')", "--data", `{"doc":"{\"a\":1}"}`}, "{\"b\":1}\n"},
		{"null", []string{"eval", "missing"}, "null\n"},
		{"number", []string{"eval", "count_substring('banana', 'a')"}, "3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, "", tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}

	_, _, err := execute(t, "", "eval", "a", "--data", "{")
	assert.ErrorContains(t, err, "invalid --data")
	_, _, err = execute(t, "", "eval", "((")
	assert.Error(t, err)
	_, _, err = execute(t, "", "eval")
	assert.Error(t, err)
}

func TestExplodeCommand(t *testing.T) {
	out, _, err := execute(t, "", "explode", "text_extractor", "Hello, stream world", "--json")
	require.NoError(t, err)
	assert.Equal(t, []map[string]interface{}{
		{"word": "Hello", "length": 5.0},
		{"word": "stream", "length": 6.0},
		{"word": "world", "length": 5.0},
	}, decodeLines(t, out))

	out, _, err = execute(t, "", "explode", "TEXT_EXTRACTOR", "a;b", ";")
	require.NoError(t, err)
	assert.Contains(t, out, "| word | length |")
	assert.Contains(t, out, "(2 rows)")

	out, _, err = execute(t, "", "explode", "string_logging", "")
	require.NoError(t, err)
	assert.Equal(t, "(0 rows)\n", out)

	_, _, err = execute(t, "", "explode", "rename_json_field", "{}", "a", "b")
	assert.ErrorIs(t, err, functions.ErrNotTableFunction)
	_, _, err = execute(t, "", "explode", "nope")
	assert.ErrorIs(t, err, functions.ErrFunctionNotFound)
}

func TestRunCommand_Projection(t *testing.T) {
	config := writeConfig(t, `
log:
  level: off
query:
  where: "lang == 'en'"
  lateral:
    function: text_extractor
    args: [line]
    alias: t
  select:
    - {name: id, expr: id}
    - {name: word, expr: t.word}
`)
	input := strings.Join([]string{
		`{"id": 1, "lang": "en", "line": "to be"}`,
		`{"id": 2, "lang": "pt", "line": "ser ou nao"}`,
		``,
		`not json`,
		`{"id": 3, "lang": "en", "line": "!!!"}`,
		`{"id": 4, "lang": "en", "line": "done"}`,
	}, "\n")

	out, _, err := execute(t, input, "run", "--config", config)
	require.NoError(t, err)
	assert.Equal(t, []map[string]interface{}{
		{"id": 1.0, "word": "to"},
		{"id": 1.0, "word": "be"},
		{"id": 4.0, "word": "done"},
	}, decodeLines(t, out))

	_, _, err = execute(t, input, "run", "--config", config, "--fail-fast")
	assert.ErrorContains(t, err, "line 4")
}

func TestRunCommand_Aggregation(t *testing.T) {
	config := writeConfig(t, `
log:
  level: off
aliases:
  occurrences: count_substring
query:
  kindField: op
  aggregates:
    - {name: hits, function: occurrences, args: [text, "'ab'"]}
`)
	input := strings.Join([]string{
		`{"text": "abab"}`,
		`{"text": "ab", "op": "+I"}`,
		`{"text": "abab", "op": "-U"}`,
		`{"text": "ababab", "op": "+U"}`,
	}, "\n")
	outputPath := filepath.Join(t.TempDir(), "out.jsonl")

	out, _, err := execute(t, input, "run", "-c", config, "-o", outputPath)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, []map[string]interface{}{{"hits": 4.0}}, decodeLines(t, string(data)))
}

func TestRunCommand_Errors(t *testing.T) {
	_, _, err := execute(t, "", "run")
	assert.ErrorContains(t, err, "--config")

	_, _, err = execute(t, "", "run", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	config := writeConfig(t, `
log:
  level: off
query:
  aggregates:
    - {name: x, function: rename_json_field, args: [a]}
`)
	_, _, err = execute(t, "", "run", "--config", config)
	assert.ErrorIs(t, err, functions.ErrNotAggregator)

	valid := writeConfig(t, "log: {level: off}\n")
	_, _, err = execute(t, "", "run", "--config", valid, "--input", filepath.Join(t.TempDir(), "none.jsonl"))
	assert.ErrorContains(t, err, "open input")

	out, _, err := execute(t, `{"a": 1, "_kind": "-D"}`, "run", "--config", valid)
	require.NoError(t, err)
	assert.Equal(t, []map[string]interface{}{{"a": 1.0}}, decodeLines(t, out))
}

func TestRunCommand_MetricsEndpoint(t *testing.T) {
	addrs := make(chan net.Addr, 1)
	netListen := listen
	t.Cleanup(func() { listen = netListen })
	listen = func(network, address string) (net.Listener, error) {
		l, err := netListen(network, address)
		if err == nil {
			addrs <- l.Addr()
		}
		return l, err
	}

	config := writeConfig(t, "log: {level: off}\n")
	reader, writer := io.Pipe()
	done := make(chan error, 1)
	go func() {
		_, _, err := executeWith(t, reader, "run", "--config", config, "--metrics-addr", "127.0.0.1:0")
		done <- err
	}()

	var addr net.Addr
	select {
	case addr = <-addrs:
	case <-time.After(5 * time.Second):
		t.Fatal("metrics listener was not opened")
	}
	_, err := io.WriteString(writer, `{"a": 1}`+"\n")
	require.NoError(t, err)

	scrape := func() string {
		resp, err := http.Get("http://" + addr.String() + "/metrics")
		if err != nil {
			return ""
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return string(body)
	}
	assert.Eventually(t, func() bool {
		return strings.Contains(scrape(), `streamudf_records_total{result="emitted"} 1`)
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, writer.Close())
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not finish")
	}

	_, _, err = execute(t, "", "run", "--config", config, "--metrics-addr", "not-an-address")
	assert.ErrorContains(t, err, "failed to listen on not-an-address")
}
