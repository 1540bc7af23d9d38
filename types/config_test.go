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

package types

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
log:
  level: debug
  output: stdout
  maxSize: 10
  maxBackups: 3
mappings:
  people:
    first_name: firstName
aliases:
  rename: rename_json_field
query:
  where: "len(text) > 0"
  lateral:
    function: text_extractor
    args: ["text"]
    alias: t
  aggregates:
    - name: hellos
      function: count_substring
      args: ["text", "'hello'"]
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "stdout", cfg.Log.Output)
	assert.Equal(t, 10, cfg.Log.MaxSize)
	assert.Equal(t, 3, cfg.Log.MaxBackups)
	assert.Zero(t, cfg.Log.MaxDays)
	assert.Equal(t, "firstName", cfg.Mappings["people"]["first_name"])
	assert.Equal(t, "rename_json_field", cfg.Aliases["rename"])

	q := cfg.Query
	assert.Equal(t, "len(text) > 0", q.Where)
	require.NotNil(t, q.Lateral)
	assert.Equal(t, "text_extractor", q.Lateral.Function)
	assert.Equal(t, []string{"text"}, q.Lateral.Args)
	assert.Equal(t, "t", q.Lateral.Alias)
	require.Len(t, q.Aggregates, 1)
	assert.Equal(t, AggregateConfig{Name: "hellos", Function: "count_substring", Args: []string{"text", "'hello'"}}, q.Aggregates[0])
	assert.True(t, q.HasAggregates())
	assert.Equal(t, DefaultKindField, q.Kind())
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, "INFO", cfg.Log.Level)
	assert.Equal(t, "stderr", cfg.Log.Output)
	assert.Equal(t, DefaultKindField, cfg.Query.KindField)
	assert.False(t, cfg.Query.HasAggregates())

	cfg, err = ParseConfig([]byte("query:\n  kindField: op\n"))
	require.NoError(t, err)
	assert.Equal(t, "op", cfg.Query.Kind())
}

func TestParseConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "unknown: 1\n"},
		{"bad yaml", "log: [\n"},
		{"select without expr", "query:\n  select:\n    - name: a\n"},
		{"duplicate select", "query:\n  select:\n    - {name: a, expr: x}\n    - {name: a, expr: y}\n"},
		{"aggregate without function", "query:\n  aggregates:\n    - name: a\n"},
		{"lateral without function", "query:\n  lateral:\n    alias: x\n"},
		{"empty alias target", "aliases:\n  x: ''\n"},
		{"negative rotation", "log:\n  maxSize: -1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "streamudf.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestQueryConfigKind(t *testing.T) {
	var q QueryConfig
	assert.Equal(t, DefaultKindField, q.Kind())
	assert.NoError(t, q.Validate())
}
