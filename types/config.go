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
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultKindField is the record field read for the change kind when none is configured.
const DefaultKindField = "_kind"

// Config 运行时配置
type Config struct {
	Log      LogConfig                    `yaml:"log" json:"log"`
	Mappings map[string]map[string]string `yaml:"mappings" json:"mappings"` // 映射配置名 -> 字段重命名表
	Aliases  map[string]string            `yaml:"aliases" json:"aliases"`   // 别名 -> 函数名
	Query    QueryConfig                  `yaml:"query" json:"query"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Output string `yaml:"output" json:"output"` // stdout, stderr or a file path

	// rotation of file output; zero values use the rotation defaults
	MaxSize    int `yaml:"maxSize" json:"maxSize"` // megabytes
	MaxDays    int `yaml:"maxDays" json:"maxDays"`
	MaxBackups int `yaml:"maxBackups" json:"maxBackups"`
}

// QueryConfig describes how a stream processes each record.
type QueryConfig struct {
	Where      string            `yaml:"where" json:"where"`
	Lateral    *LateralConfig    `yaml:"lateral" json:"lateral"`
	Select     []Projection      `yaml:"select" json:"select"`
	Aggregates []AggregateConfig `yaml:"aggregates" json:"aggregates"`
	KindField  string            `yaml:"kindField" json:"kindField"` // 变更类型字段，支持 meta.op 形式的嵌套路径
}

// LateralConfig joins each record with the rows of a table function.
type LateralConfig struct {
	Function string   `yaml:"function" json:"function"`
	Args     []string `yaml:"args" json:"args"` // 参数表达式
	Alias    string   `yaml:"alias" json:"alias"`
}

// Projection SELECT列表中的一个输出列
type Projection struct {
	Name string `yaml:"name" json:"name"`
	Expr string `yaml:"expr" json:"expr"`
}

// AggregateConfig 聚合列配置
type AggregateConfig struct {
	Name     string   `yaml:"name" json:"name"`
	Function string   `yaml:"function" json:"function"`
	Args     []string `yaml:"args" json:"args"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Log:   LogConfig{Level: "INFO", Output: "stderr"},
		Query: QueryConfig{KindField: DefaultKindField},
	}
}

// HasAggregates reports whether the query accumulates instead of projecting.
func (q *QueryConfig) HasAggregates() bool {
	return len(q.Aggregates) > 0
}

// Kind returns the configured change kind field.
func (q *QueryConfig) Kind() string {
	if q.KindField == "" {
		return DefaultKindField
	}
	return q.KindField
}

// Validate checks that every column is named and every name is unique.
func (q *QueryConfig) Validate() error {
	var errs []error
	seen := make(map[string]bool)
	for i, p := range q.Select {
		if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Expr) == "" {
			errs = append(errs, fmt.Errorf("select[%d]: name and expr are required", i))
			continue
		}
		if seen[p.Name] {
			errs = append(errs, fmt.Errorf("select[%d]: duplicate column %q", i, p.Name))
		}
		seen[p.Name] = true
	}
	seen = make(map[string]bool)
	for i, a := range q.Aggregates {
		if strings.TrimSpace(a.Name) == "" || strings.TrimSpace(a.Function) == "" {
			errs = append(errs, fmt.Errorf("aggregates[%d]: name and function are required", i))
			continue
		}
		if seen[a.Name] {
			errs = append(errs, fmt.Errorf("aggregates[%d]: duplicate column %q", i, a.Name))
		}
		seen[a.Name] = true
	}
	if q.Lateral != nil && strings.TrimSpace(q.Lateral.Function) == "" {
		errs = append(errs, errors.New("lateral: function is required"))
	}
	return errors.Join(errs...)
}

// Validate checks the whole configuration.
func (c *Config) Validate() error {
	var errs []error
	for name, target := range c.Aliases {
		if strings.TrimSpace(name) == "" || strings.TrimSpace(target) == "" {
			errs = append(errs, fmt.Errorf("aliases: empty alias or target in %q -> %q", name, target))
		}
	}
	if c.Log.MaxSize < 0 || c.Log.MaxDays < 0 || c.Log.MaxBackups < 0 {
		errs = append(errs, errors.New("log: rotation limits must not be negative"))
	}
	for name := range c.Mappings {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, errors.New("mappings: profile name is required"))
		}
	}
	if err := c.Query.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("query: %w", err))
	}
	return errors.Join(errs...)
}

// ParseConfig decodes a YAML document over the defaults. Unknown keys are rejected.
func ParseConfig(data []byte) (*Config, error) {
	cfg := NewConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Query.KindField == "" {
		cfg.Query.KindField = DefaultKindField
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return ParseConfig(data)
}
