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

// Package fieldpath reads values out of decoded JSON records by path.
//
// Supported forms:
//   - meta.op (nested fields)
//   - items[0] (array index, negative counts from the end)
//   - items[0].name (field of an array element)
//   - headers['x-op'] or headers["x-op"] (quoted key)
package fieldpath

import (
	"fmt"
	"strconv"
	"strings"
)

// Part is one step of a path: a key, or an index when IsIndex is set.
type Part struct {
	Key     string
	Index   int
	IsIndex bool
}

// Error reports a malformed path.
type Error struct {
	Path    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("field path %q: %s", e.Path, e.Message)
}

// Parse splits path into parts.
func Parse(path string) ([]Part, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &Error{Path: path, Message: "empty path"}
	}
	var parts []Part
	rest := path
	for len(rest) > 0 {
		switch rest[0] {
		case '.':
			rest = rest[1:]
		case '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, &Error{Path: path, Message: "unmatched bracket"}
			}
			part, err := parseBracket(strings.TrimSpace(rest[1:end]))
			if err != nil {
				return nil, &Error{Path: path, Message: err.Error()}
			}
			parts = append(parts, part)
			rest = rest[end+1:]
		default:
			end := strings.IndexAny(rest, ".[")
			if end < 0 {
				end = len(rest)
			}
			parts = append(parts, Part{Key: rest[:end]})
			rest = rest[end:]
		}
	}
	return parts, nil
}

func parseBracket(content string) (Part, error) {
	if len(content) >= 2 && (content[0] == '\'' || content[0] == '"') && content[len(content)-1] == content[0] {
		return Part{Key: content[1 : len(content)-1]}, nil
	}
	index, err := strconv.Atoi(content)
	if err != nil {
		return Part{}, fmt.Errorf("invalid bracket content %q, expected number or quoted string", content)
	}
	return Part{Index: index, Key: content, IsIndex: true}, nil
}

// Get returns the value at path. A plain key without dots or brackets is
// looked up directly, so keys such as "a.b" stored flat still resolve.
func Get(data map[string]interface{}, path string) (interface{}, bool) {
	if v, ok := data[path]; ok {
		return v, true
	}
	parts, err := Parse(path)
	if err != nil {
		return nil, false
	}
	var current interface{} = data
	for _, part := range parts {
		next, ok := step(current, part)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func step(data interface{}, part Part) (interface{}, bool) {
	switch v := data.(type) {
	case map[string]interface{}:
		value, ok := v[part.Key]
		return value, ok
	case []interface{}:
		if !part.IsIndex {
			return nil, false
		}
		index := part.Index
		if index < 0 {
			index += len(v)
		}
		if index < 0 || index >= len(v) {
			return nil, false
		}
		return v[index], true
	default:
		return nil, false
	}
}

// IsNested reports whether path goes below the top level.
func IsNested(path string) bool {
	return strings.ContainsAny(path, ".[")
}
