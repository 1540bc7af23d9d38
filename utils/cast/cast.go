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

// Package cast converts function arguments, treating nil as SQL NULL.
package cast

import (
	"fmt"
	"strings"

	spfcast "github.com/spf13/cast"
)

// ToNullableString converts x to a string. A nil x reports ok=false.
func ToNullableString(x any) (s string, ok bool, err error) {
	switch v := x.(type) {
	case nil:
		return "", false, nil
	case string:
		return v, true, nil
	case *string:
		if v == nil {
			return "", false, nil
		}
		return *v, true, nil
	case []byte:
		return string(v), true, nil
	}
	s, err = spfcast.ToStringE(x)
	if err != nil {
		return "", false, err
	}
	return s, true, nil
}

// ToNullableBool converts x to a bool. A nil x reports ok=false.
func ToNullableBool(x any) (b bool, ok bool, err error) {
	switch v := x.(type) {
	case nil:
		return false, false, nil
	case *bool:
		if v == nil {
			return false, false, nil
		}
		return *v, true, nil
	}
	b, err = spfcast.ToBoolE(x)
	if err != nil {
		return false, false, err
	}
	return b, true, nil
}

// ToStringMap converts a map argument to map[string]string. A nil x yields a nil map.
func ToStringMap(x any) (map[string]string, error) {
	if x == nil {
		return nil, nil
	}
	m, err := spfcast.ToStringMapStringE(x)
	if err != nil {
		return nil, fmt.Errorf("expected map of strings, got %T: %w", x, err)
	}
	return m, nil
}

// ToInt64 converts x to int64 using the spf13 rules.
func ToInt64(x any) (int64, error) {
	return spfcast.ToInt64E(x)
}

// IsBlank reports whether s is empty or whitespace only.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// ToString formats any value, mapping nil to the empty string.
func ToString(arg any) string {
	if arg == nil {
		return ""
	}
	return fmt.Sprintf("%v", arg)
}
