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

// Package table renders rows as a bordered text table for the command line.
package table

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
)

// Columns returns the column names of data: the names in fieldOrder that
// occur in data first, then the others sorted.
func Columns(data []map[string]interface{}, fieldOrder []string) []string {
	present := make(map[string]bool)
	for _, row := range data {
		for col := range row {
			present[col] = true
		}
	}
	columns := lo.Filter(lo.Uniq(fieldOrder), func(col string, _ int) bool {
		return present[col]
	})
	rest := lo.Without(lo.Keys(present), columns...)
	sort.Strings(rest)
	return append(columns, rest...)
}

// Write renders data to w followed by a row count. Nothing is written for empty data.
func Write(w io.Writer, data []map[string]interface{}, fieldOrder []string) {
	if len(data) == 0 {
		return
	}
	columns := Columns(data, fieldOrder)

	cells := make([][]string, len(data))
	widths := make([]int, len(columns))
	for i, col := range columns {
		// minimum width is 4
		widths[i] = max(4, utf8.RuneCountInString(col))
	}
	for r, row := range data {
		cells[r] = make([]string, len(columns))
		for i, col := range columns {
			if v, ok := row[col]; ok && v != nil {
				cells[r][i] = fmt.Sprintf("%v", v)
			}
			widths[i] = max(widths[i], utf8.RuneCountInString(cells[r][i]))
		}
	}

	border := borderLine(widths)
	fmt.Fprintln(w, border)
	writeLine(w, columns, widths)
	fmt.Fprintln(w, border)
	for _, line := range cells {
		writeLine(w, line, widths)
	}
	fmt.Fprintln(w, border)
	fmt.Fprintf(w, "(%d rows)\n", len(data))
}

func borderLine(widths []int) string {
	var b strings.Builder
	b.WriteString("+")
	for _, width := range widths {
		b.WriteString(strings.Repeat("-", width+2))
		b.WriteString("+")
	}
	return b.String()
}

func writeLine(w io.Writer, values []string, widths []int) {
	var b strings.Builder
	b.WriteString("|")
	for i, v := range values {
		b.WriteString(" ")
		b.WriteString(v)
		b.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(v)))
		b.WriteString(" |")
	}
	fmt.Fprintln(w, b.String())
}
