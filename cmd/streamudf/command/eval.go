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
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type evalCommandeer struct {
	cmd            *cobra.Command
	rootCommandeer *RootCommandeer
	data           string
}

func newEvalCommandeer(rootCommandeer *RootCommandeer) *evalCommandeer {
	commandeer := &evalCommandeer{
		rootCommandeer: rootCommandeer,
	}

	cmd := &cobra.Command{
		Use:   "eval expression",
		Short: "Evaluate an expression against a JSON record",
		Example: `  streamudf eval "rename_json_field(doc, 'a', 'b')" --data '{"doc":"{\"a\":1}"}'
  streamudf eval "tshirt_sizing_is_smaller('S', 'M')"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var record map[string]interface{}
			if commandeer.data != "" {
				if err := json.Unmarshal([]byte(commandeer.data), &record); err != nil {
					return fmt.Errorf("invalid --data: %w", err)
				}
			}

			if err := rootCommandeer.initialize(); err != nil {
				return err
			}
			defer rootCommandeer.close()

			result, err := rootCommandeer.runtime.Eval(args[0], record)
			if err != nil {
				return err
			}
			return printValue(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVarP(&commandeer.data, "data", "d", "", "JSON object the expression is evaluated against")

	commandeer.cmd = cmd

	return commandeer
}

// printValue prints strings as they are and everything else as JSON; byte
// slices come out base64 encoded.
func printValue(w io.Writer, value interface{}) error {
	if s, ok := value.(string); ok {
		_, err := fmt.Fprintln(w, s)
		return err
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(encoded))
	return err
}
