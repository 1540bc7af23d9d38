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

	"github.com/spf13/cobra"

	"github.com/rulego/streamudf/functions"
	"github.com/rulego/streamudf/utils/table"
)

type explodeCommandeer struct {
	cmd            *cobra.Command
	rootCommandeer *RootCommandeer
	asJSON         bool
}

func newExplodeCommandeer(rootCommandeer *RootCommandeer) *explodeCommandeer {
	commandeer := &explodeCommandeer{
		rootCommandeer: rootCommandeer,
	}

	cmd := &cobra.Command{
		Use:     "explode function [args...]",
		Short:   "Run a table function and print the rows it emits",
		Example: `  streamudf explode text_extractor "Hello, stream world"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootCommandeer.initialize(); err != nil {
				return err
			}
			defer rootCommandeer.close()

			name := args[0]
			fn, ok := rootCommandeer.runtime.Registry().Get(name)
			if !ok {
				return fmt.Errorf("%w: %s", functions.ErrFunctionNotFound, name)
			}
			tf, ok := fn.(functions.TableFunction)
			if !ok {
				return fmt.Errorf("%w: %s", functions.ErrNotTableFunction, name)
			}

			callArgs := make([]interface{}, len(args)-1)
			for i, arg := range args[1:] {
				callArgs[i] = arg
			}
			rows, err := rootCommandeer.runtime.Explode(name, callArgs...)
			if err != nil {
				return err
			}

			resultType := tf.ResultType()
			maps := make([]map[string]interface{}, len(rows))
			for i, row := range rows {
				maps[i] = resultType.ToMap(row)
			}

			if commandeer.asJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				for _, m := range maps {
					if err := encoder.Encode(m); err != nil {
						return err
					}
				}
				return nil
			}
			if len(maps) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "(0 rows)")
				return nil
			}
			table.Write(cmd.OutOrStdout(), maps, resultType.Names())
			return nil
		},
	}

	cmd.Flags().BoolVar(&commandeer.asJSON, "json", false, "Print one JSON object per row")

	commandeer.cmd = cmd

	return commandeer
}
