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

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/rulego/streamudf/functions"
	"github.com/rulego/streamudf/utils/table"
)

type functionsCommandeer struct {
	cmd            *cobra.Command
	rootCommandeer *RootCommandeer
	asJSON         bool
	functionType   string
}

func newFunctionsCommandeer(rootCommandeer *RootCommandeer) *functionsCommandeer {
	commandeer := &functionsCommandeer{
		rootCommandeer: rootCommandeer,
	}

	cmd := &cobra.Command{
		Use:     "functions",
		Aliases: []string{"fn"},
		Short:   "List the registered functions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := rootCommandeer.initialize(); err != nil {
				return err
			}
			defer rootCommandeer.close()

			descriptors := rootCommandeer.runtime.Functions()
			if commandeer.functionType != "" {
				descriptors = filterByType(descriptors, functions.FunctionType(commandeer.functionType))
			}

			if commandeer.asJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(descriptors)
			}

			rows := make([]map[string]interface{}, len(descriptors))
			for i, d := range descriptors {
				rows[i] = map[string]interface{}{
					"name":        d.Name,
					"alias of":    d.Alias,
					"type":        d.Type,
					"category":    d.Category,
					"args":        argRange(d.MinArgs, d.MaxArgs),
					"result":      d.Result,
					"description": d.Description,
				}
			}
			table.Write(cmd.OutOrStdout(), rows,
				[]string{"name", "alias of", "type", "category", "args", "result", "description"})
			return nil
		},
	}

	cmd.Flags().BoolVar(&commandeer.asJSON, "json", false, "Print the functions as JSON")
	cmd.Flags().StringVarP(&commandeer.functionType, "type", "t", "", "Only list one type - scalar / aggregation / table / custom")

	commandeer.cmd = cmd

	return commandeer
}

func filterByType(descriptors []functions.Descriptor, fnType functions.FunctionType) []functions.Descriptor {
	return lo.Filter(descriptors, func(d functions.Descriptor, _ int) bool {
		return d.Type == fnType
	})
}

func argRange(minArgs, maxArgs int) string {
	switch {
	case maxArgs < 0:
		return fmt.Sprintf("%d+", minArgs)
	case minArgs == maxArgs:
		return fmt.Sprintf("%d", minArgs)
	default:
		return fmt.Sprintf("%d-%d", minArgs, maxArgs)
	}
}
