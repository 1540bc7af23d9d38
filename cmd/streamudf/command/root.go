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

// Package command implements the streamudf command line.
package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rulego/streamudf"
	"github.com/rulego/streamudf/logger"
	"github.com/rulego/streamudf/types"
)

type RootCommandeer struct {
	cmd        *cobra.Command
	configPath string
	verbose    bool

	config  *types.Config
	runtime *streamudf.Runtime
}

func NewRootCommandeer() *RootCommandeer {
	commandeer := &RootCommandeer{}

	cmd := &cobra.Command{
		Use:           "streamudf [command]",
		Short:         "Run and inspect stream UDFs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&commandeer.configPath, "config", "c", "", "Path to a YAML configuration file")
	cmd.PersistentFlags().BoolVarP(&commandeer.verbose, "verbose", "v", false, "Verbose output")

	// add children
	cmd.AddCommand(
		newFunctionsCommandeer(commandeer).cmd,
		newEvalCommandeer(commandeer).cmd,
		newRunCommandeer(commandeer).cmd,
		newExplodeCommandeer(commandeer).cmd,
	)

	commandeer.cmd = cmd

	return commandeer
}

// Execute uses os.Args to execute the command
func (rc *RootCommandeer) Execute() error {
	return rc.cmd.Execute()
}

// GetCmd returns the underlying cobra command
func (rc *RootCommandeer) GetCmd() *cobra.Command {
	return rc.cmd
}

func (rc *RootCommandeer) initialize(options ...streamudf.Option) error {
	var runtimeOptions []streamudf.Option

	if rc.configPath != "" {
		config, err := types.LoadConfig(rc.configPath)
		if err != nil {
			return err
		}
		rc.config = config
		runtimeOptions = append(runtimeOptions, streamudf.WithConfig(config))
	} else {
		runtimeOptions = append(runtimeOptions, streamudf.WithLogOutput(rc.cmd.ErrOrStderr(), logger.INFO))
	}
	if rc.verbose {
		runtimeOptions = append(runtimeOptions, streamudf.WithLogLevel(logger.DEBUG))
	}

	runtime, err := streamudf.New(append(runtimeOptions, options...)...)
	if err != nil {
		return fmt.Errorf("failed to create runtime: %w", err)
	}
	rc.runtime = runtime

	logger.Debug("Runtime created with %d functions", len(runtime.Functions()))
	return nil
}

func (rc *RootCommandeer) close() {
	if rc.runtime != nil {
		if err := rc.runtime.Close(); err != nil {
			fmt.Fprintln(rc.cmd.ErrOrStderr(), err)
		}
	}
}
