/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Tabula Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/google/tabula/core/config"
	"github.com/google/tabula/core/views"
	"github.com/google/tabula/datasources"
	"github.com/google/tabula/demo"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath  string
	dataPath    string
	columnsPath string
	verbose     bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:           "tabula",
		Short:         "Filter, sort, group and page a dataset from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&g.configPath, "config", "", "Config file (yaml, toml or json)")
	rootCmd.PersistentFlags().StringVar(&g.dataPath, "data", "", "Dataset file (.json or .csv); the bundled products sample when empty")
	rootCmd.PersistentFlags().StringVar(&g.columnsPath, "columns", "", "Column descriptor file (.yaml), required with --data")
	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Log at debug level")

	rootCmd.AddCommand(newViewCmd(g), newColumnsCmd(g), newFacetsCmd(g))
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newController loads the config and the dataset named by the global flags.
func (g *globalFlags) newController() (*views.Controller, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	if g.verbose {
		cfg.LogLevel = "debug"
	}
	log := cfg.Logger()
	opts := cfg.Options(log)

	if g.dataPath == "" {
		log.Debug("using bundled products sample")
		return demo.NewProductsController(opts)
	}
	return loadController(g.dataPath, g.columnsPath, opts, log)
}

func loadController(dataPath, columnsPath string, opts views.Options, log *slog.Logger) (*views.Controller, error) {
	if columnsPath == "" {
		return nil, fmt.Errorf("--columns is required with --data")
	}
	descs, err := datasources.LoadColumns(columnsPath)
	if err != nil {
		return nil, err
	}
	sourceType, err := datasources.SourceTypeForPath(dataPath)
	if err != nil {
		return nil, err
	}

	manager := datasources.NewManager()
	manager.AddSource(&datasources.Source{
		Name:       "data",
		SourceType: sourceType,
		Config:     map[string]string{"file_path": dataPath},
	})
	ds, err := manager.LoadData("data")
	if err != nil {
		return nil, err
	}
	log.Debug("dataset loaded", "path", dataPath, "type", sourceType, "records", ds.Length())

	c := views.NewController(opts)
	if err := c.ConfigureColumns(descs); err != nil {
		return nil, err
	}
	if err := c.SetDataset(ds); err != nil {
		return nil, err
	}
	return c, nil
}
