/*
   Copyright 2018-2019 Banco Bilbao Vizcaya Argentaria, S.A.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package cmd implements the poslist command line tool: local,
// single-replica inspection and mutation of one list backed by
// storage.Store. It is not a server and opens no network listener.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/poslist/poslist/build"
	"github.com/poslist/poslist/cli"
)

var v = viper.New()

// Root is the poslist command line tool's entry point.
var Root = &cobra.Command{
	Use:   "poslist",
	Short: "poslist is a local client for a collaborative list CRDT",
	Long: "poslist operates on one replica's local storage at a time: " +
		"it mutates the list in place and, for moving state between " +
		"replicas, exports and imports snapshot files via save/load. " +
		"It never talks to another replica over the network.",
	SilenceUsage: true,
}

func init() {
	Root.PersistentFlags().String("replica-id", "", "this replica's id, used to mint bunch ids (default \"default\")")
	Root.PersistentFlags().String("backend", "", "storage backend: btree (in-memory, default) or badger (durable)")
	Root.PersistentFlags().String("path", "", "storage directory for the badger backend (default ~/.poslist)")
	Root.PersistentFlags().String("log-level", "error", "log level: silent, error, info, debug")

	v.BindPFlag("replica-id", Root.PersistentFlags().Lookup("replica-id"))
	v.BindPFlag("backend", Root.PersistentFlags().Lookup("backend"))
	v.BindPFlag("path", Root.PersistentFlags().Lookup("path"))
	v.BindPFlag("log-level", Root.PersistentFlags().Lookup("log-level"))
	v.SetEnvPrefix("POSLIST")
	v.AutomaticEnv()

	Root.AddCommand(insertCmd, deleteCmd, lsCmd, saveCmd, loadCmd, versionCmd)
}

// openSession builds a cli.Session from the process-wide flags/env,
// used by every subcommand that touches the list.
func openSession() (*cli.Session, error) {
	cfg, err := cli.LoadConfig(v)
	if err != nil {
		return nil, err
	}
	return cli.Open(cfg)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), build.GetInfo().Short())
		return nil
	},
}

// Execute runs Root and exits the process with a non-zero status on
// error, matching the teacher's main.go convention.
func Execute() {
	if err := Root.Execute(); err != nil {
		os.Exit(1)
	}
}
