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

package cmd

import "github.com/spf13/cobra"

var saveCmd = &cobra.Command{
	Use:   "save <file>",
	Short: "write a JSON snapshot of the bunch tree and list to file",
	Long: "save exports this replica's full state so it can be shipped " +
		"to another replica by any means the caller likes (copy the " +
		"file, pipe it over ssh); poslist itself never transmits it.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession()
		if err != nil {
			return err
		}
		defer session.Close()

		return session.SaveToFile(args[0])
	},
}

var loadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "replace the bunch tree and list with a snapshot from file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession()
		if err != nil {
			return err
		}
		defer session.Close()

		return session.LoadFromFile(args[0])
	},
}
