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

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var insertCmd = &cobra.Command{
	Use:   "insert <index> <value>",
	Short: "insert a value at index, shifting later elements right",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("cmd: invalid index %q: %w", args[0], err)
		}

		session, err := openSession()
		if err != nil {
			return err
		}
		defer session.Close()

		pos, err := session.Insert(index, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "inserted at bunch=%s inner_index=%d\n", pos.BunchID, pos.InnerIndex)
		return nil
	},
}
