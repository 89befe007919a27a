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

// Package cli implements a local, single-replica command line tool over
// the order/poslist/store stack: no network transport, no cluster
// membership, just one replica's view of one list persisted to disk
// between invocations.
package cli

import (
	"fmt"
	"path/filepath"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// BackendBadger and BackendBTree name the two storage.Store
// implementations Open knows how to build.
const (
	BackendBadger = "badger"
	BackendBTree  = "btree"
)

// Config holds everything Open needs to build a Session. It is
// populated by viper from flags and environment variables (POSLIST_*),
// in that precedence order. No config file is read.
type Config struct {
	ReplicaID string `mapstructure:"replica-id"`
	Backend   string `mapstructure:"backend"`
	Path      string `mapstructure:"path"`
	LogLevel  string `mapstructure:"log-level"`
}

// LoadConfig reads v into a Config, resolving Path to an absolute
// default under the user's home directory when it was left empty.
func LoadConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("cli: reading config: %w", err)
	}
	if cfg.Path == "" {
		home, err := homedir.Dir()
		if err != nil {
			return Config{}, fmt.Errorf("cli: resolving home directory: %w", err)
		}
		cfg.Path = filepath.Join(home, ".poslist")
	}
	if cfg.Backend == "" {
		cfg.Backend = BackendBTree
	}
	if cfg.ReplicaID == "" {
		cfg.ReplicaID = "default"
	}
	return cfg, nil
}
