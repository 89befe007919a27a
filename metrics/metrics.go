/*
   Copyright 2018 Banco Bilbao Vizcaya Argentaria, S.A.

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

// Package metrics declares the prometheus collectors a running replica
// exposes: how many bunches it has minted or received, how receive
// batches were resolved, and how list mutations and comparisons are
// paced.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ORDER

	BunchesCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "poslist_bunches_created_total",
			Help: "Number of bunches minted locally by CreatePosition.",
		},
	)

	ReceiveBatchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "poslist_receive_batches_total",
			Help: "Number of batches passed to Order.Receive.",
		},
	)

	ReceiveRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poslist_receive_rejected_total",
			Help: "Number of Order.Receive calls rejected, by reason.",
		},
		[]string{"reason"},
	)

	CompareDurationSeconds = prometheus.NewSummary(
		prometheus.SummaryOpts{
			Name: "poslist_compare_duration_seconds",
			Help: "Duration of Order.Compare calls.",
		},
	)

	// POSLIST

	ListMutationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poslist_list_mutations_total",
			Help: "Number of List/Outline mutations, by kind (insert, delete).",
		},
		[]string{"kind"},
	)

	// POSSOURCE

	PositionsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "poslist_possource_positions_created_total",
			Help: "Number of positions minted by a PositionSource.",
		},
	)

	metricsList = []prometheus.Collector{
		BunchesCreatedTotal,
		ReceiveBatchesTotal,
		ReceiveRejectedTotal,
		CompareDurationSeconds,
		ListMutationsTotal,
		PositionsCreatedTotal,
	}

	registerMetrics sync.Once
)

// Register registers every collector declared here with r. It is safe
// to call more than once; only the first call has any effect.
func Register(r *prometheus.Registry) {
	registerMetrics.Do(func() {
		for _, metric := range metricsList {
			r.MustRegister(metric)
		}
	})
}
