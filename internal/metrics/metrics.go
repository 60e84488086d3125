package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Remote fetch outcomes
const (
	OutcomeFound       = "found"
	OutcomeNotFound    = "not_found"
	OutcomeUnreachable = "unreachable"
	OutcomeEmpty       = "empty"
	OutcomeInvalid     = "invalid"
	OutcomeServerError = "server_error"
)

var (
	RemoteFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dictionary_remote_fetch_total",
			Help: "Total number of word lookups sent to the remote service by outcome",
		},
		[]string{"outcome"},
	)

	WordsAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dictionary_words_added_total",
			Help: "Total number of words created from remote lookups",
		},
	)
)
