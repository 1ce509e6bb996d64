package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hh_hire_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	SyncDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hh_hire_sync_duration_seconds",
			Help:    "Duration of each synchronization run in seconds.",
			Buckets: []float64{5, 30, 60, 300, 900, 1800},
		},
		[]string{"scope"},
	)
	SyncedVacanciesCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hh_hire_vacancies_synced_total",
			Help: "Total number of vacancies processed by synchronization, by outcome.",
		},
		[]string{"result"},
	)
	ImportedResponsesCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hh_hire_responses_imported_total",
			Help: "Total number of new responses turned into issues.",
		},
	)
	RefusalsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hh_hire_refusals_total",
			Help: "Total number of refusal attempts, by result.",
		},
		[]string{"result"},
	)
	JournalConflictsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hh_hire_journal_conflicts_total",
			Help: "Total number of optimistic lock conflicts while recording refusal outcomes.",
		},
	)
	TokenReissuesCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hh_hire_token_reissues_total",
			Help: "Total number of hh oauth token reissues.",
		},
	)
	HhRequestDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "hh_hire_hh_request_duration_seconds",
			Help:       "Duration of hh api requests.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"method"},
	)
)

func Register() {
	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(SyncDuration)
	prometheus.MustRegister(SyncedVacanciesCounter)
	prometheus.MustRegister(ImportedResponsesCounter)
	prometheus.MustRegister(RefusalsCounter)
	prometheus.MustRegister(JournalConflictsCounter)
	prometheus.MustRegister(TokenReissuesCounter)
	prometheus.MustRegister(HhRequestDuration)
}

func Handler() http.Handler {
	return promhttp.Handler()
}
