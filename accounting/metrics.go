package accounting

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Metrics counts what the engine does. A nil *Metrics records nothing.
type Metrics struct {
	TransactionsTotal *prometheus.CounterVec
	IssuesTotal       *prometheus.CounterVec
	DisposalsTotal    prometheus.Counter
	LotsOpened        *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with registry.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		TransactionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taxlots_transactions_total",
				Help: "Transactions applied, by shape.",
			},
			[]string{"kind"},
		),
		IssuesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taxlots_issues_total",
				Help: "Recoverable per-transaction errors.",
			},
			[]string{"type"},
		),
		DisposalsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "taxlots_disposals_total",
				Help: "Lot slices consumed by sales.",
			},
		),
		LotsOpened: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taxlots_lots_opened_total",
				Help: "Cost-basis lots opened, by asset.",
			},
			[]string{"asset"},
		),
	}

	registry.MustRegister(
		m.TransactionsTotal,
		m.IssuesTotal,
		m.DisposalsTotal,
		m.LotsOpened,
	)
	return m
}

func (m *Metrics) incTransaction(k Kind) {
	if m == nil {
		return
	}
	m.TransactionsTotal.WithLabelValues(string(k)).Inc()
}

func (m *Metrics) incIssue(typ string) {
	if m == nil {
		return
	}
	m.IssuesTotal.WithLabelValues(typ).Inc()
}

func (m *Metrics) incDisposal() {
	if m == nil {
		return
	}
	m.DisposalsTotal.Inc()
}

func (m *Metrics) incLot(asset string) {
	if m == nil {
		return
	}
	m.LotsOpened.WithLabelValues(asset).Inc()
}

// WriteText dumps every metric in registry in the prometheus text format.
func WriteText(w io.Writer, registry *prometheus.Registry) error {
	mfs, err := registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
