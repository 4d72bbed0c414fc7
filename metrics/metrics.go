// Package metrics exposes Prometheus counters for the turn loop.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "grow"

// Metrics holds the turn loop counters. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	Turns    prometheus.Counter
	Unknown  prometheus.Counter
	Actions  *prometheus.CounterVec
	GameOver prometheus.Counter
	Faults   prometheus.Counter
}

// New creates the counters and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Turns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Input lines processed by the turn loop.",
		}),
		Unknown: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unknown_input_total",
			Help:      "Input lines that matched no rule.",
		}),
		Actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Actions executed, by kind.",
		}, []string{"kind"}),
		GameOver: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_over_total",
			Help:      "Sessions that reached the terminal state.",
		}),
		Faults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "faults_total",
			Help:      "Unexpected faults that halted a session.",
		}),
	}
	reg.MustRegister(m.Turns, m.Unknown, m.Actions, m.GameOver, m.Faults)
	return m
}

// Turn records a processed input line.
func (m *Metrics) Turn() {
	if m != nil {
		m.Turns.Inc()
	}
}

// UnknownInput records a line that matched nothing.
func (m *Metrics) UnknownInput() {
	if m != nil {
		m.Unknown.Inc()
	}
}

// Action records an executed action of the given kind.
func (m *Metrics) Action(kind string) {
	if m != nil {
		m.Actions.WithLabelValues(kind).Inc()
	}
}

// Over records a session ending normally.
func (m *Metrics) Over() {
	if m != nil {
		m.GameOver.Inc()
	}
}

// Fault records a session halting on an unexpected fault.
func (m *Metrics) Fault() {
	if m != nil {
		m.Faults.Inc()
	}
}

// Write prints every counter gathered from g, one "name{labels} value" line
// per sample, sorted by name.
func Write(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if m.GetCounter() == nil {
				continue
			}
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			lines = append(lines, fmt.Sprintf("%s %g", name, m.GetCounter().GetValue()))
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
