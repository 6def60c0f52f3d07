package filtertree

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "filtertree"

// Edit results used as the "result" label.
const (
	resultOK      = "ok"
	resultStale   = "stale"
	resultInvalid = "invalid"
	resultError   = "error"
)

// editorMetrics holds the collectors of an editor. A nil *editorMetrics
// records nothing.
type editorMetrics struct {
	edits  *prometheus.CounterVec
	pruned prometheus.Counter
}

func newEditorMetrics(reg prometheus.Registerer) (*editorMetrics, error) {
	if reg == nil {
		return nil, nil
	}

	edits := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "edits_total",
			Help:      "Total edits by kind and result",
		},
		[]string{"kind", "result"},
	)
	pruned := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "pruned_groups_total",
			Help:      "Total empty groups removed after edits",
		},
	)

	var err error
	if edits, err = register(reg, edits); err != nil {
		return nil, err
	}
	if pruned, err = register(reg, pruned); err != nil {
		return nil, err
	}
	return &editorMetrics{edits: edits, pruned: pruned}, nil
}

// register registers c, returning the collector already registered under
// the same description if there is one.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *editorMetrics) edit(kind, result string) {
	if m == nil {
		return
	}
	m.edits.WithLabelValues(kind, result).Inc()
}

func (m *editorMetrics) prunedGroups(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.pruned.Add(float64(n))
}
