package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	decisionsTotal  map[string]map[string]int64 // environment -> action -> count
	downgradesTotal map[string]map[string]int64 // environment -> proposed action -> count
	rejectionsTotal map[string]int64            // validation kind -> count

	// Gauges
	decisionLatency time.Duration
	wsClients       int
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the process-wide registry.
func Get() *Metrics {
	once.Do(func() {
		instance = New()
	})
	return instance
}

func New() *Metrics {
	return &Metrics{
		decisionsTotal:  make(map[string]map[string]int64),
		downgradesTotal: make(map[string]map[string]int64),
		rejectionsTotal: make(map[string]int64),
	}
}

func (m *Metrics) IncDecision(environment, action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	incNested(m.decisionsTotal, environment, action)
}

func (m *Metrics) IncDowngrade(environment, proposed string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	incNested(m.downgradesTotal, environment, proposed)
}

func (m *Metrics) IncRejection(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejectionsTotal[kind]++
}

func (m *Metrics) SetDecisionLatency(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisionLatency = d
}

func (m *Metrics) SetWebSocketClients(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wsClients = n
}

// DecisionCount returns the decisions recorded for environment and action.
func (m *Metrics) DecisionCount(environment, action string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.decisionsTotal[environment][action]
}

func (m *Metrics) DowngradeCount(environment, proposed string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.downgradesTotal[environment][proposed]
}

func (m *Metrics) RejectionCount(kind string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rejectionsTotal[kind]
}

func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		m.WriteTo(w)
	})
}

// WriteTo renders the registry in Prometheus text exposition format.
func (m *Metrics) WriteTo(w io.Writer) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var b strings.Builder

	writeHeader(&b, "brain_decisions_total", "counter", "Decisions emitted by environment and action.")
	for _, env := range sortedKeys(m.decisionsTotal) {
		for _, action := range sortedKeys(m.decisionsTotal[env]) {
			writeMetric(&b, "brain_decisions_total", [][2]string{{"environment", env}, {"action", action}}, float64(m.decisionsTotal[env][action]))
		}
	}

	writeHeader(&b, "brain_safety_downgrades_total", "counter", "Proposed actions replaced by noop.")
	for _, env := range sortedKeys(m.downgradesTotal) {
		for _, proposed := range sortedKeys(m.downgradesTotal[env]) {
			writeMetric(&b, "brain_safety_downgrades_total", [][2]string{{"environment", env}, {"proposed_action", proposed}}, float64(m.downgradesTotal[env][proposed]))
		}
	}

	writeHeader(&b, "brain_rejected_requests_total", "counter", "Requests answered with noop before lookup.")
	for _, kind := range sortedKeys(m.rejectionsTotal) {
		writeMetric(&b, "brain_rejected_requests_total", [][2]string{{"kind", kind}}, float64(m.rejectionsTotal[kind]))
	}

	writeHeader(&b, "brain_decision_latency_seconds", "gauge", "Latency of the most recent decision.")
	writeMetric(&b, "brain_decision_latency_seconds", nil, m.decisionLatency.Seconds())

	writeHeader(&b, "brain_websocket_clients", "gauge", "Connected decision stream clients.")
	writeMetric(&b, "brain_websocket_clients", nil, float64(m.wsClients))

	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

func incNested(counter map[string]map[string]int64, outer, inner string) {
	if counter[outer] == nil {
		counter[outer] = make(map[string]int64)
	}
	counter[outer][inner]++
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeHeader(b *strings.Builder, name, kind, help string) {
	fmt.Fprintf(b, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
}

func writeMetric(b *strings.Builder, name string, labels [][2]string, value float64) {
	b.WriteString(name)
	if len(labels) > 0 {
		b.WriteByte('{')
		for i, l := range labels {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(l[0] + `="` + escapeLabel(l[1]) + `"`)
		}
		b.WriteByte('}')
	}
	b.WriteString(" " + strconv.FormatFloat(value, 'f', -1, 64) + "\n")
}

func escapeLabel(v string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(v)
}
