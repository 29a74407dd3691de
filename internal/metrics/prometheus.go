// Package metrics exposes Prometheus instrumentation for the mux actor's
// activity: commands decoded per protocol, amp translation outcomes,
// election switches/blocks, and endpoint reconnects.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds every Prometheus collector the mux registers.
type Metrics struct {
	CommandsDecodedTotal    *prometheus.CounterVec
	TranslationsTotal       *prometheus.CounterVec
	ElectionSwitchesTotal   prometheus.Counter
	ElectionBlocksTotal     prometheus.Counter
	EndpointReconnectsTotal *prometheus.CounterVec
	ConnectedRadios         prometheus.Gauge
}

// NewMetrics constructs and registers every collector.
func NewMetrics() *Metrics {
	m := &Metrics{
		CommandsDecodedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catmux_commands_decoded_total",
			Help: "The total number of normalized commands decoded, by protocol and kind",
		}, []string{"protocol", "kind"}),
		TranslationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catmux_translations_total",
			Help: "The total number of amplifier translations attempted, by outcome",
		}, []string{"outcome"}),
		ElectionSwitchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catmux_election_switches_total",
			Help: "The total number of times the active radio changed",
		}),
		ElectionBlocksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catmux_election_blocks_total",
			Help: "The total number of candidate switches blocked by the lockout window",
		}),
		EndpointReconnectsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catmux_endpoint_reconnects_total",
			Help: "The total number of endpoint reconnect attempts, by endpoint name",
		}, []string{"endpoint"}),
		ConnectedRadios: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "catmux_connected_radios",
			Help: "The current number of registered radios",
		}),
	}
	m.register()
	return m
}

func (m *Metrics) register() {
	prometheus.MustRegister(m.CommandsDecodedTotal)
	prometheus.MustRegister(m.TranslationsTotal)
	prometheus.MustRegister(m.ElectionSwitchesTotal)
	prometheus.MustRegister(m.ElectionBlocksTotal)
	prometheus.MustRegister(m.EndpointReconnectsTotal)
	prometheus.MustRegister(m.ConnectedRadios)
}

// RecordCommandDecoded records one normalized command decoded off a
// protocol's wire.
func (m *Metrics) RecordCommandDecoded(protocol, kind string) {
	m.CommandsDecodedTotal.WithLabelValues(protocol, kind).Inc()
}

// RecordTranslation records one amp translation attempt's outcome
// ("ok" or "error").
func (m *Metrics) RecordTranslation(outcome string) {
	m.TranslationsTotal.WithLabelValues(outcome).Inc()
}

// RecordElectionSwitch increments the active-radio-changed counter.
func (m *Metrics) RecordElectionSwitch() {
	m.ElectionSwitchesTotal.Inc()
}

// RecordElectionBlock increments the lockout-blocked counter.
func (m *Metrics) RecordElectionBlock() {
	m.ElectionBlocksTotal.Inc()
}

// RecordEndpointReconnect records one reconnect attempt for the named
// endpoint.
func (m *Metrics) RecordEndpointReconnect(endpoint string) {
	m.EndpointReconnectsTotal.WithLabelValues(endpoint).Inc()
}

// SetConnectedRadios sets the current registered-radio count.
func (m *Metrics) SetConnectedRadios(count float64) {
	m.ConnectedRadios.Set(count)
}
