package observability

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danmuck/focusctl/internal/protocol/flow"
)

var (
	registerOnce sync.Once

	flowTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "focusctl",
			Subsystem: "flow",
			Name:      "transitions_total",
			Help:      "XON/XOFF transitions signalled to the host.",
		},
		[]string{"device", "state"},
	)
	bytesSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "focusctl",
			Subsystem: "tx",
			Name:      "bytes_total",
			Help:      "Paced response bytes transmitted.",
		},
		[]string{"device"},
	)
	tokensRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "focusctl",
			Subsystem: "rx",
			Name:      "tokens_rejected_total",
			Help:      "Inbound tokens rejected for exceeding the line capacity.",
		},
		[]string{"device"},
	)
	commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "focusctl",
			Subsystem: "dispatch",
			Name:      "commands_total",
			Help:      "Commands dispatched to plugins.",
		},
		[]string{"device", "handled"},
	)
	rxDropped = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "focusctl",
			Subsystem: "rx",
			Name:      "dropped_bytes",
			Help:      "Bytes lost to receive buffer overrun.",
		},
		[]string{"device"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(flowTransitions, bytesSent, tokensRejected, commands, rxDropped)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	RegisterMetrics()
	return promhttp.Handler()
}

// Recorder reports engine and dispatcher events for one device.
type Recorder struct {
	device string
}

func NewRecorder(device string) *Recorder {
	RegisterMetrics()
	return &Recorder{device: device}
}

func (r *Recorder) FlowTransition(state flow.State) {
	flowTransitions.WithLabelValues(r.device, state.String()).Inc()
}

func (r *Recorder) BytesSent(n int) {
	bytesSent.WithLabelValues(r.device).Add(float64(n))
}

func (r *Recorder) TokenRejected() {
	tokensRejected.WithLabelValues(r.device).Inc()
}

// Command records one dispatched command line.
func (r *Recorder) Command(handled bool) {
	commands.WithLabelValues(r.device, strconv.FormatBool(handled)).Inc()
}

// RxDropped publishes the transport's overrun count.
func (r *Recorder) RxDropped(n uint64) {
	rxDropped.WithLabelValues(r.device).Set(float64(n))
}
