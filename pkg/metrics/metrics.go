/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	Namespace = "polhemus"

	ResultOk    = "ok"
	ResultError = "error"
)

// NewRegistry creates a registry with the go runtime and process collectors
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// Metrics are the tracker link counters, labeled by device name
type Metrics struct {
	FramesReceived   *prometheus.CounterVec // labels: device, kind
	ChecksumErrors   *prometheus.CounterVec // labels: device
	DecodeErrors     *prometheus.CounterVec // labels: device
	CommandsSent     *prometheus.CounterVec // labels: device, cmd
	CommandResults   *prometheus.CounterVec // labels: device, result
	SensorsDetected  *prometheus.GaugeVec   // labels: device
	SensorsEnabled   *prometheus.GaugeVec   // labels: device
	PosesPublished   *prometheus.CounterVec // labels: device
	PosesRateLimited *prometheus.CounterVec // labels: device
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FramesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "frames_received_total",
			Help:      "Frames received from the tracker by kind.",
		}, []string{"device", "kind"}),
		ChecksumErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "checksum_errors_total",
			Help:      "Frames dropped because of a checksum mismatch.",
		}, []string{"device"}),
		DecodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "decode_errors_total",
			Help:      "Frames that could not be decoded.",
		}, []string{"device"}),
		CommandsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "commands_sent_total",
			Help:      "Commands sent to the tracker.",
		}, []string{"device", "cmd"}),
		CommandResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "command_results_total",
			Help:      "Command exchanges by result.",
		}, []string{"device", "result"}),
		SensorsDetected: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "sensors_detected",
			Help:      "Sensors reported by the last station map.",
		}, []string{"device"}),
		SensorsEnabled: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "sensors_enabled",
			Help:      "Sensors enabled in the session station map.",
		}, []string{"device"}),
		PosesPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "poses_published_total",
			Help:      "Sensor poses published to the broker.",
		}, []string{"device"}),
		PosesRateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "poses_rate_limited_total",
			Help:      "PNO frames skipped by the publish rate limit.",
		}, []string{"device"}),
	}
	reg.MustRegister(m.FramesReceived, m.ChecksumErrors, m.DecodeErrors, m.CommandsSent,
		m.CommandResults, m.SensorsDetected, m.SensorsEnabled, m.PosesPublished, m.PosesRateLimited)
	return m
}

// ObserveStationMap updates the sensor gauges of a device
func (m *Metrics) ObserveStationMap(device string, detected, enabled int) {
	m.SensorsDetected.WithLabelValues(device).Set(float64(detected))
	m.SensorsEnabled.WithLabelValues(device).Set(float64(enabled))
}
