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

package pno

import (
	"context"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/time/rate"

	"jinr.ru/greenlab/go-polhemus/pkg/config"
	"jinr.ru/greenlab/go-polhemus/pkg/log"
	"jinr.ru/greenlab/go-polhemus/pkg/metrics"
)

const (
	PublishTimeout = time.Second
	QoS            = 0
)

// Topic returns the topic the poses of one sensor are published to
func Topic(prefix, device string, sensor uint8) string {
	return fmt.Sprintf("%s/%s/sensor/%d", prefix, device, sensor)
}

type sendFunc func(topic string, payload []byte) error

// Publisher sends decoded poses to an MQTT broker, one message per sensor.
// Frames above the configured rate are skipped per device.
type Publisher struct {
	client  paho.Client
	send    sendFunc
	prefix  string
	rate    float64
	metrics *metrics.Metrics

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewPublisher(cfg *config.MqttConfig, m *metrics.Metrics) *Publisher {
	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)
	p := newPublisher(cfg, m)
	p.client = paho.NewClient(opts)
	p.send = p.publishMqtt
	return p
}

func newPublisher(cfg *config.MqttConfig, m *metrics.Metrics) *Publisher {
	prefix := cfg.TopicPrefix
	if prefix == "" {
		prefix = config.DefaultMqttTopicPrefix
	}
	return &Publisher{
		prefix:   prefix,
		rate:     cfg.Rate,
		metrics:  m,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Connect waits for the broker connection until ctx is done
func (p *Publisher) Connect(ctx context.Context) error {
	log.Info("Connecting to MQTT broker")
	token := p.client.Connect()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-waitToken(token):
	}
	return token.Error()
}

func waitToken(token paho.Token) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		token.Wait()
		close(done)
	}()
	return done
}

func (p *Publisher) Close() {
	if p.client != nil {
		p.client.Disconnect(250)
	}
}

func (p *Publisher) limiter(device string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.limiters[device]
	if !ok {
		limit := rate.Inf
		if p.rate > 0 {
			limit = rate.Limit(p.rate)
		}
		l = rate.NewLimiter(limit, 1)
		p.limiters[device] = l
	}
	return l
}

// Publish sends every pose of the frame unless the device is over its rate.
// It returns false if the frame was skipped.
func (p *Publisher) Publish(frame *Frame) (bool, error) {
	if !p.limiter(frame.Device).Allow() {
		p.metrics.PosesRateLimited.WithLabelValues(frame.Device).Inc()
		return false, nil
	}
	for _, pose := range frame.Poses {
		data, err := msgpack.Marshal(&SensorMessage{
			Device:       frame.Device,
			FrameCounter: frame.FrameCounter,
			Timestamp:    frame.Timestamp,
			Pose:         pose,
		})
		if err != nil {
			return true, err
		}
		if err := p.send(Topic(p.prefix, frame.Device, pose.Sensor), data); err != nil {
			log.Error("Error while publishing pose: device: %s sensor: %d: %s", frame.Device, pose.Sensor, err)
			return true, err
		}
		p.metrics.PosesPublished.WithLabelValues(frame.Device).Inc()
	}
	return true, nil
}

func (p *Publisher) publishMqtt(topic string, payload []byte) error {
	token := p.client.Publish(topic, QoS, false, payload)
	if !token.WaitTimeout(PublishTimeout) {
		return ErrPublishTimeout{Topic: topic}
	}
	return token.Error()
}

// ErrPublishTimeout returned when the broker does not confirm a publish in time
type ErrPublishTimeout struct {
	Topic string
}

func (e ErrPublishTimeout) Error() string {
	return fmt.Sprintf("Timeout while publishing to %s", e.Topic)
}
