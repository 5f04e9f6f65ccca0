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
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"jinr.ru/greenlab/go-polhemus/pkg/config"
	"jinr.ru/greenlab/go-polhemus/pkg/layers"
	"jinr.ru/greenlab/go-polhemus/pkg/metrics"
)

type sent struct {
	topic   string
	payload []byte
}

func testPublisher(rate float64) (*Publisher, *[]sent) {
	var out []sent
	p := newPublisher(&config.MqttConfig{TopicPrefix: "lab", Rate: rate}, metrics.NewMetrics(prometheus.NewRegistry()))
	p.send = func(topic string, payload []byte) error {
		out = append(out, sent{topic: topic, payload: payload})
		return nil
	}
	return p, &out
}

func testFrame() *Frame {
	records := []layers.SensorRecord{
		{
			Info:        layers.NewSensorInfo(0, false, layers.PosCm, layers.OriQuaternion, true, false, 3, 0),
			Position:    [3]float32{1, 2, 3},
			Orientation: [4]float32{1, 0, 0, 0},
		},
		{
			Info:     layers.NewSensorInfo(2, false, layers.PosCm, layers.OriQuaternion, false, false, 0, 0),
			Position: [3]float32{-1, -2, -3},
		},
	}
	return NewFrame("viper", 7, time.Unix(1700000000, 0).UTC(), records)
}

func TestTopic(t *testing.T) {
	require.Equal(t, "polhemus/viper/sensor/3", Topic("polhemus", "viper", 3))
}

func TestPublishPerSensor(t *testing.T) {
	p, out := testPublisher(0)
	published, err := p.Publish(testFrame())
	require.NoError(t, err)
	require.True(t, published)
	require.Len(t, *out, 2)
	require.Equal(t, "lab/viper/sensor/0", (*out)[0].topic)
	require.Equal(t, "lab/viper/sensor/2", (*out)[1].topic)

	msg := &SensorMessage{}
	require.NoError(t, msgpack.Unmarshal((*out)[0].payload, msg))
	require.Equal(t, "viper", msg.Device)
	require.Equal(t, uint32(7), msg.FrameCounter)
	require.Equal(t, [3]float32{1, 2, 3}, msg.Position)
	require.True(t, msg.Button0)
	require.Equal(t, uint8(3), msg.Distortion)
	require.Equal(t, 2.0, testutil.ToFloat64(p.metrics.PosesPublished.WithLabelValues("viper")))
}

func TestPublishRateLimited(t *testing.T) {
	p, out := testPublisher(0.001)
	published, err := p.Publish(testFrame())
	require.NoError(t, err)
	require.True(t, published)

	published, err = p.Publish(testFrame())
	require.NoError(t, err)
	require.False(t, published)
	require.Len(t, *out, 2)
	require.Equal(t, 1.0, testutil.ToFloat64(p.metrics.PosesRateLimited.WithLabelValues("viper")))

	// limits are per device
	other := testFrame()
	other.Device = "viper2"
	published, err = p.Publish(other)
	require.NoError(t, err)
	require.True(t, published)
}

func TestPublishError(t *testing.T) {
	p, _ := testPublisher(0)
	p.send = func(string, []byte) error {
		return errors.New("broker down")
	}
	_, err := p.Publish(testFrame())
	require.Error(t, err)
}

func TestDefaultTopicPrefix(t *testing.T) {
	p := newPublisher(&config.MqttConfig{}, metrics.NewMetrics(prometheus.NewRegistry()))
	require.Equal(t, config.DefaultMqttTopicPrefix, p.prefix)
}
