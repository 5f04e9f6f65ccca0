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

package control

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"jinr.ru/greenlab/go-polhemus/pkg/config"
	"jinr.ru/greenlab/go-polhemus/pkg/layers"
	"jinr.ru/greenlab/go-polhemus/pkg/metrics"
	"jinr.ru/greenlab/go-polhemus/pkg/srv"
)

const testDevice = config.DefaultDeviceName

// tracker answers commands the way a Viper SEU does
type tracker struct {
	conn net.Conn

	mu         sync.Mutex
	stationMap uint32
	enabledMap uint32
	units      layers.UnitsConfig
	continuous bool
	nak        map[layers.CommandCode]bool
	silent     map[layers.CommandCode]bool
}

func newTracker(stationMap uint32) *tracker {
	return &tracker{
		stationMap: stationMap,
		units:      layers.UnitsConfig{Pos: layers.PosCm, Ori: layers.OriQuaternion},
		nak:        make(map[layers.CommandCode]bool),
		silent:     make(map[layers.CommandCode]bool),
	}
}

func (tr *tracker) serve() {
	for {
		data, err := layers.ReadFrame(tr.conn, 0)
		if err != nil {
			return
		}
		reply := tr.reply(layers.NewFrameView(data))
		if reply == nil {
			continue
		}
		if _, err := tr.conn.Write(reply.Bytes()); err != nil {
			return
		}
	}
}

func (tr *tracker) reply(view layers.FrameView) *layers.CommandFrame {
	h, err := view.CommandHeader()
	if err != nil {
		return nil
	}
	tr.mu.Lock()
	defer tr.mu.Unlock()
	if tr.silent[h.Command] {
		return nil
	}
	if tr.nak[h.Command] {
		return layers.NewReplyFrame(h.DeviceID, h.Command, layers.ActionNak, h.Arg1, h.Arg2, nil)
	}
	var payload []byte
	switch h.Command {
	case layers.CmdStationMap:
		payload = make([]byte, 4)
		binary.LittleEndian.PutUint32(payload, tr.stationMap)
	case layers.CmdEnableMap:
		tr.enabledMap = binary.LittleEndian.Uint32(view.Payload())
	case layers.CmdUnits:
		if h.Action == layers.ActionSet {
			units, err := layers.DecodeUnitsConfig(view.Payload())
			if err != nil {
				return layers.NewReplyFrame(h.DeviceID, h.Command, layers.ActionNak, h.Arg1, h.Arg2, nil)
			}
			tr.units = *units
		} else {
			payload = tr.units.Bytes()
		}
	case layers.CmdContinuousPno:
		tr.continuous = h.Action == layers.ActionSet
	case layers.CmdWhoAmI:
		payload = []byte("VIPER")
	}
	return layers.NewReplyFrame(h.DeviceID, h.Command, layers.ActionAck, h.Arg1, h.Arg2, payload)
}

func (tr *tracker) send(t *testing.T, data []byte) {
	_, err := tr.conn.Write(data)
	require.NoError(t, err)
}

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	cfg := config.NewDefaultConfig()
	cfg.SetPath(filepath.Join(dir, config.ConfigFile))
	cfg.DBPath = filepath.Join(dir, config.DBFile)
	cfg.CommandTimeoutMs = 500
	cfg.ApiAddress = "127.0.0.1:0"
	return cfg
}

// startServer runs the control server loops against a tracker connected through a pipe
func startServer(t *testing.T, cfg *config.Config, tr *tracker) *ControlServer {
	ctx, cancel := context.WithCancel(context.Background())
	s, err := newControlServer(ctx, cfg)
	require.NoError(t, err)

	hostEnd, deviceEnd := net.Pipe()
	tr.conn = deviceEnd
	link := s.links[testDevice]
	link.Attach(hostEnd)

	go tr.serve()
	go link.ReadLoop(ctx, s.ChIn)
	go s.processPackets()

	t.Cleanup(func() {
		cancel()
		link.Close()
		deviceEnd.Close()
		s.state.Close()
	})
	return s
}

func TestReadStationMap(t *testing.T) {
	tr := newTracker(0x03000005)
	s := startServer(t, testConfig(t), tr)

	m, err := s.ReadStationMap(context.Background(), testDevice)
	require.NoError(t, err)
	require.Equal(t, uint32(0x03000005), m.Word())
	require.Equal(t, 2, m.SensorDetectedCount)
	require.Equal(t, 2, m.SourceDetectedCount)

	word, _, err := s.state.GetStationMap(testDevice)
	require.NoError(t, err)
	require.Equal(t, uint32(0x03000005), word)
	require.Equal(t, 2.0, testutil.ToFloat64(s.metrics.SensorsDetected.WithLabelValues(testDevice)))
}

func TestEnableSensorWritesEnabledMap(t *testing.T) {
	cfg := testConfig(t)
	cfg.EnablePolicy = "union"
	cfg.StationMapDefault = 0x01000001
	tr := newTracker(0x01000007)
	s := startServer(t, cfg, tr)

	m, err := s.EnableSensor(context.Background(), testDevice, 2)
	require.NoError(t, err)
	require.Equal(t, uint16(0x0005), m.EnabledMap())

	tr.mu.Lock()
	require.Equal(t, uint32(0x0005), tr.enabledMap)
	tr.mu.Unlock()

	m, err = s.DisableSensor(context.Background(), testDevice, 0)
	require.NoError(t, err)
	require.Equal(t, uint16(0x0004), m.EnabledMap())

	_, enabled, err := s.state.GetStationMap(testDevice)
	require.NoError(t, err)
	require.Equal(t, uint16(0x0004), enabled)

	_, err = s.EnableSensor(context.Background(), testDevice, 16)
	require.ErrorAs(t, err, &layers.ErrIndexOutOfRange{})
}

func TestCommandNak(t *testing.T) {
	tr := newTracker(layers.DefaultStationMap)
	tr.nak[layers.CmdPersist] = true
	s := startServer(t, testConfig(t), tr)

	device, err := s.GetDeviceByName(testDevice)
	require.NoError(t, err)
	err = device.Persist(context.Background())
	require.ErrorAs(t, err, &layers.ErrDeviceNak{})
}

func TestCommandTimeout(t *testing.T) {
	tr := newTracker(layers.DefaultStationMap)
	tr.silent[layers.CmdWhoAmI] = true
	s := startServer(t, testConfig(t), tr)

	device, err := s.GetDeviceByName(testDevice)
	require.NoError(t, err)
	_, err = device.WhoAmI(context.Background())
	require.ErrorAs(t, err, &srv.ErrTimeout{})

	// the pending slot is released after the timeout
	tr.mu.Lock()
	tr.silent[layers.CmdWhoAmI] = false
	tr.mu.Unlock()
	payload, err := device.WhoAmI(context.Background())
	require.NoError(t, err)
	require.Equal(t, []byte("VIPER"), payload)
}

func TestContinuousPno(t *testing.T) {
	tr := newTracker(layers.DefaultStationMap)
	s := startServer(t, testConfig(t), tr)

	device, err := s.GetDeviceByName(testDevice)
	require.NoError(t, err)
	require.NoError(t, device.StartContinuous(context.Background()))
	require.True(t, device.IsRunning())

	frame := &layers.PnoFrame{
		PnoHeader: layers.PnoHeader{FrameCounter: 42},
		Sensors: []layers.SensorRecord{
			{
				Info:        layers.NewSensorInfo(0, false, layers.PosCm, layers.OriQuaternion, false, false, 0, 0),
				Position:    [3]float32{10, 20, 30},
				Orientation: [4]float32{1, 0, 0, 0},
			},
		},
	}
	tr.send(t, frame.Bytes())

	require.Eventually(t, func() bool {
		last, err := s.LastPno(testDevice)
		return err == nil && last.FrameCounter == 42
	}, 2*time.Second, 10*time.Millisecond)

	last, err := s.LastPno(testDevice)
	require.NoError(t, err)
	require.Len(t, last.Poses, 1)
	require.Equal(t, [3]float32{10, 20, 30}, last.Poses[0].Position)

	require.NoError(t, device.StopContinuous(context.Background()))
	require.False(t, device.IsRunning())
}

func TestChecksumMismatchDropped(t *testing.T) {
	tr := newTracker(layers.DefaultStationMap)
	s := startServer(t, testConfig(t), tr)

	frame := &layers.PnoFrame{
		PnoHeader: layers.PnoHeader{FrameCounter: 1},
		Sensors:   []layers.SensorRecord{{}},
	}
	data := frame.Bytes()
	data[len(data)-1] ^= 0xff
	tr.send(t, data)

	require.Eventually(t, func() bool {
		return testutil.ToFloat64(s.metrics.ChecksumErrors.WithLabelValues(testDevice)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	_, err := s.LastPno(testDevice)
	require.ErrorAs(t, err, &ErrKeyNotFound{})
}

func TestUnknownDevice(t *testing.T) {
	s := startServer(t, testConfig(t), newTracker(layers.DefaultStationMap))
	_, err := s.ReadStationMap(context.Background(), "nope")
	require.ErrorAs(t, err, &config.ErrDeviceNotFound{})
}

func TestRestoreStationMap(t *testing.T) {
	cfg := testConfig(t)
	state, err := NewState(context.Background(), cfg)
	require.NoError(t, err)
	require.NoError(t, state.SetStationMap(testDevice, 0x0100000f, 0x0003))
	state.Close()

	s, err := newControlServer(context.Background(), cfg)
	require.NoError(t, err)
	defer s.state.Close()

	device, err := s.GetDeviceByName(testDevice)
	require.NoError(t, err)
	m := device.StationMap()
	require.Equal(t, uint32(0x0100000f), m.Word())
	require.Equal(t, uint16(0x0003), m.EnabledMap())
	require.Equal(t, 2, m.EnabledCount)
}

func TestExchangeNotConnected(t *testing.T) {
	cfg := testConfig(t)
	s, err := newControlServer(context.Background(), cfg)
	require.NoError(t, err)
	defer s.state.Close()

	device, err := s.GetDeviceByName(testDevice)
	require.NoError(t, err)
	_, err = device.ReadStationMap(context.Background())
	require.ErrorAs(t, err, &srv.ErrNotConnected{})
}

func TestReadLoopCutFrame(t *testing.T) {
	link := NewLink(testDevice, "", 0, time.Second, metrics.NewMetrics(metrics.NewRegistry()))
	hostEnd, deviceEnd := net.Pipe()
	link.Attach(hostEnd)
	defer link.Close()

	done := make(chan error, 1)
	out := make(chan srv.InPacket, 1)
	go func() { done <- link.ReadLoop(context.Background(), out) }()

	full := layers.NewCommandFrame(0, layers.CmdWhoAmI, layers.ActionGet, 0, 0, nil).Bytes()
	_, err := deviceEnd.Write(full)
	require.NoError(t, err)
	packet := <-out
	require.Equal(t, full, packet.Data)

	_, err = deviceEnd.Write(full[:layers.FrameHeaderSize])
	require.NoError(t, err)
	deviceEnd.Close()
	require.ErrorIs(t, <-done, io.ErrUnexpectedEOF)
}

func TestReadLoopClosedBetweenFrames(t *testing.T) {
	link := NewLink(testDevice, "", 0, time.Second, metrics.NewMetrics(metrics.NewRegistry()))
	hostEnd, deviceEnd := net.Pipe()
	link.Attach(hostEnd)
	defer link.Close()

	done := make(chan error, 1)
	go func() { done <- link.ReadLoop(context.Background(), make(chan srv.InPacket, 1)) }()
	deviceEnd.Close()
	require.ErrorIs(t, <-done, io.EOF)
}
