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
	"errors"
	"net/http"
	"time"

	"github.com/google/gopacket"
	"github.com/prometheus/client_golang/prometheus"

	"jinr.ru/greenlab/go-polhemus/pkg/config"
	devicepkg "jinr.ru/greenlab/go-polhemus/pkg/device"
	deviceifc "jinr.ru/greenlab/go-polhemus/pkg/device/ifc"
	"jinr.ru/greenlab/go-polhemus/pkg/layers"
	"jinr.ru/greenlab/go-polhemus/pkg/log"
	"jinr.ru/greenlab/go-polhemus/pkg/metrics"
	"jinr.ru/greenlab/go-polhemus/pkg/srv"
	"jinr.ru/greenlab/go-polhemus/pkg/srv/control/ifc"
	"jinr.ru/greenlab/go-polhemus/pkg/srv/pno"
)

type ControlServer struct {
	srv.Server
	state     *State
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	publisher *pno.Publisher
	api       ifc.ApiServer
	links     map[string]*Link
	devices   map[string]deviceifc.Device
}

var _ ifc.ControlServer = &ControlServer{}

// NewControlServer ...
func NewControlServer(ctx context.Context, cfg *config.Config) (ifc.ControlServer, error) {
	return newControlServer(ctx, cfg)
}

func newControlServer(ctx context.Context, cfg *config.Config) (*ControlServer, error) {
	log.Debug("Initializing control server with %d devices", len(cfg.Devices))

	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	state, err := NewState(ctx, cfg)
	if err != nil {
		return nil, err
	}

	registry := metrics.NewRegistry()
	s := &ControlServer{
		Server: srv.Server{
			Context: ctx,
			Config:  cfg,
			ChIn:    make(chan srv.InPacket),
		},
		state:    state,
		registry: registry,
		metrics:  metrics.NewMetrics(registry),
		links:    make(map[string]*Link),
		devices:  make(map[string]deviceifc.Device),
	}

	for _, d := range cfg.Devices {
		link := NewLink(d.Name, d.Address, cfg.MaxFrameSize, cfg.CommandTimeout(), s.metrics)
		device := devicepkg.NewDevice(d, link, cfg.StationMapDefault, policy)
		s.links[d.Name] = link
		s.devices[d.Name] = device
		s.restoreStationMap(device)
	}

	if cfg.Mqtt != nil && cfg.Mqtt.Broker != "" {
		s.publisher = pno.NewPublisher(cfg.Mqtt, s.metrics)
	}

	apiServer, err := NewApiServer(ctx, cfg, s)
	if err != nil {
		state.Close()
		return nil, err
	}
	s.api = apiServer

	return s, nil
}

func (s *ControlServer) restoreStationMap(device deviceifc.Device) {
	word, enabled, err := s.state.GetStationMap(device.GetName())
	if err != nil {
		log.Debug("No stored station map: device: %s: %s", device.GetName(), err)
		return
	}
	device.UpdateStationMap(word)
	device.RestoreEnabledMap(enabled)
	m := device.StationMap()
	s.metrics.ObserveStationMap(device.GetName(), m.SensorDetectedCount, m.EnabledCount)
	log.Info("Restored station map: device: %s %s", device.GetName(), m)
}

func (s *ControlServer) Run() error {
	defer s.state.Close()

	errChan := make(chan error, len(s.links)+1)

	for name, link := range s.links {
		if err := link.Connect(s.Context); err != nil {
			log.Error("Error while connecting to device: %s: %s", name, err)
			return err
		}
		defer link.Close()
		// Read frames from the device and put them to the input queue
		go func(name string, link *Link) {
			err := link.ReadLoop(s.Context, s.ChIn)
			log.Error("Device link closed: device: %s: %s", name, err)
			errChan <- err
		}(name, link)
	}

	// Read frames from the input queue, decode them and dispatch
	go s.processPackets()

	if s.publisher != nil {
		defer s.publisher.Close()
		go func() {
			if err := s.publisher.Connect(s.Context); err != nil {
				log.Error("Error while connecting to MQTT broker: %s", err)
			}
		}()
	}

	go func() {
		if err := s.api.Run(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-s.Context.Done():
		return s.Context.Err()
	case err := <-errChan:
		return err
	}
}

func (s *ControlServer) processPackets() {
	source := gopacket.NewPacketSource(s, layers.ViperLayerType)
	for packet := range source.Packets() {
		s.handlePacket(packet)
	}
}

func (s *ControlServer) handlePacket(packet gopacket.Packet) {
	deviceName, err := srv.GetDeviceName(packet)
	if err != nil {
		log.Error(err.Error())
		return
	}
	if errLayer := packet.ErrorLayer(); errLayer != nil {
		log.Warning("Drop frame. Decoding failed: device: %s: %s", deviceName, errLayer.Error())
		s.metrics.DecodeErrors.WithLabelValues(deviceName).Inc()
		return
	}
	viper, ok := packet.Layer(layers.ViperLayerType).(*layers.ViperLayer)
	if !ok {
		s.metrics.DecodeErrors.WithLabelValues(deviceName).Inc()
		return
	}
	if !viper.ChecksumOK {
		log.Warning("Drop frame. Checksum mismatch: device: %s", deviceName)
		s.metrics.ChecksumErrors.WithLabelValues(deviceName).Inc()
		return
	}

	view := layers.NewFrameView(packet.Data())
	s.metrics.FramesReceived.WithLabelValues(deviceName, view.Kind().String()).Inc()

	if cmd, ok := packet.Layer(layers.ViperCmdLayerType).(*layers.ViperCmdLayer); ok {
		link, found := s.links[deviceName]
		if !found {
			log.Debug("Command frame from unknown device: %s", deviceName)
			return
		}
		info := link.Received(packet.Data(), packet.Metadata().Timestamp)
		if !link.Deliver(info) {
			log.Debug("Unsolicited command frame: device: %s rx: %d cmd: %s action: %s",
				deviceName, info.RxCount, cmd.Command, cmd.Action)
		}
		return
	}
	if pnoLayer, ok := packet.Layer(layers.ViperPnoLayerType).(*layers.ViperPnoLayer); ok {
		s.handlePno(deviceName, pnoLayer, packet.Metadata().Timestamp)
	}
}

func (s *ControlServer) handlePno(deviceName string, pnoLayer *layers.ViperPnoLayer, ts time.Time) {
	frame := pno.NewFrame(deviceName, pnoLayer.FrameCounter, ts, pnoLayer.Sensors)
	if err := s.state.SetLastPno(frame); err != nil {
		log.Error("Error while storing PNO frame: device: %s: %s", deviceName, err)
	}
	if s.publisher != nil {
		if _, err := s.publisher.Publish(frame); err != nil {
			log.Error("Error while publishing PNO frame: device: %s: %s", deviceName, err)
		}
	}
}

func (s *ControlServer) GetDeviceByName(deviceName string) (deviceifc.Device, error) {
	device, ok := s.devices[deviceName]
	if !ok {
		return nil, config.ErrDeviceNotFound{Name: deviceName}
	}
	return device, nil
}

func (s *ControlServer) GetAllDevices() map[string]deviceifc.Device {
	return s.devices
}

func (s *ControlServer) storeStationMap(deviceName string, m *layers.StationMap) {
	s.metrics.ObserveStationMap(deviceName, m.SensorDetectedCount, m.EnabledCount)
	if err := s.state.SetStationMap(deviceName, m.Word(), m.EnabledMap()); err != nil {
		log.Error("Error while storing station map: device: %s: %s", deviceName, err)
	}
}

func (s *ControlServer) ReadStationMap(ctx context.Context, deviceName string) (*layers.StationMap, error) {
	device, err := s.GetDeviceByName(deviceName)
	if err != nil {
		return nil, err
	}
	m, err := device.ReadStationMap(ctx)
	if err != nil {
		return nil, err
	}
	s.storeStationMap(deviceName, m)
	return m, nil
}

// EnableSensor returns the station map even if the device rejected the new enabled map
func (s *ControlServer) EnableSensor(ctx context.Context, deviceName string, sensor int) (*layers.StationMap, error) {
	return s.changeSensor(ctx, deviceName, sensor, true)
}

func (s *ControlServer) DisableSensor(ctx context.Context, deviceName string, sensor int) (*layers.StationMap, error) {
	return s.changeSensor(ctx, deviceName, sensor, false)
}

func (s *ControlServer) changeSensor(ctx context.Context, deviceName string, sensor int, enable bool) (*layers.StationMap, error) {
	device, err := s.GetDeviceByName(deviceName)
	if err != nil {
		return nil, err
	}
	if enable {
		err = device.EnableSensor(ctx, sensor)
	} else {
		err = device.DisableSensor(ctx, sensor)
	}
	var indexErr layers.ErrIndexOutOfRange
	if errors.As(err, &indexErr) {
		return nil, err
	}
	m := device.StationMap()
	s.storeStationMap(deviceName, m)
	return m, err
}

func (s *ControlServer) ResetStationMap(deviceName string) (*layers.StationMap, error) {
	device, err := s.GetDeviceByName(deviceName)
	if err != nil {
		return nil, err
	}
	device.ResetStationMap()
	m := device.StationMap()
	s.storeStationMap(deviceName, m)
	return m, nil
}

func (s *ControlServer) LastPno(deviceName string) (*pno.Frame, error) {
	if _, err := s.GetDeviceByName(deviceName); err != nil {
		return nil, err
	}
	return s.state.GetLastPno(deviceName)
}

func (s *ControlServer) MetricsHandler() http.Handler {
	return metrics.Handler(s.registry)
}
