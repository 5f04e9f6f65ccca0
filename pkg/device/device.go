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

package device

import (
	"context"
	"encoding/binary"
	"sync"

	"github.com/google/uuid"

	"jinr.ru/greenlab/go-polhemus/pkg/config"
	deviceifc "jinr.ru/greenlab/go-polhemus/pkg/device/ifc"
	"jinr.ru/greenlab/go-polhemus/pkg/layers"
	"jinr.ru/greenlab/go-polhemus/pkg/log"
)

const (
	// AllSensors as arg1 addresses every sensor of the SEU
	AllSensors = ^uint32(0)
)

// Device is the host side session of one SEU
type Device struct {
	*config.Device
	SessionID         uuid.UUID
	defaultStationMap uint32
	link              deviceifc.Link

	// guards stationMap, units and running, StationMap is not synchronized itself
	mu         sync.Mutex
	stationMap *layers.StationMap
	units      layers.UnitsConfig
	running    bool
}

var _ deviceifc.Device = &Device{}

// NewDevice starts a session with the station map set to the factory default
func NewDevice(device *config.Device, link deviceifc.Link, defaultStationMap uint32, policy layers.EnablePolicy) *Device {
	d := &Device{
		Device:            device,
		SessionID:         uuid.New(),
		units:             layers.UnitsConfig{Pos: layers.PosCm, Ori: layers.OriQuaternion},
		defaultStationMap: defaultStationMap,
		link:              link,
		stationMap:        layers.NewStationMap(defaultStationMap),
	}
	d.stationMap.Policy = policy
	log.Debug("New device session: device: %s session: %s", device.Name, d.SessionID)
	return d
}

func (d *Device) GetName() string {
	return d.Name
}

func (d *Device) GetSeuID() uint32 {
	return d.SeuID
}

// Command sends one command and waits for the answer.
// A rejected command returns the answer together with layers.ErrDeviceNak.
func (d *Device) Command(ctx context.Context, cmd layers.CommandCode, action layers.ActionCode, arg1, arg2 uint32, payload []byte) (layers.FrameView, error) {
	frame := layers.NewCommandFrame(d.SeuID, cmd, action, arg1, arg2, payload)
	log.Debug("Sending command: device: %s cmd: %s action: %s arg1: %d arg2: %d payload: %d bytes",
		d.Name, cmd, action, arg1, arg2, len(frame.Payload))
	resp, err := d.link.Exchange(ctx, frame)
	if err != nil {
		return resp, err
	}
	if err := resp.Nak(); err != nil {
		log.Warning("Command rejected: device: %s cmd: %s action: %s", d.Name, cmd, action)
		return resp, err
	}
	return resp, nil
}

// ReadStationMap asks the device for the station map and updates the session state
func (d *Device) ReadStationMap(ctx context.Context) (*layers.StationMap, error) {
	resp, err := d.Command(ctx, layers.CmdStationMap, layers.ActionGet, 0, 0, nil)
	if err != nil {
		return nil, err
	}
	reported, err := layers.DecodeStationMap(resp.Payload())
	if err != nil {
		return nil, err
	}
	d.UpdateStationMap(reported.Word())
	return d.StationMap(), nil
}

// UpdateStationMap applies a station map word reported by the device
func (d *Device) UpdateStationMap(word uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stationMap.Update(word)
}

// RestoreEnabledMap sets the enabled sensors without sending them to the device
func (d *Device) RestoreEnabledMap(enabled uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stationMap.SetEnabledMap(enabled)
}

// StationMap returns a copy of the session station map
func (d *Device) StationMap() *layers.StationMap {
	d.mu.Lock()
	defer d.mu.Unlock()
	m := *d.stationMap
	return &m
}

// ResetStationMap loads the configured factory station map
func (d *Device) ResetStationMap() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stationMap.LoadDefault(d.defaultStationMap)
}

func (d *Device) EnableSensor(ctx context.Context, sensor int) error {
	d.mu.Lock()
	err := d.stationMap.SetEnabled(sensor)
	enabled := d.stationMap.EnabledMap()
	d.mu.Unlock()
	if err != nil {
		return err
	}
	return d.writeEnabledMap(ctx, enabled)
}

func (d *Device) DisableSensor(ctx context.Context, sensor int) error {
	d.mu.Lock()
	err := d.stationMap.SetDisabled(sensor)
	enabled := d.stationMap.EnabledMap()
	d.mu.Unlock()
	if err != nil {
		return err
	}
	return d.writeEnabledMap(ctx, enabled)
}

// WriteEnabledMap sends the session enabled map to the device
func (d *Device) WriteEnabledMap(ctx context.Context) error {
	d.mu.Lock()
	enabled := d.stationMap.EnabledMap()
	d.mu.Unlock()
	return d.writeEnabledMap(ctx, enabled)
}

func (d *Device) writeEnabledMap(ctx context.Context, enabled uint16) error {
	payload := make([]byte, 4)
	binary.LittleEndian.PutUint32(payload, uint32(enabled))
	_, err := d.Command(ctx, layers.CmdEnableMap, layers.ActionSet, 0, 0, payload)
	return err
}

func (d *Device) ReadUnits(ctx context.Context) (*layers.UnitsConfig, error) {
	resp, err := d.Command(ctx, layers.CmdUnits, layers.ActionGet, 0, 0, nil)
	if err != nil {
		return nil, err
	}
	units, err := layers.DecodeUnitsConfig(resp.Payload())
	if err != nil {
		return nil, err
	}
	d.mu.Lock()
	d.units = *units
	d.mu.Unlock()
	return units, nil
}

func (d *Device) SetUnits(ctx context.Context, units *layers.UnitsConfig) error {
	if _, err := d.Command(ctx, layers.CmdUnits, layers.ActionSet, 0, 0, units.Bytes()); err != nil {
		return err
	}
	d.mu.Lock()
	d.units = *units
	d.mu.Unlock()
	return nil
}

// CurrentUnits returns the units last read from or written to the device
func (d *Device) CurrentUnits() layers.UnitsConfig {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.units
}

func (d *Device) SetHemisphere(ctx context.Context, sensor int, hemisphere *layers.HemisphereConfig) error {
	_, err := d.Command(ctx, layers.CmdHemisphere, layers.ActionSet, sensorArg(sensor), 0, hemisphere.Bytes())
	return err
}

func (d *Device) Boresight(ctx context.Context, sensor int, boresight *layers.BoresightConfig) error {
	_, err := d.Command(ctx, layers.CmdBoresight, layers.ActionSet, sensorArg(sensor), 0, boresight.Bytes())
	return err
}

// StartContinuous makes the device stream PNO frames
func (d *Device) StartContinuous(ctx context.Context) error {
	if _, err := d.Command(ctx, layers.CmdContinuousPno, layers.ActionSet, 0, 0, nil); err != nil {
		return err
	}
	d.mu.Lock()
	d.running = true
	d.mu.Unlock()
	return nil
}

func (d *Device) StopContinuous(ctx context.Context) error {
	if _, err := d.Command(ctx, layers.CmdContinuousPno, layers.ActionReset, 0, 0, nil); err != nil {
		return err
	}
	d.mu.Lock()
	d.running = false
	d.mu.Unlock()
	return nil
}

func (d *Device) IsRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// WhoAmI returns a copy of the identification payload
func (d *Device) WhoAmI(ctx context.Context) ([]byte, error) {
	resp, err := d.Command(ctx, layers.CmdWhoAmI, layers.ActionGet, 0, 0, nil)
	if err != nil {
		return nil, err
	}
	payload := resp.Payload()
	result := make([]byte, len(payload))
	copy(result, payload)
	return result, nil
}

// Persist stores the current device configuration in the device flash
func (d *Device) Persist(ctx context.Context) error {
	_, err := d.Command(ctx, layers.CmdPersist, layers.ActionSet, 0, 0, nil)
	return err
}

func sensorArg(sensor int) uint32 {
	if sensor < 0 {
		return AllSensors
	}
	return uint32(sensor)
}
