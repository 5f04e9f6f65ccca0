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

package layers

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"strings"
)

const (
	// DefaultStationMap is the factory station map: sensor 1 and source 1 detected
	DefaultStationMap uint32 = 0x01000001

	stationSensorMask  = 0x0000ffff
	stationSourceShift = 24
	stationSourceMask  = 0xf
)

// EnablePolicy defines how SetEnabled combines a sensor bit with the enabled map
type EnablePolicy int

const (
	// EnableIntersect keeps only the given sensor, and only if it was already enabled
	// (enabled &= 1 << sensor). This is what the vendor host library does.
	EnableIntersect EnablePolicy = iota
	// EnableUnion adds the sensor to the enabled map (enabled |= 1 << sensor)
	EnableUnion
)

func (p EnablePolicy) String() string {
	switch p {
	case EnableIntersect:
		return "intersect"
	case EnableUnion:
		return "union"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

func ParseEnablePolicy(s string) (EnablePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "intersect", "and":
		return EnableIntersect, nil
	case "union", "or":
		return EnableUnion, nil
	default:
		return EnableIntersect, fmt.Errorf("Unknown enable policy: %s. Must be one of: intersect, union.", s)
	}
}

// StationMap keeps the station map reported by one SEU together with the
// host side enabled map.
// Status word layout:
// bits 0-15 detected sensors
// bits 16-23 reserved
// bits 24-27 detected sources
// bits 28-31 reserved
type StationMap struct {
	word       uint32
	enabledMap uint32

	SensorDetectedCount int
	SourceDetectedCount int
	// EnabledCount is the number of sensors set in the enabled map
	EnabledCount int

	Policy EnablePolicy
}

// NewStationMap decodes a status word, every detected sensor starts enabled
func NewStationMap(word uint32) *StationMap {
	m := &StationMap{word: word}
	m.CountDetected()
	m.InitEnabled()
	return m
}

// DecodeStationMap reads the station map word from a command payload
func DecodeStationMap(payload []byte) (*StationMap, error) {
	if len(payload) < 4 {
		return nil, ErrFrameTooShort{Need: 4, Got: len(payload)}
	}
	return NewStationMap(binary.LittleEndian.Uint32(payload[0:4])), nil
}

// Word returns the raw status word
func (m *StationMap) Word() uint32 {
	return m.word
}

// Bytes returns the status word encoded as a command payload
func (m *StationMap) Bytes() []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, m.word)
	return buf
}

func (m *StationMap) SensorMap() uint16 {
	return uint16(m.word & stationSensorMask)
}

func (m *StationMap) SourceMap() uint8 {
	return uint8((m.word >> stationSourceShift) & stationSourceMask)
}

// EnabledMap is maintained by the host only, the device never reports it
func (m *StationMap) EnabledMap() uint16 {
	return uint16(m.enabledMap)
}

// Update replaces the status word with a freshly reported one.
// Detection is recounted, the enabled map is kept.
func (m *StationMap) Update(word uint32) {
	m.word = word
	m.CountEnabled()
}

// CountDetected recounts detected sensors and sources from the status word
func (m *StationMap) CountDetected() {
	m.SensorDetectedCount = bits.OnesCount16(m.SensorMap())
	m.SourceDetectedCount = bits.OnesCount8(m.SourceMap())
}

// CountEnabled recounts detection and the enabled map
func (m *StationMap) CountEnabled() {
	m.CountDetected()
	m.EnabledCount = bits.OnesCount16(uint16(m.enabledMap))
}

// InitEnabled enables every detected sensor
func (m *StationMap) InitEnabled() {
	m.enabledMap = uint32(m.SensorMap())
	m.CountEnabled()
}

// LoadDefault resets the map to the given factory word and enables what it detects
func (m *StationMap) LoadDefault(word uint32) {
	m.word = word
	m.CountDetected()
	m.InitEnabled()
}

func (m *StationMap) IsDetected(sensor int) bool {
	if sensor < 0 || sensor >= SensorsPerSeu {
		return false
	}
	return (1<<uint(sensor))&uint32(m.SensorMap()) != 0
}

func (m *StationMap) IsSourceDetected(source int) bool {
	if source < 0 || source >= SourcesPerSeu {
		return false
	}
	return (1<<uint(source))&uint32(m.SourceMap()) != 0
}

// IsEnabled reports whether the sensor is both enabled and detected
func (m *StationMap) IsEnabled(sensor int) bool {
	if sensor < 0 || sensor >= SensorsPerSeu {
		return false
	}
	return (1<<uint(sensor))&(m.enabledMap&uint32(m.SensorMap())) != 0
}

// SetEnabled combines the sensor with the enabled map according to Policy.
// With EnableIntersect every other sensor is dropped from the map.
func (m *StationMap) SetEnabled(sensor int) error {
	if sensor < 0 || sensor >= SensorsPerSeu {
		return ErrIndexOutOfRange{Index: sensor, Count: SensorsPerSeu}
	}
	switch m.Policy {
	case EnableUnion:
		m.enabledMap |= 1 << uint(sensor)
	default:
		m.enabledMap &= 1 << uint(sensor)
	}
	m.CountEnabled()
	return nil
}

// SetDisabled removes the sensor from the enabled map
func (m *StationMap) SetDisabled(sensor int) error {
	if sensor < 0 || sensor >= SensorsPerSeu {
		return ErrIndexOutOfRange{Index: sensor, Count: SensorsPerSeu}
	}
	m.enabledMap &^= 1 << uint(sensor)
	m.CountEnabled()
	return nil
}

// SetEnabledMap replaces the enabled map
func (m *StationMap) SetEnabledMap(enabled uint16) {
	m.enabledMap = uint32(enabled)
	m.CountEnabled()
}

// Equal compares status words only
func (m *StationMap) Equal(other *StationMap) bool {
	return other != nil && m.word == other.word
}

func (m *StationMap) String() string {
	return fmt.Sprintf("sensors: %016b sources: %04b enabled: %016b", m.SensorMap(), m.SourceMap(), m.EnabledMap())
}
