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
	"math"
)

// PnoHeader ... // 16 bytes
type PnoHeader struct {
	DeviceID     uint32 `json:"device_id"`
	FrameCounter uint32 `json:"frame_counter"`
	HpInfo       uint32 `json:"hp_info"`
	SensorCount  uint32 `json:"sensor_count"`
}

// Serialize writes the PNO header to buf
func (h *PnoHeader) Serialize(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.DeviceID)
	binary.LittleEndian.PutUint32(buf[4:8], h.FrameCounter)
	binary.LittleEndian.PutUint32(buf[8:12], h.HpInfo)
	binary.LittleEndian.PutUint32(buf[12:16], h.SensorCount)
}

// DecodePnoHeader reads the PNO header from buf (which starts right after the frame header)
func DecodePnoHeader(buf []byte) (PnoHeader, error) {
	if len(buf) < PnoHeaderSize {
		return PnoHeader{}, ErrFrameTooShort{Need: PnoHeaderSize, Got: len(buf)}
	}
	return PnoHeader{
		DeviceID:     binary.LittleEndian.Uint32(buf[0:4]),
		FrameCounter: binary.LittleEndian.Uint32(buf[4:8]),
		HpInfo:       binary.LittleEndian.Uint32(buf[8:12]),
		SensorCount:  binary.LittleEndian.Uint32(buf[12:16]),
	}, nil
}

// SensorInfo is the packed info word of a sensor record
// bits 0-6 sensor number
// bit 7 virtual sensor
// bits 8-9 position units
// bits 10-11 orientation units
// bit 12 button 0
// bit 13 button 1
// bits 14-21 distortion level
// bits 22-31 aux input
type SensorInfo uint32

func (i SensorInfo) SensorNum() uint8 {
	return uint8(i & 0x7f)
}

func (i SensorInfo) Virtual() bool {
	return (i>>7)&0x1 == 1
}

func (i SensorInfo) PosUnits() PosUnits {
	return PosUnits((i >> 8) & 0x3)
}

func (i SensorInfo) OriUnits() OriUnits {
	return OriUnits((i >> 10) & 0x3)
}

func (i SensorInfo) Button0() bool {
	return (i>>12)&0x1 == 1
}

func (i SensorInfo) Button1() bool {
	return (i>>13)&0x1 == 1
}

func (i SensorInfo) Distortion() uint8 {
	return uint8((i >> 14) & 0xff)
}

func (i SensorInfo) AuxInput() uint16 {
	return uint16((i >> 22) & 0x3ff)
}

// NewSensorInfo packs the info fields, values wider than their bitfield are truncated
func NewSensorInfo(sensorNum uint8, virtual bool, pos PosUnits, ori OriUnits, btn0, btn1 bool, distortion uint8, aux uint16) SensorInfo {
	i := SensorInfo(sensorNum) & 0x7f
	if virtual {
		i |= 1 << 7
	}
	i |= SensorInfo(pos&0x3) << 8
	i |= SensorInfo(ori&0x3) << 10
	if btn0 {
		i |= 1 << 12
	}
	if btn1 {
		i |= 1 << 13
	}
	i |= SensorInfo(distortion) << 14
	i |= SensorInfo(aux&0x3ff) << 22
	return i
}

// SensorRecord ... // 32 bytes
type SensorRecord struct {
	Info SensorInfo `json:"info"`
	// Position is x, y, z in Info.PosUnits()
	Position [3]float32 `json:"position"`
	// Orientation is a quaternion (w, x, y, z) or azimuth, elevation, roll and an unused value
	// depending on Info.OriUnits()
	Orientation [4]float32 `json:"orientation"`
}

// DecodeSensorRecord reads a sensor record from the beginning of buf
func DecodeSensorRecord(buf []byte) (SensorRecord, error) {
	if len(buf) < SensorRecordSize {
		return SensorRecord{}, ErrFrameTooShort{Need: SensorRecordSize, Got: len(buf)}
	}
	r := SensorRecord{Info: SensorInfo(binary.LittleEndian.Uint32(buf[0:4]))}
	for i := range r.Position {
		offset := 4 + i*4
		r.Position[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[offset : offset+4]))
	}
	for i := range r.Orientation {
		offset := 16 + i*4
		r.Orientation[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[offset : offset+4]))
	}
	return r, nil
}

// Serialize writes the sensor record to buf
func (r *SensorRecord) Serialize(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(r.Info))
	for i, v := range r.Position {
		offset := 4 + i*4
		binary.LittleEndian.PutUint32(buf[offset:offset+4], math.Float32bits(v))
	}
	for i, v := range r.Orientation {
		offset := 16 + i*4
		binary.LittleEndian.PutUint32(buf[offset:offset+4], math.Float32bits(v))
	}
}

// PnoFrame is a PNO frame as the device sends it. It is used by tools and
// tests that need to produce telemetry, the host never sends it.
type PnoFrame struct {
	PnoHeader
	Sensors []SensorRecord
}

// Len is the number of bytes Serialize writes
func (f *PnoFrame) Len() int {
	return FrameHeaderSize + PnoHeaderSize + len(f.Sensors)*SensorRecordSize + ChecksumBytes
}

// Serialize writes the frame including checksum to buf. SensorCount is set from Sensors.
func (f *PnoFrame) Serialize(buf []byte) int {
	f.SensorCount = uint32(len(f.Sensors))
	fh := FrameHeader{Preamble: ViperPnoPreamble, Size: uint32(f.Len() - FrameHeaderSize)}
	fh.Serialize(buf[0:FrameHeaderSize])
	f.PnoHeader.Serialize(buf[FrameHeaderSize : FrameHeaderSize+PnoHeaderSize])
	offset := FrameHeaderSize + PnoHeaderSize
	for i := range f.Sensors {
		f.Sensors[i].Serialize(buf[offset : offset+SensorRecordSize])
		offset += SensorRecordSize
	}
	binary.LittleEndian.PutUint32(buf[offset:offset+ChecksumBytes], uint32(Checksum(buf[:offset])))
	return offset + ChecksumBytes
}

// Bytes returns the encoded frame
func (f *PnoFrame) Bytes() []byte {
	buf := make([]byte, f.Len())
	f.Serialize(buf)
	return buf
}
