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

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"jinr.ru/greenlab/go-polhemus/pkg/log"
)

const (
	// ViperLayerNum identifies the frame layer
	ViperLayerNum = 2999
	// ViperCmdLayerNum identifies the command layer
	ViperCmdLayerNum = 2998
	// ViperPnoLayerNum identifies the PNO layer
	ViperPnoLayerNum = 2997
)

var ViperLayerType = gopacket.RegisterLayerType(ViperLayerNum,
	gopacket.LayerTypeMetadata{Name: "ViperLayerType", Decoder: gopacket.DecodeFunc(decodeViperLayer)})

var ViperCmdLayerType = gopacket.RegisterLayerType(ViperCmdLayerNum,
	gopacket.LayerTypeMetadata{Name: "ViperCmdLayerType", Decoder: gopacket.DecodeFunc(DecodeViperCmdLayer)})

var ViperPnoLayerType = gopacket.RegisterLayerType(ViperPnoLayerNum,
	gopacket.LayerTypeMetadata{Name: "ViperPnoLayerType", Decoder: gopacket.DecodeFunc(DecodeViperPnoLayer)})

// ViperLayer is the frame envelope: preamble, size and trailing checksum.
// A checksum mismatch does not fail decoding, it is reported by ChecksumOK
// so the caller decides whether to drop the frame.
type ViperLayer struct {
	layers.BaseLayer
	FrameHeader
	Crc        uint32
	ChecksumOK bool
}

// LayerType returns the type of the Viper layer in the layer catalog
func (vl *ViperLayer) LayerType() gopacket.LayerType {
	return ViperLayerType
}

// DecodeFromBytes attempts to decode the byte slice as a Viper frame
func (vl *ViperLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	kind := Classify(data)
	if kind != FrameCmd && kind != FramePno {
		return NewFrameView(data).Err()
	}
	header, err := DecodeFrameHeader(data)
	if err != nil {
		df.SetTruncated()
		return err
	}
	total := int64(FrameHeaderSize) + int64(header.Size)
	if header.Size < ChecksumBytes || total > int64(len(data)) {
		df.SetTruncated()
		return ErrFrameTooShort{Need: int(total), Got: len(data)}
	}
	crcOffset := int(total) - ChecksumBytes

	vl.BaseLayer = layers.BaseLayer{
		Contents: data[0:FrameHeaderSize],
		Payload:  data[FrameHeaderSize:crcOffset], // body without checksum
	}
	vl.FrameHeader = header
	vl.Crc = binary.LittleEndian.Uint32(data[crcOffset:int(total)])
	vl.ChecksumOK = uint32(Checksum(data[:crcOffset])) == vl.Crc
	if !vl.ChecksumOK {
		log.Debug("Viper frame checksum mismatch: preamble: 0x%08x size: %d", header.Preamble, header.Size)
	}
	return nil
}

func (vl *ViperLayer) CanDecode() gopacket.LayerClass {
	return ViperLayerType
}

func (vl *ViperLayer) NextLayerType() gopacket.LayerType {
	switch vl.Preamble {
	case ViperCmdPreamble:
		return ViperCmdLayerType
	case ViperPnoPreamble:
		return ViperPnoLayerType
	default:
		return gopacket.LayerTypeZero
	}
}

func decodeViperLayer(data []byte, p gopacket.PacketBuilder) error {
	vl := &ViperLayer{}
	err := vl.DecodeFromBytes(data, p)
	if err != nil {
		log.Debug("Error while decoding viper layer: %s", err)
		return err
	}
	p.AddLayer(vl)
	return p.NextDecoder(vl.NextLayerType())
}

// ViperCmdLayer is the body of a command frame
type ViperCmdLayer struct {
	layers.BaseLayer
	CommandHeader
}

// LayerType returns the type of the command layer in the layer catalog
func (cl *ViperCmdLayer) LayerType() gopacket.LayerType {
	return ViperCmdLayerType
}

func (cl *ViperCmdLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	header, err := DecodeCommandHeader(data)
	if err != nil {
		df.SetTruncated()
		return err
	}
	cl.BaseLayer = layers.BaseLayer{
		Contents: data[:CommandHeaderSize],
		Payload:  data[CommandHeaderSize:],
	}
	cl.CommandHeader = header
	return nil
}

func (cl *ViperCmdLayer) IsAck() bool {
	return cl.Action == ActionAck
}

func (cl *ViperCmdLayer) IsNak() bool {
	return cl.Action == ActionNak
}

func DecodeViperCmdLayer(data []byte, p gopacket.PacketBuilder) error {
	cl := &ViperCmdLayer{}
	err := cl.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(cl)
	return nil
}

// ViperPnoLayer is the body of a PNO frame
type ViperPnoLayer struct {
	layers.BaseLayer
	PnoHeader
	Sensors []SensorRecord
}

// LayerType returns the type of the PNO layer in the layer catalog
func (pl *ViperPnoLayer) LayerType() gopacket.LayerType {
	return ViperPnoLayerType
}

func (pl *ViperPnoLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	header, err := DecodePnoHeader(data)
	if err != nil {
		df.SetTruncated()
		return err
	}
	available := (len(data) - PnoHeaderSize) / SensorRecordSize
	if int(header.SensorCount) > available {
		df.SetTruncated()
		return ErrIndexOutOfRange{Index: int(header.SensorCount) - 1, Count: available}
	}
	pl.BaseLayer = layers.BaseLayer{
		Contents: data[:PnoHeaderSize],
		Payload:  data[PnoHeaderSize:],
	}
	pl.PnoHeader = header
	pl.Sensors = make([]SensorRecord, 0, header.SensorCount)
	for i := 0; i < int(header.SensorCount); i++ {
		offset := PnoHeaderSize + i*SensorRecordSize
		record, err := DecodeSensorRecord(data[offset : offset+SensorRecordSize])
		if err != nil {
			return err
		}
		pl.Sensors = append(pl.Sensors, record)
	}
	return nil
}

func DecodeViperPnoLayer(data []byte, p gopacket.PacketBuilder) error {
	pl := &ViperPnoLayer{}
	err := pl.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(pl)
	return nil
}
