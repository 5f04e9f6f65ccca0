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

	"jinr.ru/greenlab/go-polhemus/pkg/log"
)

// FrameHeader is the first 8 bytes of every Viper frame.
// Size is the number of bytes following the header including the checksum.
type FrameHeader struct {
	Preamble uint32
	Size     uint32
}

// Serialize writes the frame header to buf
func (h *FrameHeader) Serialize(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.Preamble)
	binary.LittleEndian.PutUint32(buf[4:8], h.Size)
}

// DecodeFrameHeader reads the frame header from the beginning of buf
func DecodeFrameHeader(buf []byte) (FrameHeader, error) {
	if len(buf) < FrameHeaderSize {
		return FrameHeader{}, ErrFrameTooShort{Need: FrameHeaderSize, Got: len(buf)}
	}
	return FrameHeader{
		Preamble: binary.LittleEndian.Uint32(buf[0:4]),
		Size:     binary.LittleEndian.Uint32(buf[4:8]),
	}, nil
}

// CommandHeader ... // 20 bytes
type CommandHeader struct {
	DeviceID uint32
	Command  CommandCode
	Action   ActionCode
	Arg1     uint32
	Arg2     uint32
}

// Serialize writes the command header to buf
func (h *CommandHeader) Serialize(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], h.DeviceID)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(h.Command))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(h.Action))
	binary.LittleEndian.PutUint32(buf[12:16], h.Arg1)
	binary.LittleEndian.PutUint32(buf[16:20], h.Arg2)
}

// DecodeCommandHeader reads the command header from buf (which starts right after the frame header)
func DecodeCommandHeader(buf []byte) (CommandHeader, error) {
	if len(buf) < CommandHeaderSize {
		return CommandHeader{}, ErrFrameTooShort{Need: CommandHeaderSize, Got: len(buf)}
	}
	return CommandHeader{
		DeviceID: binary.LittleEndian.Uint32(buf[0:4]),
		Command:  CommandCode(binary.LittleEndian.Uint32(buf[4:8])),
		Action:   ActionCode(binary.LittleEndian.Uint32(buf[8:12])),
		Arg1:     binary.LittleEndian.Uint32(buf[12:16]),
		Arg2:     binary.LittleEndian.Uint32(buf[16:20]),
	}, nil
}

// CommandFrame is an outbound command: frame header, command header,
// optional payload (only for ActionSet) and trailing checksum.
type CommandFrame struct {
	FrameHeader
	CommandHeader
	Payload []byte
}

// NewCommandFrame builds a command frame. The payload is ignored unless action is ActionSet.
func NewCommandFrame(deviceID uint32, cmd CommandCode, action ActionCode, arg1, arg2 uint32, payload []byte) *CommandFrame {
	f := &CommandFrame{
		FrameHeader: FrameHeader{
			Preamble: ViperCmdPreamble,
			Size:     CommandHeaderSize + ChecksumBytes,
		},
		CommandHeader: CommandHeader{
			DeviceID: deviceID,
			Command:  cmd,
			Action:   action,
			Arg1:     arg1,
			Arg2:     arg2,
		},
	}
	if action == ActionSet && len(payload) > 0 {
		f.Payload = payload
		f.Size += uint32(len(payload))
	} else if len(payload) > 0 {
		log.Debug("NewCommandFrame: dropping %d payload bytes for %s %s", len(payload), action, cmd)
	}
	return f
}

// NewReplyFrame builds a command frame the way the tracker answers: the payload
// is carried for every action, e.g. the station map word of an Ack to a Get.
func NewReplyFrame(deviceID uint32, cmd CommandCode, action ActionCode, arg1, arg2 uint32, payload []byte) *CommandFrame {
	f := NewCommandFrame(deviceID, cmd, action, arg1, arg2, nil)
	f.Payload = payload
	f.Size += uint32(len(payload))
	return f
}

// Len is the number of bytes Serialize writes
func (f *CommandFrame) Len() int {
	return FrameHeaderSize + int(f.Size)
}

// Serialize writes the whole frame including checksum to buf and returns the number of bytes written.
// buf must be at least Len() bytes long.
func (f *CommandFrame) Serialize(buf []byte) int {
	f.FrameHeader.Serialize(buf[0:FrameHeaderSize])
	f.CommandHeader.Serialize(buf[FrameHeaderSize : FrameHeaderSize+CommandHeaderSize])
	crcCount := FrameHeaderSize + CommandHeaderSize
	crcCount += copy(buf[crcCount:], f.Payload)
	binary.LittleEndian.PutUint32(buf[crcCount:crcCount+ChecksumBytes], uint32(Checksum(buf[:crcCount])))
	return crcCount + ChecksumBytes
}

// Bytes returns encoded bytes for sending
func (f *CommandFrame) Bytes() []byte {
	buf := make([]byte, f.Len())
	f.Serialize(buf)
	return buf
}

// LayerType makes CommandFrame a gopacket.SerializableLayer
func (f *CommandFrame) LayerType() gopacket.LayerType {
	return ViperLayerType
}

// SerializeTo serializes the command frame into bytes and writes the bytes to the SerializeBuffer
func (f *CommandFrame) SerializeTo(b gopacket.SerializeBuffer, opts gopacket.SerializeOptions) error {
	bytes, err := b.AppendBytes(f.Len())
	if err != nil {
		return err
	}
	f.Serialize(bytes)
	return nil
}
