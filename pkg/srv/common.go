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

package srv

import (
	"context"
	"io"
	"time"

	"github.com/google/gopacket"

	"jinr.ru/greenlab/go-polhemus/pkg/config"
)

// InPacket is one complete frame read from a device link
type InPacket struct {
	Data []byte
	gopacket.CaptureInfo
}

// NewInPacket wraps a frame, the device name goes to the ancillary data
func NewInPacket(data []byte, deviceName string) InPacket {
	return InPacket{
		Data: data,
		CaptureInfo: gopacket.CaptureInfo{
			Timestamp:     time.Now(),
			CaptureLength: len(data),
			Length:        len(data),
			AncillaryData: []interface{}{deviceName},
		},
	}
}

// GetDeviceName returns the name of the device that sent the packet
func GetDeviceName(packet gopacket.Packet) (string, error) {
	meta := packet.Metadata()
	if len(meta.CaptureInfo.AncillaryData) >= 1 {
		deviceName, ok := meta.CaptureInfo.AncillaryData[0].(string)
		if !ok {
			return "", ErrGetDeviceName{What: "can not cast ancillary data to string"}
		}
		return deviceName, nil
	}
	return "", ErrGetDeviceName{What: "not enough ancillary data"}
}

type Server struct {
	context.Context
	*config.Config
	ChIn chan InPacket
}

// ReadPacketData reads the input channel and returns packet data and metadata.
// This method is from PacketDataSource interface.
func (s *Server) ReadPacketData() ([]byte, gopacket.CaptureInfo, error) {
	select {
	case p := <-s.ChIn:
		return p.Data, p.CaptureInfo, nil
	case <-s.Context.Done():
		return nil, gopacket.CaptureInfo{}, io.EOF
	}
}
