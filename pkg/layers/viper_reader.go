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
	"io"
)

const (
	// ViperMaxFrameSize is large enough for a PNO frame with all 16 sensors
	// and the largest command payloads
	ViperMaxFrameSize = 4096
)

// ReadFrame reads one complete Viper frame from a byte stream.
// The returned buffer holds header, body and checksum, the checksum is not verified.
func ReadFrame(r io.Reader, maxFrameSize uint32) ([]byte, error) {
	if maxFrameSize < FrameHeaderSize+ChecksumBytes {
		maxFrameSize = ViperMaxFrameSize
	}
	var header [FrameHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	preamble := binary.LittleEndian.Uint32(header[0:4])
	if preamble != ViperCmdPreamble && preamble != ViperPnoPreamble {
		return nil, ErrUnknownPreamble{Preamble: preamble}
	}
	size := binary.LittleEndian.Uint32(header[4:8])
	if size < ChecksumBytes {
		return nil, ErrFrameTooShort{Need: ChecksumBytes, Got: int(size)}
	}
	if size > maxFrameSize-FrameHeaderSize {
		return nil, ErrFrameTooLarge{Size: size, Limit: maxFrameSize - FrameHeaderSize}
	}
	buf := make([]byte, FrameHeaderSize+int(size))
	copy(buf, header[:])
	if _, err := io.ReadFull(r, buf[FrameHeaderSize:]); err != nil {
		// the header announced a body, so running out here is a cut frame
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf, nil
}
