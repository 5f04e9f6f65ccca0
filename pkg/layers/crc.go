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

const (
	// ChecksumBytes is the width of the checksum field at the end of each Viper frame.
	// Only the low 16 bits are used, the rest is zero.
	ChecksumBytes = 4
)

// parity of each nibble value
var nibbleParity = [16]uint32{0, 1, 1, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0, 1, 1, 0}

func crc16(crc uint32, b byte) uint32 {
	data := (uint32(b) ^ crc) & 0xff
	crc >>= 8
	if nibbleParity[data&0xf]^nibbleParity[data>>4] != 0 {
		crc ^= 0xc001
	}
	data <<= 6
	crc ^= data
	data <<= 1
	crc ^= data
	return crc
}

// Checksum calculates the Viper CRC-16 over data.
// This is not the textbook CRC-16, it is the variant the tracker firmware expects.
func Checksum(data []byte) uint16 {
	var crc uint32
	for _, b := range data {
		crc = crc16(crc, b)
	}
	return uint16(crc)
}
