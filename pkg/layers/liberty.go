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

// Liberty frames have fixed layouts selected by the output list configured
// on the device (O* command), no checksum and no preamble discrimination.

const (
	LibertyHeaderSize       = 8
	LibertyDefaultPnoSize   = LibertyHeaderSize + 6*4 + 2
	LibertyPnoSize          = LibertyHeaderSize + 3*4 + 7*4
	LibertyEulerPnoSize     = LibertyHeaderSize + 3*4 + 6*4
	LibertyStationStateSize = LibertyHeaderSize + 4
)

// LibertyHeader ... // 8 bytes
type LibertyHeader struct {
	// Magic is "LY" for Liberty and "PA" for Patriot
	Magic   [2]byte
	Station uint8
	InitCmd uint8
	Error   uint8
	// Size is the number of bytes following the header
	Size uint16
}

func DecodeLibertyHeader(buf []byte) (LibertyHeader, error) {
	if len(buf) < LibertyHeaderSize {
		return LibertyHeader{}, ErrFrameTooShort{Need: LibertyHeaderSize, Got: len(buf)}
	}
	return LibertyHeader{
		Magic:   [2]byte{buf[0], buf[1]},
		Station: buf[2],
		InitCmd: buf[3],
		Error:   buf[4],
		Size:    binary.LittleEndian.Uint16(buf[6:8]),
	}, nil
}

// LibertyDefaultPno is the default answer format for one station (O*,2,4,1)
type LibertyDefaultPno struct {
	LibertyHeader
	Position [3]float32
	// Azimuth, elevation, roll
	Euler [3]float32
}

func DecodeLibertyDefaultPno(buf []byte) (*LibertyDefaultPno, error) {
	if len(buf) < LibertyDefaultPnoSize {
		return nil, ErrFrameTooShort{Need: LibertyDefaultPnoSize, Got: len(buf)}
	}
	h, _ := DecodeLibertyHeader(buf)
	f := &LibertyDefaultPno{LibertyHeader: h}
	getFloats(buf[8:20], f.Position[:])
	getFloats(buf[20:32], f.Euler[:])
	return f, nil
}

// LibertyPno is the quaternion format (O*,8,9,11,3,7)
type LibertyPno struct {
	LibertyHeader
	Timestamp  uint32
	FrameCount uint32
	Distortion int32
	Position   [3]float32
	Quaternion [4]float32
}

func DecodeLibertyPno(buf []byte) (*LibertyPno, error) {
	if len(buf) < LibertyPnoSize {
		return nil, ErrFrameTooShort{Need: LibertyPnoSize, Got: len(buf)}
	}
	h, _ := DecodeLibertyHeader(buf)
	f := &LibertyPno{
		LibertyHeader: h,
		Timestamp:     binary.LittleEndian.Uint32(buf[8:12]),
		FrameCount:    binary.LittleEndian.Uint32(buf[12:16]),
		Distortion:    int32(binary.LittleEndian.Uint32(buf[16:20])),
	}
	getFloats(buf[20:32], f.Position[:])
	getFloats(buf[32:48], f.Quaternion[:])
	return f, nil
}

// LibertyEulerPno is the euler format (O*,8,9,11,3,5)
type LibertyEulerPno struct {
	LibertyHeader
	Timestamp  uint32
	FrameCount uint32
	Distortion int32
	Position   [3]float32
	Euler      [3]float32
}

func DecodeLibertyEulerPno(buf []byte) (*LibertyEulerPno, error) {
	if len(buf) < LibertyEulerPnoSize {
		return nil, ErrFrameTooShort{Need: LibertyEulerPnoSize, Got: len(buf)}
	}
	h, _ := DecodeLibertyHeader(buf)
	f := &LibertyEulerPno{
		LibertyHeader: h,
		Timestamp:     binary.LittleEndian.Uint32(buf[8:12]),
		FrameCount:    binary.LittleEndian.Uint32(buf[12:16]),
		Distortion:    int32(binary.LittleEndian.Uint32(buf[16:20])),
	}
	getFloats(buf[20:32], f.Position[:])
	getFloats(buf[32:44], f.Euler[:])
	return f, nil
}

// LibertyStationState is the active station state response
type LibertyStationState struct {
	LibertyHeader
	Detected uint16
	Active   uint16
}

func DecodeLibertyStationState(buf []byte) (*LibertyStationState, error) {
	if len(buf) < LibertyStationStateSize {
		return nil, ErrFrameTooShort{Need: LibertyStationStateSize, Got: len(buf)}
	}
	h, _ := DecodeLibertyHeader(buf)
	return &LibertyStationState{
		LibertyHeader: h,
		Detected:      binary.LittleEndian.Uint16(buf[8:10]),
		Active:        binary.LittleEndian.Uint16(buf[10:12]),
	}, nil
}

// Quaternion from euler angles in degrees (azimuth, elevation, roll), w first
func EulerToQuaternion(euler [3]float32) [4]float32 {
	az := float64(euler[0]) * math.Pi / 180 / 2
	el := float64(euler[1]) * math.Pi / 180 / 2
	ro := float64(euler[2]) * math.Pi / 180 / 2
	ca, sa := math.Cos(az), math.Sin(az)
	ce, se := math.Cos(el), math.Sin(el)
	cr, sr := math.Cos(ro), math.Sin(ro)
	return [4]float32{
		float32(cr*ce*ca + sr*se*sa),
		float32(sr*ce*ca - cr*se*sa),
		float32(cr*se*ca + sr*ce*sa),
		float32(cr*ce*sa - sr*se*ca),
	}
}
