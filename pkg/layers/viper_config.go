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

// Payloads of Set commands and Get responses

// UnitsConfig ... // 8 bytes
type UnitsConfig struct {
	Pos PosUnits `json:"pos"`
	Ori OriUnits `json:"ori"`
}

func (c *UnitsConfig) Bytes() []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(c.Pos))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(c.Ori))
	return buf
}

func DecodeUnitsConfig(payload []byte) (*UnitsConfig, error) {
	if len(payload) < 8 {
		return nil, ErrFrameTooShort{Need: 8, Got: len(payload)}
	}
	return &UnitsConfig{
		Pos: PosUnits(binary.LittleEndian.Uint32(payload[0:4])),
		Ori: OriUnits(binary.LittleEndian.Uint32(payload[4:8])),
	}, nil
}

// HemisphereConfig ... // 16 bytes
type HemisphereConfig struct {
	TrackEnabled bool       `json:"track_enabled"`
	Params       [3]float32 `json:"params"`
}

func (c *HemisphereConfig) Bytes() []byte {
	buf := make([]byte, 16)
	if c.TrackEnabled {
		binary.LittleEndian.PutUint32(buf[0:4], 1)
	}
	putFloats(buf[4:], c.Params[:])
	return buf
}

func DecodeHemisphereConfig(payload []byte) (*HemisphereConfig, error) {
	if len(payload) < 16 {
		return nil, ErrFrameTooShort{Need: 16, Got: len(payload)}
	}
	c := &HemisphereConfig{TrackEnabled: binary.LittleEndian.Uint32(payload[0:4]) != 0}
	getFloats(payload[4:], c.Params[:])
	return c, nil
}

// BoresightConfig ... // 16 bytes
type BoresightConfig struct {
	Params [4]float32 `json:"params"`
}

func (c *BoresightConfig) Bytes() []byte {
	buf := make([]byte, 16)
	putFloats(buf, c.Params[:])
	return buf
}

func DecodeBoresightConfig(payload []byte) (*BoresightConfig, error) {
	if len(payload) < 16 {
		return nil, ErrFrameTooShort{Need: 16, Got: len(payload)}
	}
	c := &BoresightConfig{}
	getFloats(payload, c.Params[:])
	return c, nil
}

func putFloats(buf []byte, values []float32) {
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(v))
	}
}

func getFloats(buf []byte, values []float32) {
	for i := range values {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4 : i*4+4]))
	}
}
