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

package pno

import (
	"math"
	"time"

	"jinr.ru/greenlab/go-polhemus/pkg/layers"
)

// Pose is one decoded sensor record.
// Orientation is always a quaternion (w, x, y, z), Euler records are converted.
type Pose struct {
	Sensor      uint8      `json:"sensor" msgpack:"sensor"`
	Virtual     bool       `json:"virtual,omitempty" msgpack:"virtual,omitempty"`
	PosUnits    string     `json:"posUnits" msgpack:"pos_units"`
	Position    [3]float32 `json:"position" msgpack:"position"`
	Orientation [4]float32 `json:"orientation" msgpack:"orientation"`
	Button0     bool       `json:"button0,omitempty" msgpack:"button0,omitempty"`
	Button1     bool       `json:"button1,omitempty" msgpack:"button1,omitempty"`
	Distortion  uint8      `json:"distortion" msgpack:"distortion"`
}

// Frame is a decoded PNO frame of one device
type Frame struct {
	Device       string    `json:"device" msgpack:"device"`
	FrameCounter uint32    `json:"frameCounter" msgpack:"frame"`
	Timestamp    time.Time `json:"timestamp" msgpack:"ts"`
	Poses        []Pose    `json:"poses" msgpack:"poses"`
}

// SensorMessage is the document published for every sensor
type SensorMessage struct {
	Device       string    `msgpack:"device"`
	FrameCounter uint32    `msgpack:"frame"`
	Timestamp    time.Time `msgpack:"ts"`
	Pose
}

func NewPose(record layers.SensorRecord) Pose {
	info := record.Info
	pose := Pose{
		Sensor:     info.SensorNum(),
		Virtual:    info.Virtual(),
		PosUnits:   info.PosUnits().String(),
		Position:   record.Position,
		Button0:    info.Button0(),
		Button1:    info.Button1(),
		Distortion: info.Distortion(),
	}
	switch info.OriUnits() {
	case layers.OriEulerDegree:
		pose.Orientation = layers.EulerToQuaternion([3]float32{
			record.Orientation[0], record.Orientation[1], record.Orientation[2]})
	case layers.OriEulerRadian:
		pose.Orientation = layers.EulerToQuaternion([3]float32{
			degrees(record.Orientation[0]), degrees(record.Orientation[1]), degrees(record.Orientation[2])})
	default:
		pose.Orientation = record.Orientation
	}
	return pose
}

// NewFrame converts the sensor records of a PNO frame
func NewFrame(device string, frameCounter uint32, ts time.Time, records []layers.SensorRecord) *Frame {
	frame := &Frame{
		Device:       device,
		FrameCounter: frameCounter,
		Timestamp:    ts,
		Poses:        make([]Pose, 0, len(records)),
	}
	for _, record := range records {
		frame.Poses = append(frame.Poses, NewPose(record))
	}
	return frame
}

func degrees(rad float32) float32 {
	return float32(float64(rad) * 180 / math.Pi)
}
