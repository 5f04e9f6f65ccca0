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
	"testing"

	"github.com/stretchr/testify/require"

	"jinr.ru/greenlab/go-polhemus/pkg/layers"
)

func TestNewPoseQuaternionPassThrough(t *testing.T) {
	record := layers.SensorRecord{
		Info:        layers.NewSensorInfo(5, true, layers.PosMeter, layers.OriQuaternion, false, true, 0, 0),
		Position:    [3]float32{0.5, 0.25, 0.125},
		Orientation: [4]float32{0.5, 0.5, 0.5, 0.5},
	}
	pose := NewPose(record)
	require.Equal(t, uint8(5), pose.Sensor)
	require.True(t, pose.Virtual)
	require.True(t, pose.Button1)
	require.Equal(t, layers.PosMeter.String(), pose.PosUnits)
	require.Equal(t, record.Orientation, pose.Orientation)
}

func TestNewPoseEulerConverted(t *testing.T) {
	zero := layers.SensorRecord{
		Info: layers.NewSensorInfo(0, false, layers.PosCm, layers.OriEulerDegree, false, false, 0, 0),
	}
	require.Equal(t, [4]float32{1, 0, 0, 0}, NewPose(zero).Orientation)

	deg := layers.SensorRecord{
		Info:        layers.NewSensorInfo(0, false, layers.PosCm, layers.OriEulerDegree, false, false, 0, 0),
		Orientation: [4]float32{90, 0, 0, 0},
	}
	rad := layers.SensorRecord{
		Info:        layers.NewSensorInfo(0, false, layers.PosCm, layers.OriEulerRadian, false, false, 0, 0),
		Orientation: [4]float32{math.Pi / 2, 0, 0, 0},
	}
	qd := NewPose(deg).Orientation
	qr := NewPose(rad).Orientation
	for i := range qd {
		require.InDelta(t, qd[i], qr[i], 1e-5)
	}
	require.InDelta(t, math.Sqrt2/2, qd[0], 1e-5)
}
