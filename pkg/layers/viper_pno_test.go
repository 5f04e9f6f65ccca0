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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSensorInfoFields(t *testing.T) {
	info := NewSensorInfo(12, true, PosMeter, OriEulerRadian, false, true, 200, 0x3ff)
	require.Equal(t, uint8(12), info.SensorNum())
	require.True(t, info.Virtual())
	require.Equal(t, PosMeter, info.PosUnits())
	require.Equal(t, OriEulerRadian, info.OriUnits())
	require.False(t, info.Button0())
	require.True(t, info.Button1())
	require.Equal(t, uint8(200), info.Distortion())
	require.Equal(t, uint16(0x3ff), info.AuxInput())
}

func TestSensorInfoBitLayout(t *testing.T) {
	require.Equal(t, SensorInfo(0x05), NewSensorInfo(5, false, PosInch, OriEulerDegree, false, false, 0, 0))
	require.Equal(t, SensorInfo(0x80), NewSensorInfo(0, true, PosInch, OriEulerDegree, false, false, 0, 0))
	require.Equal(t, SensorInfo(0x0200|0x0800), NewSensorInfo(0, false, PosCm, OriQuaternion, false, false, 0, 0))
	require.Equal(t, SensorInfo(1<<12), NewSensorInfo(0, false, PosInch, OriEulerDegree, true, false, 0, 0))
	require.Equal(t, SensorInfo(0xff<<14), NewSensorInfo(0, false, PosInch, OriEulerDegree, false, false, 0xff, 0))
	require.Equal(t, SensorInfo(1<<22), NewSensorInfo(0, false, PosInch, OriEulerDegree, false, false, 0, 1))
	// the sensor number is 7 bits wide
	require.Equal(t, uint8(0x7f), NewSensorInfo(0xff, false, PosInch, OriEulerDegree, false, false, 0, 0).SensorNum())
}

func TestSensorRecordRoundTrip(t *testing.T) {
	record := SensorRecord{
		Info:        NewSensorInfo(2, false, PosCm, OriQuaternion, false, false, 0, 0),
		Position:    [3]float32{1.5, -2.25, 30},
		Orientation: [4]float32{0.5, 0.5, 0.5, 0.5},
	}
	buf := make([]byte, SensorRecordSize)
	record.Serialize(buf)
	decoded, err := DecodeSensorRecord(buf)
	require.NoError(t, err)
	require.Equal(t, record, decoded)

	_, err = DecodeSensorRecord(buf[:SensorRecordSize-1])
	require.ErrorAs(t, err, &ErrFrameTooShort{})
	_, err = DecodePnoHeader(buf[:PnoHeaderSize-1])
	require.ErrorAs(t, err, &ErrFrameTooShort{})
}

func TestPnoFrameSetsSensorCount(t *testing.T) {
	frame := &PnoFrame{PnoHeader: PnoHeader{SensorCount: 9}, Sensors: make([]SensorRecord, 2)}
	view := NewFrameView(frame.Bytes())
	require.Equal(t, uint32(2), view.SensorCount())
	require.Equal(t, uint32(PnoHeaderSize+2*SensorRecordSize+ChecksumBytes), view.Size())
}
