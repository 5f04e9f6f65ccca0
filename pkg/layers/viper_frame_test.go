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
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testPnoFrame(sensors ...uint8) *PnoFrame {
	frame := &PnoFrame{PnoHeader: PnoHeader{DeviceID: 1, FrameCounter: 42, HpInfo: 7}}
	for _, s := range sensors {
		frame.Sensors = append(frame.Sensors, SensorRecord{
			Info:        NewSensorInfo(s, false, PosCm, OriQuaternion, s%2 == 1, false, 3, 0),
			Position:    [3]float32{float32(s), 2.5, -1},
			Orientation: [4]float32{1, 0, 0, 0},
		})
	}
	return frame
}

func TestClassify(t *testing.T) {
	require.Equal(t, FrameEmpty, Classify(nil))
	require.Equal(t, FrameUnknown, Classify([]byte{0x56, 0x50}))
	require.Equal(t, FrameUnknown, Classify([]byte{0, 0, 0, 0}))
	require.Equal(t, FrameCmd, Classify([]byte{0x56, 0x50, 0x52, 0x42}))
	require.Equal(t, FramePno, Classify([]byte{0x56, 0x50, 0x52, 0x50}))
}

func TestFrameViewWrongKind(t *testing.T) {
	empty := NewFrameView(nil)
	require.True(t, empty.IsEmpty())
	require.ErrorIs(t, empty.Err(), ErrEmptyFrame)
	require.Equal(t, NotApplicable, empty.Preamble())
	require.Equal(t, NotApplicable, empty.DeviceID())
	require.Equal(t, uint32(0), empty.Size())
	require.Nil(t, empty.Payload())

	unknown := NewFrameView([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	require.ErrorAs(t, unknown.Err(), &ErrUnknownPreamble{})
	require.Equal(t, uint32(0x04030201), unknown.Preamble())

	pno := NewFrameView(testPnoFrame(0).Bytes())
	require.Equal(t, NotApplicable, pno.Arg1())
	require.Equal(t, CommandCode(NotApplicable), pno.Command())
	require.False(t, pno.IsAck())
	_, err := pno.CommandHeader()
	require.ErrorAs(t, err, &ErrFrameKind{})

	cmd := NewFrameView(NewCommandFrame(0, CmdUnits, ActionGet, 0, 0, nil).Bytes())
	require.Equal(t, uint32(0), cmd.FrameCounter())
	require.Equal(t, uint32(0), cmd.SensorCount())
	_, err = cmd.SensorRecord(0)
	require.ErrorAs(t, err, &ErrFrameKind{})
	_, err = cmd.PnoHeader()
	require.ErrorAs(t, err, &ErrFrameKind{})
}

func TestTruncatedPnoFrame(t *testing.T) {
	view := NewFrameView([]byte{0x56, 0x50, 0x52, 0x50})
	require.True(t, view.IsPno())
	require.Equal(t, uint32(0), view.SensorCount())
	require.Equal(t, uint32(0), view.FrameCounter())
	_, err := view.SensorRecord(0)
	require.ErrorAs(t, err, &ErrIndexOutOfRange{})
	require.Empty(t, view.Payload())
	require.False(t, Verify(view.Data()))
}

func TestSensorRecordBeyondBuffer(t *testing.T) {
	data := testPnoFrame(0, 1).Bytes()
	// keep the header announcing two sensors but cut the second record
	cut := data[:FrameHeaderSize+PnoHeaderSize+SensorRecordSize+10]
	view := NewFrameView(cut)
	require.Equal(t, uint32(2), view.SensorCount())

	r, err := view.SensorRecord(0)
	require.NoError(t, err)
	require.Equal(t, uint8(0), r.Info.SensorNum())

	_, err = view.SensorRecord(1)
	var rangeErr ErrIndexOutOfRange
	require.ErrorAs(t, err, &rangeErr)
	require.Equal(t, 1, rangeErr.Count)

	records, err := view.SensorRecords()
	require.Error(t, err)
	require.Len(t, records, 1)
}

func TestPnoFrameView(t *testing.T) {
	data := testPnoFrame(0, 3, 5).Bytes()
	require.Len(t, data, FrameHeaderSize+PnoHeaderSize+3*SensorRecordSize+ChecksumBytes)
	require.True(t, Verify(data))

	view := NewFrameView(data)
	header, err := view.PnoHeader()
	require.NoError(t, err)
	require.Equal(t, PnoHeader{DeviceID: 1, FrameCounter: 42, HpInfo: 7, SensorCount: 3}, header)
	require.Equal(t, uint32(7), view.HpInfo())
	require.Len(t, view.Payload(), PnoHeaderSize+3*SensorRecordSize)

	records, err := view.SensorRecords()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, uint8(3), records[1].Info.SensorNum())
	require.True(t, records[1].Info.Button0())
	require.Equal(t, [3]float32{5, 2.5, -1}, records[2].Position)

	_, err = view.SensorRecord(3)
	require.ErrorAs(t, err, &ErrIndexOutOfRange{})
	_, err = view.SensorRecord(-1)
	require.ErrorAs(t, err, &ErrIndexOutOfRange{})
}

func TestPayloadClampedToBuffer(t *testing.T) {
	data := NewReplyFrame(0, CmdWhoAmI, ActionAck, 0, 0, []byte("VIPER-SEU")).Bytes()
	view := NewFrameView(data[:FrameHeaderSize+CommandHeaderSize+3])
	require.Equal(t, []byte("VIP"), view.Payload())

	// a size smaller than the command header gives an empty payload
	binary.LittleEndian.PutUint32(data[4:8], 2)
	require.Empty(t, NewFrameView(data).Payload())
}

func TestCheckFrame(t *testing.T) {
	data := NewCommandFrame(0, CmdBoresight, ActionSet, 1, 0, make([]byte, 16)).Bytes()
	require.NoError(t, CheckFrame(data))

	// trailing bytes after the frame are ignored
	require.NoError(t, CheckFrame(append(append([]byte{}, data...), 0xff, 0xff)))

	for i := range data {
		corrupt := append([]byte{}, data...)
		corrupt[i] ^= 0x01
		require.False(t, Verify(corrupt), "byte %d", i)
	}

	var mismatch ErrChecksumMismatch
	corrupt := append([]byte{}, data...)
	corrupt[12] ^= 0x80
	require.ErrorAs(t, CheckFrame(corrupt), &mismatch)

	require.ErrorAs(t, CheckFrame(data[:len(data)-1]), &ErrFrameTooShort{})
	require.ErrorIs(t, CheckFrame(nil), ErrEmptyFrame)
}

func TestFrameInfoDeepCopy(t *testing.T) {
	data := NewReplyFrame(4, CmdStationMap, ActionAck, 0, 0, []byte{1, 0, 0, 1}).Bytes()
	ts := time.Unix(100, 0)
	info := NewFrameInfo(data, 9, ts)

	dst := make([]byte, len(data))
	copied := info.DeepCopy(dst)
	data[FrameHeaderSize] = 0xff
	require.Equal(t, uint32(4), copied.DeviceID())
	require.Equal(t, uint32(9), copied.RxCount)
	require.Equal(t, ts, copied.Timestamp)
	require.True(t, Verify(copied.Data()))

	// the copy is bounded by the destination
	short := info.DeepCopy(make([]byte, 6))
	require.Len(t, short.Data(), 6)
	require.True(t, short.IsCmd())
	require.Equal(t, NotApplicable, short.DeviceID())
}
