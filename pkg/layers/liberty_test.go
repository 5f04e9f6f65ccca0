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
	"testing"

	"github.com/stretchr/testify/require"
)

func libertyBuffer(size int) []byte {
	buf := make([]byte, size)
	copy(buf, "LY")
	buf[2] = 2
	binary.LittleEndian.PutUint16(buf[6:8], uint16(size-LibertyHeaderSize))
	return buf
}

func TestDecodeLibertyPno(t *testing.T) {
	buf := libertyBuffer(LibertyPnoSize)
	binary.LittleEndian.PutUint32(buf[8:12], 1000)
	binary.LittleEndian.PutUint32(buf[12:16], 12)
	binary.LittleEndian.PutUint32(buf[16:20], uint32(0xffffffff))
	putFloats(buf[20:32], []float32{1, 2, 3})
	putFloats(buf[32:48], []float32{1, 0, 0, 0})

	f, err := DecodeLibertyPno(buf)
	require.NoError(t, err)
	require.Equal(t, [2]byte{'L', 'Y'}, f.Magic)
	require.Equal(t, uint8(2), f.Station)
	require.Equal(t, uint16(LibertyPnoSize-LibertyHeaderSize), f.Size)
	require.Equal(t, uint32(1000), f.Timestamp)
	require.Equal(t, uint32(12), f.FrameCount)
	require.Equal(t, int32(-1), f.Distortion)
	require.Equal(t, [3]float32{1, 2, 3}, f.Position)
	require.Equal(t, [4]float32{1, 0, 0, 0}, f.Quaternion)

	_, err = DecodeLibertyPno(buf[:LibertyPnoSize-1])
	require.ErrorAs(t, err, &ErrFrameTooShort{})
}

func TestDecodeLibertyEuler(t *testing.T) {
	buf := libertyBuffer(LibertyDefaultPnoSize)
	putFloats(buf[8:20], []float32{4, 5, 6})
	putFloats(buf[20:32], []float32{90, 0, 0})
	f, err := DecodeLibertyDefaultPno(buf)
	require.NoError(t, err)
	require.Equal(t, [3]float32{4, 5, 6}, f.Position)
	require.Equal(t, [3]float32{90, 0, 0}, f.Euler)

	buf = libertyBuffer(LibertyEulerPnoSize)
	putFloats(buf[32:44], []float32{0, 45, 0})
	e, err := DecodeLibertyEulerPno(buf)
	require.NoError(t, err)
	require.Equal(t, [3]float32{0, 45, 0}, e.Euler)

	_, err = DecodeLibertyHeader(buf[:4])
	require.ErrorAs(t, err, &ErrFrameTooShort{})
}

func TestEulerToQuaternion(t *testing.T) {
	q := EulerToQuaternion([3]float32{0, 0, 0})
	require.Equal(t, [4]float32{1, 0, 0, 0}, q)

	q = EulerToQuaternion([3]float32{90, 0, 0})
	half := float32(math.Sqrt2 / 2)
	require.InDelta(t, half, q[0], 1e-6)
	require.InDelta(t, 0, q[1], 1e-6)
	require.InDelta(t, 0, q[2], 1e-6)
	require.InDelta(t, half, q[3], 1e-6)

	var norm float64
	for _, v := range EulerToQuaternion([3]float32{30, -20, 75}) {
		norm += float64(v) * float64(v)
	}
	require.InDelta(t, 1, norm, 1e-5)
}
