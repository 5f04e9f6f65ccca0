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
	"math/bits"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultStationMap(t *testing.T) {
	m := NewStationMap(DefaultStationMap)
	require.Equal(t, uint16(0x0001), m.SensorMap())
	require.Equal(t, uint8(0x1), m.SourceMap())
	require.Equal(t, 1, m.SensorDetectedCount)
	require.Equal(t, 1, m.SourceDetectedCount)
	require.Equal(t, 1, m.EnabledCount)
	require.True(t, m.IsDetected(0))
	require.True(t, m.IsSourceDetected(0))
	require.False(t, m.IsSourceDetected(1))
	require.Equal(t, []byte{0x01, 0x00, 0x00, 0x01}, m.Bytes())
}

func TestStationMapCountsMatchPopcount(t *testing.T) {
	for _, word := range []uint32{0, 0xffffffff, 0x0f00ffff, 0x0300000f, 0x00ff0000, 0xf0000000, 0x0a00a5a5} {
		m := NewStationMap(word)
		require.Equal(t, bits.OnesCount16(uint16(word)), m.SensorDetectedCount, "0x%08x", word)
		require.Equal(t, bits.OnesCount32((word>>24)&0xf), m.SourceDetectedCount, "0x%08x", word)
		require.Equal(t, m.SensorDetectedCount, m.EnabledCount, "0x%08x", word)
	}
}

func TestStationMapReservedBitsIgnored(t *testing.T) {
	m := NewStationMap(0xf0ff0000)
	require.Equal(t, 0, m.SensorDetectedCount)
	require.Equal(t, 0, m.SourceDetectedCount)
}

func TestSetEnabledIntersect(t *testing.T) {
	m := NewStationMap(0x0100000f)
	require.Equal(t, uint16(0x000f), m.EnabledMap())

	require.NoError(t, m.SetEnabled(2))
	require.Equal(t, uint16(0x0004), m.EnabledMap())
	require.Equal(t, 1, m.EnabledCount)

	require.NoError(t, m.SetEnabled(1))
	require.Equal(t, uint16(0), m.EnabledMap())
	require.Equal(t, 0, m.EnabledCount)
}

func TestSetEnabledUnion(t *testing.T) {
	m := NewStationMap(0x01000003)
	m.Policy = EnableUnion
	require.NoError(t, m.SetEnabled(5))
	require.Equal(t, uint16(0x0023), m.EnabledMap())
	require.Equal(t, 3, m.EnabledCount)
	// enabled but not detected
	require.False(t, m.IsEnabled(5))
	require.True(t, m.IsEnabled(1))

	require.NoError(t, m.SetDisabled(0))
	require.Equal(t, uint16(0x0022), m.EnabledMap())
}

func TestSetEnabledOutOfRange(t *testing.T) {
	m := NewStationMap(DefaultStationMap)
	require.ErrorAs(t, m.SetEnabled(16), &ErrIndexOutOfRange{})
	require.ErrorAs(t, m.SetEnabled(-1), &ErrIndexOutOfRange{})
	require.ErrorAs(t, m.SetDisabled(16), &ErrIndexOutOfRange{})
	require.Equal(t, uint16(1), m.EnabledMap())
	require.False(t, m.IsDetected(16))
	require.False(t, m.IsEnabled(-1))
}

func TestUpdateKeepsEnabledMap(t *testing.T) {
	m := NewStationMap(DefaultStationMap)
	m.Update(0x0300ffff)
	require.Equal(t, 16, m.SensorDetectedCount)
	require.Equal(t, 2, m.SourceDetectedCount)
	require.Equal(t, uint16(1), m.EnabledMap())
	require.Equal(t, 1, m.EnabledCount)

	other := NewStationMap(0x0300ffff)
	require.True(t, m.Equal(other))
	require.False(t, m.Equal(nil))
}

func TestLoadDefault(t *testing.T) {
	m := NewStationMap(0x0f00ffff)
	require.NoError(t, m.SetDisabled(3))
	m.LoadDefault(DefaultStationMap)
	require.Equal(t, DefaultStationMap, m.Word())
	require.Equal(t, 1, m.SensorDetectedCount)
	require.Equal(t, uint16(1), m.EnabledMap())
}

func TestDecodeStationMap(t *testing.T) {
	m, err := DecodeStationMap([]byte{0x07, 0x00, 0x00, 0x03})
	require.NoError(t, err)
	require.Equal(t, uint32(0x03000007), m.Word())
	require.Equal(t, 3, m.SensorDetectedCount)

	_, err = DecodeStationMap([]byte{0x07})
	require.ErrorAs(t, err, &ErrFrameTooShort{})
}

func TestParseEnablePolicy(t *testing.T) {
	for s, want := range map[string]EnablePolicy{"": EnableIntersect, "AND": EnableIntersect, "union": EnableUnion, "or": EnableUnion} {
		p, err := ParseEnablePolicy(s)
		require.NoError(t, err)
		require.Equal(t, want, p, s)
	}
	_, err := ParseEnablePolicy("xor")
	require.Error(t, err)
	require.Equal(t, "union", EnableUnion.String())
}
