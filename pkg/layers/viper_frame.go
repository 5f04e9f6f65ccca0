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
	"time"
)

type FrameKind int

const (
	FrameEmpty FrameKind = iota
	FrameCmd
	FramePno
	FrameUnknown
)

func (k FrameKind) String() string {
	switch k {
	case FrameEmpty:
		return "empty"
	case FrameCmd:
		return "command"
	case FramePno:
		return "pno"
	default:
		return "unknown"
	}
}

// Classify tells the kind of frame by its preamble. It never fails.
func Classify(data []byte) FrameKind {
	if len(data) == 0 {
		return FrameEmpty
	}
	if len(data) < 4 {
		return FrameUnknown
	}
	switch binary.LittleEndian.Uint32(data[0:4]) {
	case ViperCmdPreamble:
		return FrameCmd
	case ViperPnoPreamble:
		return FramePno
	default:
		return FrameUnknown
	}
}

// FrameView interprets a received buffer without copying it.
// The buffer is borrowed: it must stay valid and unmodified while the view is used.
// Accessors called on a frame of the wrong kind return NotApplicable (or zero/nil),
// they never read outside the buffer.
type FrameView struct {
	data []byte
	kind FrameKind
}

// NewFrameView classifies data once and binds the view to it
func NewFrameView(data []byte) FrameView {
	return FrameView{data: data, kind: Classify(data)}
}

func (v FrameView) Kind() FrameKind {
	return v.kind
}

// Data returns the borrowed buffer
func (v FrameView) Data() []byte {
	return v.data
}

func (v FrameView) IsEmpty() bool {
	return v.kind == FrameEmpty
}

func (v FrameView) IsCmd() bool {
	return v.kind == FrameCmd
}

func (v FrameView) IsPno() bool {
	return v.kind == FramePno
}

// Err reports why the buffer can not be decoded, nil for command and PNO frames
func (v FrameView) Err() error {
	switch v.kind {
	case FrameEmpty:
		return ErrEmptyFrame
	case FrameUnknown:
		return ErrUnknownPreamble{Preamble: v.Preamble()}
	}
	return nil
}

func (v FrameView) word(offset int) (uint32, bool) {
	if offset+4 > len(v.data) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(v.data[offset : offset+4]), true
}

func (v FrameView) cmdWord(offset int) uint32 {
	if v.kind != FrameCmd {
		return NotApplicable
	}
	w, ok := v.word(FrameHeaderSize + offset)
	if !ok {
		return NotApplicable
	}
	return w
}

// Preamble returns the first word of the buffer, NotApplicable if there are less than 4 bytes
func (v FrameView) Preamble() uint32 {
	w, ok := v.word(0)
	if !ok {
		return NotApplicable
	}
	return w
}

// Size returns the size field of the frame header, 0 if the buffer is not a Viper frame
func (v FrameView) Size() uint32 {
	if v.kind != FrameCmd && v.kind != FramePno {
		return 0
	}
	w, _ := v.word(4)
	return w
}

// DeviceID returns the SEU id of a command or PNO frame
func (v FrameView) DeviceID() uint32 {
	if v.kind != FrameCmd && v.kind != FramePno {
		return NotApplicable
	}
	w, ok := v.word(FrameHeaderSize)
	if !ok {
		return NotApplicable
	}
	return w
}

func (v FrameView) Command() CommandCode {
	return CommandCode(v.cmdWord(4))
}

func (v FrameView) Action() ActionCode {
	return ActionCode(v.cmdWord(8))
}

func (v FrameView) Arg1() uint32 {
	return v.cmdWord(12)
}

func (v FrameView) Arg2() uint32 {
	return v.cmdWord(16)
}

func (v FrameView) IsAck() bool {
	return v.kind == FrameCmd && v.Action() == ActionAck
}

func (v FrameView) IsNak() bool {
	return v.kind == FrameCmd && v.Action() == ActionNak
}

// Nak returns ErrDeviceNak if the frame is a rejected command
func (v FrameView) Nak() error {
	if !v.IsNak() {
		return nil
	}
	return ErrDeviceNak{
		DeviceID: v.DeviceID(),
		Command:  v.Command(),
		Arg1:     v.Arg1(),
		Arg2:     v.Arg2(),
	}
}

// CommandHeader decodes the command header of a command frame
func (v FrameView) CommandHeader() (CommandHeader, error) {
	if v.kind != FrameCmd {
		return CommandHeader{}, ErrFrameKind{Want: FrameCmd, Got: v.kind}
	}
	if len(v.data) < FrameHeaderSize {
		return CommandHeader{}, ErrFrameTooShort{Need: FrameHeaderSize + CommandHeaderSize, Got: len(v.data)}
	}
	return DecodeCommandHeader(v.data[FrameHeaderSize:])
}

// FrameCounter returns the device frame counter of a PNO frame, 0 otherwise
func (v FrameView) FrameCounter() uint32 {
	return v.pnoWord(4)
}

// HpInfo returns the hemisphere/position info word of a PNO frame, 0 otherwise
func (v FrameView) HpInfo() uint32 {
	return v.pnoWord(8)
}

// SensorCount returns the number of sensor records announced by a PNO frame, 0 otherwise
func (v FrameView) SensorCount() uint32 {
	return v.pnoWord(12)
}

func (v FrameView) pnoWord(offset int) uint32 {
	if v.kind != FramePno {
		return 0
	}
	w, _ := v.word(FrameHeaderSize + offset)
	return w
}

// PnoHeader decodes the header of a PNO frame
func (v FrameView) PnoHeader() (PnoHeader, error) {
	if v.kind != FramePno {
		return PnoHeader{}, ErrFrameKind{Want: FramePno, Got: v.kind}
	}
	if len(v.data) < FrameHeaderSize {
		return PnoHeader{}, ErrFrameTooShort{Need: FrameHeaderSize + PnoHeaderSize, Got: len(v.data)}
	}
	return DecodePnoHeader(v.data[FrameHeaderSize:])
}

// Payload returns the bytes carried by the frame.
// For a command frame it is the data after the command header, for a PNO frame
// it is everything after the frame header. The checksum is never included.
// The slice is cut to the bytes actually present in the buffer.
func (v FrameView) Payload() []byte {
	var offset, length int
	switch v.kind {
	case FrameCmd:
		offset = FrameHeaderSize + CommandHeaderSize
		length = int(int64(v.Size()) - CommandHeaderSize - ChecksumBytes)
	case FramePno:
		offset = FrameHeaderSize
		length = int(int64(v.Size()) - ChecksumBytes)
	default:
		return nil
	}
	if offset > len(v.data) {
		return nil
	}
	if length <= 0 {
		return v.data[offset:offset]
	}
	end := offset + length
	if end > len(v.data) || end < offset {
		end = len(v.data)
	}
	return v.data[offset:end]
}

// SensorRecord decodes the sensor record number i of a PNO frame
func (v FrameView) SensorRecord(i int) (SensorRecord, error) {
	if v.kind != FramePno {
		return SensorRecord{}, ErrFrameKind{Want: FramePno, Got: v.kind}
	}
	count := int(v.SensorCount())
	if i < 0 || i >= count {
		return SensorRecord{}, ErrIndexOutOfRange{Index: i, Count: count}
	}
	offset := FrameHeaderSize + PnoHeaderSize + i*SensorRecordSize
	if offset+SensorRecordSize > len(v.data) {
		available := (len(v.data) - FrameHeaderSize - PnoHeaderSize) / SensorRecordSize
		if available < 0 {
			available = 0
		}
		return SensorRecord{}, ErrIndexOutOfRange{Index: i, Count: available}
	}
	return DecodeSensorRecord(v.data[offset : offset+SensorRecordSize])
}

// SensorRecords decodes all sensor records present in a PNO frame
func (v FrameView) SensorRecords() ([]SensorRecord, error) {
	if v.kind != FramePno {
		return nil, ErrFrameKind{Want: FramePno, Got: v.kind}
	}
	var records []SensorRecord
	for i := 0; i < int(v.SensorCount()); i++ {
		r, err := v.SensorRecord(i)
		if err != nil {
			return records, err
		}
		records = append(records, r)
	}
	return records, nil
}

// Verify reports whether buf holds a complete command or PNO frame with a valid checksum
func Verify(buf []byte) bool {
	return CheckFrame(buf) == nil
}

// CheckFrame validates the trailing checksum of a frame
func CheckFrame(buf []byte) error {
	v := NewFrameView(buf)
	if err := v.Err(); err != nil {
		return err
	}
	if len(buf) < FrameHeaderSize {
		return ErrFrameTooShort{Need: FrameHeaderSize, Got: len(buf)}
	}
	size := int64(v.Size())
	total := FrameHeaderSize + size
	if size < ChecksumBytes || total > int64(len(buf)) {
		return ErrFrameTooShort{Need: int(total), Got: len(buf)}
	}
	crcOffset := int(total) - ChecksumBytes
	expected := Checksum(buf[:crcOffset])
	actual := binary.LittleEndian.Uint32(buf[crcOffset:int(total)])
	if uint32(expected) != actual {
		return ErrChecksumMismatch{Expected: expected, Actual: actual}
	}
	return nil
}

// FrameInfo is a received frame together with receive bookkeeping
type FrameInfo struct {
	FrameView
	// RxCount is the host side receive counter
	RxCount uint32
	// RxErr is the transport error that came with the frame, if any
	RxErr     error
	Timestamp time.Time
}

func NewFrameInfo(data []byte, rxCount uint32, ts time.Time) *FrameInfo {
	return &FrameInfo{
		FrameView: NewFrameView(data),
		RxCount:   rxCount,
		Timestamp: ts,
	}
}

// DeepCopy copies the borrowed frame bytes into dst (at most len(dst) bytes)
// and returns a FrameInfo bound to dst.
func (fi *FrameInfo) DeepCopy(dst []byte) *FrameInfo {
	n := copy(dst, fi.data)
	return &FrameInfo{
		FrameView: NewFrameView(dst[:n]),
		RxCount:   fi.RxCount,
		RxErr:     fi.RxErr,
		Timestamp: fi.Timestamp,
	}
}
