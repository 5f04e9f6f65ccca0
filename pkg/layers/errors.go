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
	"errors"
	"fmt"
)

// ErrEmptyFrame returned for a zero length buffer
var ErrEmptyFrame = errors.New("Empty frame")

// ErrChecksumMismatch returned when the trailing checksum does not match the frame contents
type ErrChecksumMismatch struct {
	Expected uint16
	Actual   uint32
}

func (e ErrChecksumMismatch) Error() string {
	return fmt.Sprintf("Checksum mismatch: calculated 0x%04x, frame carries 0x%08x", e.Expected, e.Actual)
}

// ErrUnknownPreamble returned when a buffer starts with neither command nor PNO preamble
type ErrUnknownPreamble struct {
	Preamble uint32
}

func (e ErrUnknownPreamble) Error() string {
	return fmt.Sprintf("Unknown frame preamble: 0x%08x", e.Preamble)
}

// ErrDeviceNak returned when the device rejects a command
type ErrDeviceNak struct {
	DeviceID uint32
	Command  CommandCode
	Arg1     uint32
	Arg2     uint32
}

func (e ErrDeviceNak) Error() string {
	return fmt.Sprintf("Device %d rejected command %s (arg1: %d arg2: %d)", e.DeviceID, e.Command, e.Arg1, e.Arg2)
}

// ErrIndexOutOfRange returned when a sensor or source index is beyond the available count
type ErrIndexOutOfRange struct {
	Index int
	Count int
}

func (e ErrIndexOutOfRange) Error() string {
	return fmt.Sprintf("Index %d out of range, count is %d", e.Index, e.Count)
}

// ErrFrameKind returned when a frame of one kind is used where another is required
type ErrFrameKind struct {
	Want FrameKind
	Got  FrameKind
}

func (e ErrFrameKind) Error() string {
	return fmt.Sprintf("Wrong frame kind: want %s, got %s", e.Want, e.Got)
}

// ErrFrameTooShort returned when a buffer is shorter than the structure it must hold
type ErrFrameTooShort struct {
	Need int
	Got  int
}

func (e ErrFrameTooShort) Error() string {
	return fmt.Sprintf("Frame too short: need %d bytes, got %d", e.Need, e.Got)
}

// ErrFrameTooLarge returned when a frame announces a size beyond the configured limit
type ErrFrameTooLarge struct {
	Size  uint32
	Limit uint32
}

func (e ErrFrameTooLarge) Error() string {
	return fmt.Sprintf("Frame too large: size %d, limit %d", e.Size, e.Limit)
}
