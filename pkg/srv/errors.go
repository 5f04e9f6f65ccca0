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

package srv

import (
	"fmt"
)

// ErrGetDeviceName returned when the packet metadata does not carry the device name
type ErrGetDeviceName struct {
	What string
}

func (e ErrGetDeviceName) Error() string {
	return fmt.Sprintf("Error while getting device name: %s", e.What)
}

type ErrUnknownOperation struct {
	What string
}

func (e ErrUnknownOperation) Error() string {
	return fmt.Sprintf("Unknown operation: %s", e.What)
}

// ErrNotConnected returned when a command is sent to a device with no open link
type ErrNotConnected struct {
	Device string
}

func (e ErrNotConnected) Error() string {
	return fmt.Sprintf("Device is not connected: %s", e.Device)
}

// ErrExchangeBusy returned when a command with the same code is already waiting for its answer
type ErrExchangeBusy struct {
	Device  string
	Command string
}

func (e ErrExchangeBusy) Error() string {
	return fmt.Sprintf("Command is already pending: device: %s cmd: %s", e.Device, e.Command)
}

// ErrTimeout returned when the device does not answer a command in time
type ErrTimeout struct {
	Device  string
	Command string
}

func (e ErrTimeout) Error() string {
	return fmt.Sprintf("Timeout while waiting for answer: device: %s cmd: %s", e.Device, e.Command)
}
