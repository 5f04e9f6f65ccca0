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

package ifc

import (
	"context"

	"jinr.ru/greenlab/go-polhemus/pkg/layers"
)

// Link sends a command frame to the device and returns the command frame it answered with
type Link interface {
	Exchange(ctx context.Context, frame *layers.CommandFrame) (layers.FrameView, error)
}

type Device interface {
	GetName() string
	GetSeuID() uint32

	Command(ctx context.Context, cmd layers.CommandCode, action layers.ActionCode, arg1, arg2 uint32, payload []byte) (layers.FrameView, error)

	ReadStationMap(ctx context.Context) (*layers.StationMap, error)
	StationMap() *layers.StationMap
	ResetStationMap()
	UpdateStationMap(word uint32)
	RestoreEnabledMap(enabled uint16)
	EnableSensor(ctx context.Context, sensor int) error
	DisableSensor(ctx context.Context, sensor int) error
	WriteEnabledMap(ctx context.Context) error

	ReadUnits(ctx context.Context) (*layers.UnitsConfig, error)
	SetUnits(ctx context.Context, units *layers.UnitsConfig) error
	SetHemisphere(ctx context.Context, sensor int, hemisphere *layers.HemisphereConfig) error
	Boresight(ctx context.Context, sensor int, boresight *layers.BoresightConfig) error

	StartContinuous(ctx context.Context) error
	StopContinuous(ctx context.Context) error
	IsRunning() bool

	WhoAmI(ctx context.Context) ([]byte, error)
	Persist(ctx context.Context) error
}
