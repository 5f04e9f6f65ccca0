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
	"jinr.ru/greenlab/go-polhemus/pkg/srv/control"
	"jinr.ru/greenlab/go-polhemus/pkg/srv/pno"
)

type ApiClient interface {
	Command(device string, request *control.CommandRequest) (*control.CommandResponse, error)

	StationMap(device string) (*control.StationMapResponse, error)
	SensorAction(device, action string, sensor int) (*control.StationMapResponse, error)
	StationMapReset(device string) (*control.StationMapResponse, error)
	StationMapWrite(device string) (*control.StationMapResponse, error)

	Units(device string) (*control.UnitsSetup, error)
	SetUnits(device string, units *control.UnitsSetup) error

	PnoStart(device string) error
	PnoStop(device string) error
	PnoStartAll() error
	PnoStopAll() error
	PnoLast(device string) (*pno.Frame, error)

	WhoAmI(device string) (string, error)
	Persist(device string) error
}
