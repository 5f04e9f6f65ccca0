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
	"net/http"

	deviceifc "jinr.ru/greenlab/go-polhemus/pkg/device/ifc"
	"jinr.ru/greenlab/go-polhemus/pkg/layers"
	"jinr.ru/greenlab/go-polhemus/pkg/srv/pno"
)

type ControlServer interface {
	Run() error

	GetDeviceByName(deviceName string) (deviceifc.Device, error)
	GetAllDevices() map[string]deviceifc.Device

	// station map operations also update the stored state and the metrics
	ReadStationMap(ctx context.Context, deviceName string) (*layers.StationMap, error)
	EnableSensor(ctx context.Context, deviceName string, sensor int) (*layers.StationMap, error)
	DisableSensor(ctx context.Context, deviceName string, sensor int) (*layers.StationMap, error)
	ResetStationMap(deviceName string) (*layers.StationMap, error)

	LastPno(deviceName string) (*pno.Frame, error)
	MetricsHandler() http.Handler
}

type ApiServer interface {
	Run() error
}
