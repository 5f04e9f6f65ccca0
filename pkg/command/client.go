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

package command

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/imroc/req"

	"jinr.ru/greenlab/go-polhemus/pkg/command/ifc"
	"jinr.ru/greenlab/go-polhemus/pkg/config"
	"jinr.ru/greenlab/go-polhemus/pkg/srv/control"
	"jinr.ru/greenlab/go-polhemus/pkg/srv/pno"
)

type ApiClient struct {
	*config.Config
	ApiPrefix string
}

var _ ifc.ApiClient = &ApiClient{}

func NewApiClient(cfg *config.Config) ifc.ApiClient {
	return &ApiClient{
		Config:    cfg,
		ApiPrefix: fmt.Sprintf("http://%s%s", cfg.ApiAddress, control.ApiPrefix),
	}
}

// ErrApi returned when the server answers with a status other than 200
type ErrApi struct {
	Status  string
	Message string
}

func (e ErrApi) Error() string {
	if e.Message == "" {
		return e.Status
	}
	return fmt.Sprintf("%s: %s", e.Status, e.Message)
}

func checkStatus(r *req.Resp) error {
	if r.Response().StatusCode != http.StatusOK {
		return ErrApi{
			Status:  r.Response().Status,
			Message: strings.TrimSpace(r.String()),
		}
	}
	return nil
}

func (c *ApiClient) getJSON(url string, v interface{}) error {
	r, err := req.Get(url)
	if err != nil {
		return err
	}
	if err := checkStatus(r); err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	return r.ToJSON(v)
}

func (c *ApiClient) postJSON(url string, body interface{}, v interface{}) error {
	var r *req.Resp
	var err error
	if body == nil {
		r, err = req.Post(url)
	} else {
		r, err = req.Post(url, req.BodyJSON(body))
	}
	if err != nil {
		return err
	}
	if err := checkStatus(r); err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	return r.ToJSON(v)
}

// Command sends a raw command to a device and returns its answer
func (c *ApiClient) Command(device string, request *control.CommandRequest) (*control.CommandResponse, error) {
	resp := &control.CommandResponse{}
	if err := c.postJSON(fmt.Sprintf("%s/cmd/%s", c.ApiPrefix, device), request, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// StationMap reads the station map from a device
func (c *ApiClient) StationMap(device string) (*control.StationMapResponse, error) {
	m := &control.StationMapResponse{}
	if err := c.getJSON(fmt.Sprintf("%s/stationmap/%s", c.ApiPrefix, device), m); err != nil {
		return nil, err
	}
	return m, nil
}

// SensorAction enables or disables a sensor of a device
func (c *ApiClient) SensorAction(device, action string, sensor int) (*control.StationMapResponse, error) {
	m := &control.StationMapResponse{}
	url := fmt.Sprintf("%s/stationmap/%s/%s/%d", c.ApiPrefix, device, action, sensor)
	if err := c.postJSON(url, nil, m); err != nil {
		return nil, err
	}
	return m, nil
}

// StationMapReset loads the factory station map for a device
// StationMapWrite sends the enabled map kept by the server to the device
func (c *ApiClient) StationMapWrite(device string) (*control.StationMapResponse, error) {
	m := &control.StationMapResponse{}
	if err := c.postJSON(fmt.Sprintf("%s/stationmap/%s/write", c.ApiPrefix, device), nil, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *ApiClient) StationMapReset(device string) (*control.StationMapResponse, error) {
	m := &control.StationMapResponse{}
	if err := c.postJSON(fmt.Sprintf("%s/stationmap/%s/reset", c.ApiPrefix, device), nil, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (c *ApiClient) Units(device string) (*control.UnitsSetup, error) {
	units := &control.UnitsSetup{}
	if err := c.getJSON(fmt.Sprintf("%s/units/%s", c.ApiPrefix, device), units); err != nil {
		return nil, err
	}
	return units, nil
}

func (c *ApiClient) SetUnits(device string, units *control.UnitsSetup) error {
	return c.postJSON(fmt.Sprintf("%s/units/%s", c.ApiPrefix, device), units, nil)
}

// PnoStart sends request to start continuous PNO output for a device
func (c *ApiClient) PnoStart(device string) error {
	return c.getJSON(fmt.Sprintf("%s/pno/start/%s", c.ApiPrefix, device), nil)
}

// PnoStop sends request to stop continuous PNO output for a device
func (c *ApiClient) PnoStop(device string) error {
	return c.getJSON(fmt.Sprintf("%s/pno/stop/%s", c.ApiPrefix, device), nil)
}

// PnoStartAll sends request to start continuous PNO output for all devices
func (c *ApiClient) PnoStartAll() error {
	return c.getJSON(fmt.Sprintf("%s/pno/start", c.ApiPrefix), nil)
}

// PnoStopAll sends request to stop continuous PNO output for all devices
func (c *ApiClient) PnoStopAll() error {
	return c.getJSON(fmt.Sprintf("%s/pno/stop", c.ApiPrefix), nil)
}

// PnoLast returns the last PNO frame received from a device
func (c *ApiClient) PnoLast(device string) (*pno.Frame, error) {
	frame := &pno.Frame{}
	if err := c.getJSON(fmt.Sprintf("%s/pno/last/%s", c.ApiPrefix, device), frame); err != nil {
		return nil, err
	}
	return frame, nil
}

// WhoAmI returns the hexadecimal identification payload of a device
func (c *ApiClient) WhoAmI(device string) (string, error) {
	who := &control.WhoAmIResponse{}
	if err := c.getJSON(fmt.Sprintf("%s/whoami/%s", c.ApiPrefix, device), who); err != nil {
		return "", err
	}
	return who.Payload, nil
}

func (c *ApiClient) Persist(device string) error {
	return c.postJSON(fmt.Sprintf("%s/persist/%s", c.ApiPrefix, device), nil, nil)
}
