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

package control

import (
	"errors"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-polhemus/pkg/command"
	"jinr.ru/greenlab/go-polhemus/pkg/config"
	"jinr.ru/greenlab/go-polhemus/pkg/srv/control"
)

const (
	EnableOptionName  = "enable"
	DisableOptionName = "disable"
	ResetOptionName   = "reset"
	WriteOptionName   = "write"
)

func NewStationMapCommand() *cobra.Command {
	var device string
	var enable, disable int
	var reset, write bool
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "stationmap",
		Short: "Read the station map, enable or disable a sensor",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			var m *control.StationMapResponse
			var err error
			switch {
			case reset && (enable >= 0 || disable >= 0):
				return errors.New("--reset can not be combined with --enable or --disable")
			case enable >= 0 && disable >= 0:
				return errors.New("Only one of --enable, --disable can be given")
			case reset:
				m, err = apiClient.StationMapReset(device)
			case write:
				m, err = apiClient.StationMapWrite(device)
			case enable >= 0:
				m, err = apiClient.SensorAction(device, "enable", enable)
			case disable >= 0:
				m, err = apiClient.SensorAction(device, "disable", disable)
			default:
				m, err = apiClient.StationMap(device)
			}
			if err != nil {
				return err
			}
			return printYaml(cmd.OutOrStdout(), m)
		},
	}
	addDeviceFlag(cmd, &device)
	cmd.Flags().IntVar(&enable, EnableOptionName, -1, "Sensor to enable (0-15)")
	cmd.Flags().IntVar(&disable, DisableOptionName, -1, "Sensor to disable (0-15)")
	cmd.Flags().BoolVar(&reset, ResetOptionName, false, "Reset the station map to the factory default")
	cmd.Flags().BoolVar(&write, WriteOptionName, false, "Send the enabled map kept by the server to the device")

	return cmd
}
