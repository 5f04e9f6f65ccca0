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

package pno

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-polhemus/pkg/command"
	"jinr.ru/greenlab/go-polhemus/pkg/config"
)

const (
	DeviceOptionName = "device"
)

func NewCommand() *cobra.Command {
	var device string
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:       "pno start|stop|last",
		Short:     "Start/stop continuous PNO output or print the last frame",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"start", "stop", "last"},
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			switch args[0] {
			case "start":
				if device == "" {
					return apiClient.PnoStartAll()
				}
				return apiClient.PnoStart(device)
			case "stop":
				if device == "" {
					return apiClient.PnoStopAll()
				}
				return apiClient.PnoStop(device)
			case "last":
				if device == "" {
					device = config.DefaultDeviceName
				}
				frame, err := apiClient.PnoLast(device)
				if err != nil {
					return err
				}
				data, err := yaml.Marshal(frame)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), string(data))
				return nil
			default:
				return errors.New("Wrong PNO command. Must be one of start/stop/last")
			}
		},
	}
	cmd.Flags().StringVar(&device, DeviceOptionName, "", "Device name, all devices if empty")

	return cmd
}
