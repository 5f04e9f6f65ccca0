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
	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-polhemus/pkg/command"
	"jinr.ru/greenlab/go-polhemus/pkg/config"
)

func NewUnitsCommand() *cobra.Command {
	var device, pos, ori string
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "units",
		Short: "Read or set position and orientation units",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			if pos != "" || ori != "" {
				current, err := apiClient.Units(device)
				if err != nil {
					return err
				}
				if pos != "" {
					current.Pos = pos
				}
				if ori != "" {
					current.Ori = ori
				}
				if err := apiClient.SetUnits(device, current); err != nil {
					return err
				}
			}
			units, err := apiClient.Units(device)
			if err != nil {
				return err
			}
			return printYaml(cmd.OutOrStdout(), units)
		},
	}
	addDeviceFlag(cmd, &device)
	cmd.Flags().StringVar(&pos, "pos", "", "Position units. One of: inch, foot, cm, meter")
	cmd.Flags().StringVar(&ori, "ori", "", "Orientation units. One of: euler_degree, euler_radian, quaternion")

	return cmd
}
