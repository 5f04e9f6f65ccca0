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
	"jinr.ru/greenlab/go-polhemus/pkg/srv/control"
)

func NewCmdCommand() *cobra.Command {
	var device, payload string
	var arg1, arg2 uint32
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "cmd <command> <action>",
		Short: "Send a raw command to a device",
		Example: `
# go-polhemus control cmd units get
# go-polhemus control cmd frame_count reset --device viper`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			resp, err := apiClient.Command(device, &control.CommandRequest{
				Command: args[0],
				Action:  args[1],
				Arg1:    arg1,
				Arg2:    arg2,
				Payload: payload,
			})
			if err != nil {
				return err
			}
			return printYaml(cmd.OutOrStdout(), resp)
		},
	}
	addDeviceFlag(cmd, &device)
	cmd.Flags().Uint32Var(&arg1, "arg1", 0, "First command argument, usually the sensor")
	cmd.Flags().Uint32Var(&arg2, "arg2", 0, "Second command argument")
	cmd.Flags().StringVar(&payload, "payload", "", "Payload (hexadecimal)")

	return cmd
}
