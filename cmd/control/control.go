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
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-polhemus/pkg/config"
)

const (
	DeviceOptionName = "device"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "control",
		Short: "Run the control server and talk to it",
	}
	cmd.AddCommand(NewStartCommand())
	cmd.AddCommand(NewCmdCommand())
	cmd.AddCommand(NewStationMapCommand())
	cmd.AddCommand(NewUnitsCommand())
	cmd.AddCommand(NewWhoAmICommand())
	cmd.AddCommand(NewPersistCommand())
	return cmd
}

func addDeviceFlag(cmd *cobra.Command, device *string) {
	cmd.Flags().StringVar(device, DeviceOptionName, config.DefaultDeviceName, "Device name")
}

// printYaml writes v the same way the config file is written
func printYaml(out io.Writer, v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, string(data))
	return err
}
