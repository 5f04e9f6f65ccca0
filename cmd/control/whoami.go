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
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-polhemus/pkg/command"
	"jinr.ru/greenlab/go-polhemus/pkg/config"
)

func NewWhoAmICommand() *cobra.Command {
	var device string
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Print the device identification",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			payload, err := apiClient.WhoAmI(device)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Payload: %s\n", payload)
			if data, err := hex.DecodeString(payload); err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Text: %s\n", strings.TrimRight(string(data), "\x00"))
			}
			return nil
		},
	}
	addDeviceFlag(cmd, &device)

	return cmd
}

func NewPersistCommand() *cobra.Command {
	var device string
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "persist",
		Short: "Store the current device configuration in the device flash",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiClient := command.NewApiClient(cfg)
			if err := apiClient.Persist(device); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration persisted: %s\n", device)
			return nil
		},
	}
	addDeviceFlag(cmd, &device)

	return cmd
}
