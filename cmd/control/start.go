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

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-polhemus/pkg/command"
	"jinr.ru/greenlab/go-polhemus/pkg/config"
)

const (
	ApiAddressOptionName = "api-address"
	DBPathOptionName     = "db"
	PolicyOptionName     = "enable-policy"
)

func NewStartCommand() *cobra.Command {
	var apiAddress, dbPath, policy string
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start control server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiAddress != "" {
				cfg.ApiAddress = apiAddress
			}
			if dbPath != "" {
				cfg.DBPath = dbPath
			}
			if policy != "" {
				cfg.EnablePolicy = policy
			}
			return command.StartControlServer(cfg)
		},
	}
	cmd.Flags().StringVar(&apiAddress, ApiAddressOptionName, "", fmt.Sprintf("Address to bind the API to. E.g. %s", config.DefaultApiAddress))
	cmd.Flags().StringVar(&dbPath, DBPathOptionName, "", "Path to the state database")
	cmd.Flags().StringVar(&policy, PolicyOptionName, "", "How enabling a sensor combines with the enabled map. One of: intersect, union")

	return cmd
}
