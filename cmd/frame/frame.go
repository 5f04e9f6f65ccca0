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

package frame

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-polhemus/pkg/command"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "frame",
		Short: "Decode and build Viper frames offline",
	}
	cmd.AddCommand(NewDecodeCommand())
	cmd.AddCommand(NewBuildCommand())
	return cmd
}

func NewDecodeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <hex>",
		Short: "Decode a frame given as hexadecimal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := command.ParseHex(strings.Join(args, ""))
			if err != nil {
				return err
			}
			summary, err := command.DecodeFrame(data)
			if summary != nil {
				out, merr := yaml.Marshal(summary)
				if merr != nil {
					return merr
				}
				fmt.Fprint(cmd.OutOrStdout(), string(out))
			}
			return err
		},
	}
	return cmd
}

func NewBuildCommand() *cobra.Command {
	var deviceID, arg1, arg2 uint32
	var payload string
	var reply bool
	cmd := &cobra.Command{
		Use:   "build <command> <action>",
		Short: "Encode a command frame and print it as hexadecimal",
		Example: `
# go-polhemus frame build station_map get
# go-polhemus frame build station_map ack --payload 01000001 --reply`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := command.BuildFrame(deviceID, args[0], args[1], arg1, arg2, payload, reply)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(data))
			return nil
		},
	}
	cmd.Flags().Uint32Var(&deviceID, "seuid", 0, "SEU id")
	cmd.Flags().Uint32Var(&arg1, "arg1", 0, "First command argument")
	cmd.Flags().Uint32Var(&arg2, "arg2", 0, "Second command argument")
	cmd.Flags().StringVar(&payload, "payload", "", "Payload (hexadecimal)")
	cmd.Flags().BoolVar(&reply, "reply", false, "Build the frame the way the device answers, keeping the payload for any action")
	return cmd
}
