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

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-polhemus/cmd/completion"
	"jinr.ru/greenlab/go-polhemus/cmd/config"
	"jinr.ru/greenlab/go-polhemus/cmd/control"
	"jinr.ru/greenlab/go-polhemus/cmd/frame"
	"jinr.ru/greenlab/go-polhemus/cmd/pno"
	pkgconfig "jinr.ru/greenlab/go-polhemus/pkg/config"
	"jinr.ru/greenlab/go-polhemus/pkg/log"
)

const (
	LogLevelOptionName = "log-level"
	LogFileOptionName  = "log-file"
)

func NewRootCommand(out io.Writer) *cobra.Command {
	var logLevel, logFile string
	cfg := pkgconfig.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "go-polhemus",
		Short: "Tool to work with Polhemus Viper trackers",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			if logFile != "" {
				cfg.LogFile = logFile
			}
			if cfg.LogFile != "" {
				log.InitFile(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFile, pkgconfig.DefaultLogFileSizeMB)
				return
			}
			log.Init(cmd.ErrOrStderr(), cfg.LogLevel)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			log.Sync()
		},
	}
	cmd.SetOut(out)
	cmd.AddCommand(config.NewCommand())
	cmd.AddCommand(control.NewCommand())
	cmd.AddCommand(pno.NewCommand())
	cmd.AddCommand(frame.NewCommand())
	cmd.AddCommand(completion.NewCommand())
	cmd.PersistentFlags().StringVar(&logLevel, LogLevelOptionName, "", fmt.Sprintf("Log level. %s", log.HelpLevels))
	cmd.PersistentFlags().StringVar(&logFile, LogFileOptionName, "", "Also write the log to this file, rotated by size")
	return cmd
}
