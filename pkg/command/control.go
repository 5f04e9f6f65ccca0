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
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"jinr.ru/greenlab/go-polhemus/pkg/config"
	"jinr.ru/greenlab/go-polhemus/pkg/log"
	"jinr.ru/greenlab/go-polhemus/pkg/srv/control"
)

// StartControlServer runs the control server until it fails or the process is interrupted
func StartControlServer(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := control.NewControlServer(ctx, cfg)
	if err != nil {
		return err
	}
	err = s.Run()
	if errors.Is(err, context.Canceled) {
		log.Info("Control server stopped")
		return nil
	}
	return err
}
