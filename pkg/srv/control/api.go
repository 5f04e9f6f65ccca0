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

// go-polhemus API
//
// RESTful APIs to control Polhemus trackers through the go-polhemus server
//
// Schemes: http
// Host: localhost:8000
// Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//
// swagger:meta
package control

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"jinr.ru/greenlab/go-polhemus/pkg/config"
	deviceifc "jinr.ru/greenlab/go-polhemus/pkg/device/ifc"
	"jinr.ru/greenlab/go-polhemus/pkg/layers"
	"jinr.ru/greenlab/go-polhemus/pkg/log"
	"jinr.ru/greenlab/go-polhemus/pkg/srv"
	"jinr.ru/greenlab/go-polhemus/pkg/srv/control/ifc"
)

// CommandRequest is a raw command, Command and Action are names or numbers
type CommandRequest struct {
	Command string `json:"command"`
	Action  string `json:"action"`
	Arg1    uint32 `json:"arg1"`
	Arg2    uint32 `json:"arg2"`
	// Payload is hexadecimal, it is sent only with the set action
	Payload string `json:"payload,omitempty"`
}

type CommandResponse struct {
	DeviceID uint32 `json:"deviceID"`
	Command  string `json:"command"`
	Action   string `json:"action"`
	Arg1     uint32 `json:"arg1"`
	Arg2     uint32 `json:"arg2"`
	Payload  string `json:"payload,omitempty"` // hexadecimal
}

func NewCommandResponse(view layers.FrameView) *CommandResponse {
	return &CommandResponse{
		DeviceID: view.DeviceID(),
		Command:  view.Command().String(),
		Action:   view.Action().String(),
		Arg1:     view.Arg1(),
		Arg2:     view.Arg2(),
		Payload:  hex.EncodeToString(view.Payload()),
	}
}

type StationMapResponse struct {
	Word            string `json:"word"` // hexadecimal
	Sensors         uint16 `json:"sensors"`
	Sources         uint8  `json:"sources"`
	Enabled         uint16 `json:"enabled"`
	SensorsDetected int    `json:"sensorsDetected"`
	SourcesDetected int    `json:"sourcesDetected"`
	SensorsEnabled  int    `json:"sensorsEnabled"`
	Policy          string `json:"policy"`
}

func NewStationMapResponse(m *layers.StationMap) *StationMapResponse {
	return &StationMapResponse{
		Word:            fmt.Sprintf("0x%08x", m.Word()),
		Sensors:         m.SensorMap(),
		Sources:         m.SourceMap(),
		Enabled:         m.EnabledMap(),
		SensorsDetected: m.SensorDetectedCount,
		SourcesDetected: m.SourceDetectedCount,
		SensorsEnabled:  m.EnabledCount,
		Policy:          m.Policy.String(),
	}
}

type UnitsSetup struct {
	Pos string `json:"pos"`
	Ori string `json:"ori"`
}

type WhoAmIResponse struct {
	Payload string `json:"payload"` // hexadecimal
}

type ApiServer struct {
	context.Context
	*config.Config
	*mux.Router
	ctrl ifc.ControlServer
}

var _ ifc.ApiServer = &ApiServer{}

func NewApiServer(ctx context.Context, cfg *config.Config, ctrl ifc.ControlServer) (ifc.ApiServer, error) {
	log.Info("Initializing API server with address: %s", cfg.ApiAddress)
	s := &ApiServer{
		Context: ctx,
		Config:  cfg,
		ctrl:    ctrl,
	}
	s.configureRouter()
	return s, nil
}

// Run serves the API until the context is done
func (s *ApiServer) Run() error {
	log.Info("Starting API server: address: %s", s.Config.ApiAddress)
	handler := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(s.Router)
	httpServer := &http.Server{
		Handler:           handlers.LoggingHandler(os.Stderr, handler),
		Addr:              s.Config.ApiAddress,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-s.Context.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *ApiServer) configureRouter() {
	s.Router = mux.NewRouter()
	subRouter := s.Router.PathPrefix(ApiPrefix).Subrouter()
	subRouter.HandleFunc("/cmd/{device}", s.handleCommand()).Methods("POST")
	subRouter.HandleFunc("/stationmap/{device}", s.handleStationMapRead()).Methods("GET")
	subRouter.HandleFunc("/stationmap/{device}/cached", s.handleStationMapCached()).Methods("GET")
	subRouter.HandleFunc("/stationmap/{device}/reset", s.handleStationMapReset()).Methods("POST")
	subRouter.HandleFunc("/stationmap/{device}/write", s.handleEnabledMapWrite()).Methods("POST")
	subRouter.HandleFunc("/stationmap/{device}/{action:enable|disable}/{sensor:[0-9]+}", s.handleSensorAction()).Methods("POST")
	subRouter.HandleFunc("/units/{device}", s.handleUnitsRead()).Methods("GET")
	subRouter.HandleFunc("/units/{device}", s.handleUnitsWrite()).Methods("POST")
	subRouter.HandleFunc("/pno/last/{device}", s.handlePnoLast()).Methods("GET")
	subRouter.HandleFunc("/pno/{action:start|stop}/{device}", s.handlePnoAction()).Methods("GET")
	subRouter.HandleFunc("/pno/{action:start|stop}", s.handlePnoActionAll()).Methods("GET")
	subRouter.HandleFunc("/whoami/{device}", s.handleWhoAmI()).Methods("GET")
	subRouter.HandleFunc("/persist/{device}", s.handlePersist()).Methods("POST")
	s.Router.Handle(MetricsPath, s.ctrl.MetricsHandler())
}

// httpStatus maps server errors to response codes
func httpStatus(err error) int {
	var deviceNotFound config.ErrDeviceNotFound
	var keyNotFound ErrKeyNotFound
	var indexErr layers.ErrIndexOutOfRange
	var unknownOp srv.ErrUnknownOperation
	var timeoutErr srv.ErrTimeout
	var notConnected srv.ErrNotConnected
	switch {
	case errors.As(err, &deviceNotFound), errors.As(err, &keyNotFound):
		return http.StatusNotFound
	case errors.As(err, &indexErr), errors.As(err, &unknownOp):
		return http.StatusBadRequest
	case errors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout
	case errors.As(err, &notConnected):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Error while encoding response: %s", err)
	}
}

func (s *ApiServer) device(w http.ResponseWriter, r *http.Request) (deviceifc.Device, bool) {
	device, err := s.ctrl.GetDeviceByName(mux.Vars(r)["device"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return nil, false
	}
	return device, true
}

func (s *ApiServer) handleCommand() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		request := &CommandRequest{}
		if err := json.NewDecoder(r.Body).Decode(request); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		cmd, err := layers.ParseCommandCode(request.Command)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		action, err := layers.ParseActionCode(request.Action)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		payload, err := hex.DecodeString(request.Payload)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		device, ok := s.device(w, r)
		if !ok {
			return
		}
		log.Debug("Handling command request: device: %s cmd: %s action: %s", device.GetName(), cmd, action)

		resp, err := device.Command(r.Context(), cmd, action, request.Arg1, request.Arg2, payload)
		var nak layers.ErrDeviceNak
		if err != nil && !errors.As(err, &nak) {
			http.Error(w, err.Error(), httpStatus(err))
			return
		}
		// a rejected command is a valid answer
		writeJSON(w, NewCommandResponse(resp))
	}
}

func (s *ApiServer) handleStationMapRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deviceName := mux.Vars(r)["device"]
		log.Debug("Handling station map read request: device: %s", deviceName)
		m, err := s.ctrl.ReadStationMap(r.Context(), deviceName)
		if err != nil {
			http.Error(w, err.Error(), httpStatus(err))
			return
		}
		writeJSON(w, NewStationMapResponse(m))
	}
}

func (s *ApiServer) handleStationMapCached() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		device, ok := s.device(w, r)
		if !ok {
			return
		}
		writeJSON(w, NewStationMapResponse(device.StationMap()))
	}
}

func (s *ApiServer) handleStationMapReset() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := s.ctrl.ResetStationMap(mux.Vars(r)["device"])
		if err != nil {
			http.Error(w, err.Error(), httpStatus(err))
			return
		}
		writeJSON(w, NewStationMapResponse(m))
	}
}

// handleEnabledMapWrite sends the enabled map kept by the server, e.g. after a restart
func (s *ApiServer) handleEnabledMapWrite() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		device, ok := s.device(w, r)
		if !ok {
			return
		}
		if err := device.WriteEnabledMap(r.Context()); err != nil {
			http.Error(w, err.Error(), httpStatus(err))
			return
		}
		writeJSON(w, NewStationMapResponse(device.StationMap()))
	}
}

func (s *ApiServer) handleSensorAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		log.Debug("Handling sensor action request: device: %s action: %s sensor: %s",
			vars["device"], vars["action"], vars["sensor"])
		sensor, err := strconv.Atoi(vars["sensor"])
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var m *layers.StationMap
		switch vars["action"] {
		case "enable":
			m, err = s.ctrl.EnableSensor(r.Context(), vars["device"], sensor)
		case "disable":
			m, err = s.ctrl.DisableSensor(r.Context(), vars["device"], sensor)
		default:
			err = srv.ErrUnknownOperation{What: "Wrong sensor action. Must be one of enable/disable"}
		}
		if err != nil {
			http.Error(w, err.Error(), httpStatus(err))
			return
		}
		writeJSON(w, NewStationMapResponse(m))
	}
}

func (s *ApiServer) handleUnitsRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		device, ok := s.device(w, r)
		if !ok {
			return
		}
		units, err := device.ReadUnits(r.Context())
		if err != nil {
			http.Error(w, err.Error(), httpStatus(err))
			return
		}
		writeJSON(w, &UnitsSetup{Pos: units.Pos.String(), Ori: units.Ori.String()})
	}
}

func (s *ApiServer) handleUnitsWrite() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setup := &UnitsSetup{}
		if err := json.NewDecoder(r.Body).Decode(setup); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		pos, err := layers.ParsePosUnits(setup.Pos)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		ori, err := layers.ParseOriUnits(setup.Ori)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		device, ok := s.device(w, r)
		if !ok {
			return
		}
		if err := device.SetUnits(r.Context(), &layers.UnitsConfig{Pos: pos, Ori: ori}); err != nil {
			http.Error(w, err.Error(), httpStatus(err))
			return
		}
	}
}

func pnoAction(ctx context.Context, device deviceifc.Device, action string) error {
	switch action {
	case "start":
		return device.StartContinuous(ctx)
	case "stop":
		return device.StopContinuous(ctx)
	default:
		return srv.ErrUnknownOperation{What: "Wrong PNO action. Must be one of start/stop"}
	}
}

func (s *ApiServer) handlePnoAction() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		log.Debug("Handling PNO action request: device: %s action: %s", vars["device"], vars["action"])
		device, ok := s.device(w, r)
		if !ok {
			return
		}
		if err := pnoAction(r.Context(), device, vars["action"]); err != nil {
			http.Error(w, err.Error(), httpStatus(err))
			return
		}
	}
}

func (s *ApiServer) handlePnoActionAll() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		log.Debug("Handling PNO action request for all devices: action: %s", vars["action"])
		for _, device := range s.ctrl.GetAllDevices() {
			if err := pnoAction(r.Context(), device, vars["action"]); err != nil {
				http.Error(w, err.Error(), httpStatus(err))
				return
			}
		}
	}
}

func (s *ApiServer) handlePnoLast() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		frame, err := s.ctrl.LastPno(mux.Vars(r)["device"])
		if err != nil {
			http.Error(w, err.Error(), httpStatus(err))
			return
		}
		writeJSON(w, frame)
	}
}

func (s *ApiServer) handleWhoAmI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		device, ok := s.device(w, r)
		if !ok {
			return
		}
		payload, err := device.WhoAmI(r.Context())
		if err != nil {
			http.Error(w, err.Error(), httpStatus(err))
			return
		}
		writeJSON(w, &WhoAmIResponse{Payload: hex.EncodeToString(payload)})
	}
}

func (s *ApiServer) handlePersist() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		device, ok := s.device(w, r)
		if !ok {
			return
		}
		if err := device.Persist(r.Context()); err != nil {
			http.Error(w, err.Error(), httpStatus(err))
			return
		}
	}
}
