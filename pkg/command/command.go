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
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"jinr.ru/greenlab/go-polhemus/pkg/layers"
	"jinr.ru/greenlab/go-polhemus/pkg/srv/control"
	"jinr.ru/greenlab/go-polhemus/pkg/srv/pno"
)

// FrameSummary is a readable form of one frame, used by the frame tools
type FrameSummary struct {
	Kind          string                      `json:"kind"`
	Preamble      string                      `json:"preamble"`
	Size          uint32                      `json:"size"`
	ChecksumOK    bool                        `json:"checksumOK"`
	ChecksumError string                      `json:"checksumError,omitempty"`
	Command       *control.CommandResponse    `json:"command,omitempty"`
	StationMap    *control.StationMapResponse `json:"stationMap,omitempty"`
	Pno           *PnoSummary                 `json:"pno,omitempty"`
	Liberty       interface{}                 `json:"liberty,omitempty"`
}

type PnoSummary struct {
	layers.PnoHeader
	Poses []pno.Pose `json:"poses"`
	// Error is set when the frame announces more sensors than it carries
	Error string `json:"error,omitempty"`
}

// ParseHex accepts hexadecimal with optional 0x prefix and any whitespace
func ParseHex(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return hex.DecodeString(s)
}

// DecodeFrame classifies and decodes a frame
func DecodeFrame(data []byte) (*FrameSummary, error) {
	view := layers.NewFrameView(data)
	if err := view.Err(); err != nil {
		if liberty, lerr := decodeLiberty(data); lerr == nil {
			return &FrameSummary{Kind: "liberty", Size: uint32(len(data)), Liberty: liberty}, nil
		}
		return nil, err
	}
	summary := &FrameSummary{
		Kind:     view.Kind().String(),
		Preamble: fmt.Sprintf("0x%08x", view.Preamble()),
		Size:     view.Size(),
	}
	if err := layers.CheckFrame(data); err != nil {
		summary.ChecksumError = err.Error()
	} else {
		summary.ChecksumOK = true
	}

	switch view.Kind() {
	case layers.FrameCmd:
		summary.Command = control.NewCommandResponse(view)
		if view.Command() == layers.CmdStationMap {
			if m, err := layers.DecodeStationMap(view.Payload()); err == nil {
				summary.StationMap = control.NewStationMapResponse(m)
			}
		}
	case layers.FramePno:
		header, err := view.PnoHeader()
		if err != nil {
			return summary, err
		}
		records, err := view.SensorRecords()
		summary.Pno = &PnoSummary{PnoHeader: header}
		if err != nil {
			summary.Pno.Error = err.Error()
		}
		summary.Pno.Poses = pno.NewFrame("", header.FrameCounter, time.Time{}, records).Poses
	}
	return summary, nil
}

// decodeLiberty picks the Liberty layout by the size announced in the header
func decodeLiberty(data []byte) (interface{}, error) {
	header, err := layers.DecodeLibertyHeader(data)
	if err != nil {
		return nil, err
	}
	magic := string(header.Magic[:])
	if magic != "LY" && magic != "PA" {
		return nil, layers.ErrUnknownPreamble{Preamble: layers.NewFrameView(data).Preamble()}
	}
	switch layers.LibertyHeaderSize + int(header.Size) {
	case layers.LibertyStationStateSize:
		return layers.DecodeLibertyStationState(data)
	case layers.LibertyDefaultPnoSize:
		return layers.DecodeLibertyDefaultPno(data)
	case layers.LibertyEulerPnoSize:
		return layers.DecodeLibertyEulerPno(data)
	case layers.LibertyPnoSize:
		return layers.DecodeLibertyPno(data)
	default:
		return header, nil
	}
}

// BuildFrame encodes a command frame. With reply set the frame is built the way
// the tracker answers, the payload is kept for every action.
func BuildFrame(deviceID uint32, cmdName, actionName string, arg1, arg2 uint32, payloadHex string, reply bool) ([]byte, error) {
	cmd, err := layers.ParseCommandCode(cmdName)
	if err != nil {
		return nil, err
	}
	action, err := layers.ParseActionCode(actionName)
	if err != nil {
		return nil, err
	}
	payload, err := ParseHex(payloadHex)
	if err != nil {
		return nil, err
	}
	if reply {
		return layers.NewReplyFrame(deviceID, cmd, action, arg1, arg2, payload).Bytes(), nil
	}
	return layers.NewCommandFrame(deviceID, cmd, action, arg1, arg2, payload).Bytes(), nil
}
