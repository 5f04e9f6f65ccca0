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

package layers

import (
	"fmt"
	"strings"
)

const (
	// ViperCmdPreamble is a magic number that appears in the beginning of each command frame ("VPRB")
	ViperCmdPreamble = 0x42525056
	// ViperPnoPreamble is a magic number that appears in the beginning of each PNO frame ("VPRP")
	ViperPnoPreamble = 0x50525056

	SensorsPerSeu = 16
	SourcesPerSeu = 4

	// FrameHeaderSize is preamble + size
	FrameHeaderSize = 8
	// CommandHeaderSize is seuid, cmd, action, arg1, arg2
	CommandHeaderSize = 20
	// PnoHeaderSize is seuid, frame, hp_info, sensor_count
	PnoHeaderSize = 16
	// SensorRecordSize is 4 bytes of packed info and 28 bytes of pno data
	SensorRecordSize = 32

	// NotApplicable is returned by frame accessors called on a frame of the wrong kind
	NotApplicable = ^uint32(0)
)

type ActionCode uint32

const (
	ActionSet ActionCode = iota
	ActionGet
	ActionReset
	ActionAck
	ActionNak
	actionLimit
)

var actionNames = [...]string{"set", "get", "reset", "ack", "nak"}

func (a ActionCode) String() string {
	if a < actionLimit {
		return actionNames[a]
	}
	if uint32(a) == NotApplicable {
		return "n/a"
	}
	return fmt.Sprintf("action(%d)", uint32(a))
}

// Valid reports whether the action is one of the protocol actions
func (a ActionCode) Valid() bool {
	return a < actionLimit
}

// ParseActionCode parses the lower case action name (e.g. "get")
func ParseActionCode(s string) (ActionCode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range actionNames {
		if name == s {
			return ActionCode(i), nil
		}
	}
	return ActionCode(NotApplicable), fmt.Errorf("Unknown action: %s", s)
}

type CommandCode uint32

const (
	CmdHemisphere CommandCode = iota
	CmdFilter
	CmdTipOffset
	CmdIncrement
	CmdBoresight
	CmdSensorWhoAmI
	CmdFramerate
	CmdUnits
	CmdSrcRotation
	CmdSyncMode
	CmdStationMap
	CmdStylus
	CmdSeuID
	CmdDualOutput
	CmdSerialConfig
	CmdBlockCfg
	CmdFrameCount
	CmdBit
	CmdSinglePno
	CmdContinuousPno
	CmdWhoAmI
	CmdInitialize
	CmdPersist
	CmdEnableMap
	CmdFttMode
	CmdMapStatus
	CmdSensorBlockCfg
	CmdSourceCfg
	CmdPredFilterCfg
	CmdPredFilterExt
	CmdSrcSelect
	CmdSnsOrigin
	CmdSnsVirtual
	commandLimit
)

var commandNames = [...]string{
	"hemisphere",
	"filter",
	"tip_offset",
	"increment",
	"boresight",
	"sensor_whoami",
	"framerate",
	"units",
	"src_rotation",
	"sync_mode",
	"station_map",
	"stylus",
	"seuid",
	"dual_output",
	"serial_config",
	"block_cfg",
	"frame_count",
	"bit",
	"single_pno",
	"continuous_pno",
	"whoami",
	"initialize",
	"persist",
	"enable_map",
	"ftt_mode",
	"map_status",
	"sensor_blockcfg",
	"source_cfg",
	"predfilter_cfg",
	"predfilter_ext",
	"src_select",
	"sns_origin",
	"sns_virtual",
}

func (c CommandCode) String() string {
	if c < commandLimit {
		return commandNames[c]
	}
	if uint32(c) == NotApplicable {
		return "n/a"
	}
	return fmt.Sprintf("command(%d)", uint32(c))
}

// Valid reports whether the command is known to the protocol
func (c CommandCode) Valid() bool {
	return c < commandLimit
}

// ParseCommandCode parses the lower case command name (e.g. "station_map")
// or its decimal ordinal.
func ParseCommandCode(s string) (CommandCode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range commandNames {
		if name == s {
			return CommandCode(i), nil
		}
	}
	var n uint32
	if _, err := fmt.Sscanf(s, "%d", &n); err == nil && CommandCode(n).Valid() {
		return CommandCode(n), nil
	}
	return CommandCode(NotApplicable), fmt.Errorf("Unknown command: %s", s)
}

type PosUnits uint32

const (
	PosInch PosUnits = iota
	PosFoot
	PosCm
	PosMeter
	posLimit
)

var posUnitNames = [...]string{"inch", "foot", "cm", "meter"}

func (u PosUnits) String() string {
	if u < posLimit {
		return posUnitNames[u]
	}
	return fmt.Sprintf("pos_units(%d)", uint32(u))
}

func ParsePosUnits(s string) (PosUnits, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range posUnitNames {
		if name == s {
			return PosUnits(i), nil
		}
	}
	return posLimit, fmt.Errorf("Unknown position units: %s", s)
}

type OriUnits uint32

const (
	OriEulerDegree OriUnits = iota
	OriEulerRadian
	OriQuaternion
	oriLimit
)

var oriUnitNames = [...]string{"euler_degree", "euler_radian", "quaternion"}

func (u OriUnits) String() string {
	if u < oriLimit {
		return oriUnitNames[u]
	}
	return fmt.Sprintf("ori_units(%d)", uint32(u))
}

func ParseOriUnits(s string) (OriUnits, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range oriUnitNames {
		if name == s {
			return OriUnits(i), nil
		}
	}
	return oriLimit, fmt.Errorf("Unknown orientation units: %s", s)
}
