package dashboard

import (
	"fmt"
	"strings"

	ur "github.com/mdzio/go-ur"
)

// RobotMode is the state of the arm.
type RobotMode int

// Robot modes.
const (
	NoController RobotMode = iota
	Disconnected
	ConfirmSafety
	Booting
	PowerOff
	PowerOn
	Idle
	Backdrive
	Running
)

var robotModeNames = []string{
	"NO_CONTROLLER", "DISCONNECTED", "CONFIRM_SAFETY", "BOOTING", "POWER_OFF",
	"POWER_ON", "IDLE", "BACKDRIVE", "RUNNING",
}

func (m RobotMode) String() string {
	return enumName(robotModeNames, int(m))
}

// IsPowered reports whether the arm is powered on.
func (m RobotMode) IsPowered() bool {
	return m == PowerOn || m == Idle || m == Running
}

// ParseRobotMode parses a mode as returned by the robotmode query.
func ParseRobotMode(s string) (RobotMode, error) {
	i, err := parseEnum(robotModeNames, s, "robot mode")
	return RobotMode(i), err
}

// SafetyStatus is the state of the safety system.
type SafetyStatus int

// Safety states.
const (
	SafetyNormal SafetyStatus = iota
	SafetyReduced
	SafetyProtectiveStop
	SafetyRecovery
	SafetySafeguardStop
	SafetySystemEmergencyStop
	SafetyRobotEmergencyStop
	SafetyViolation
	SafetyFault
	SafetyAutomaticModeSafeguardStop
	SafetySystemThreePositionEnablingStop
)

var safetyStatusNames = []string{
	"NORMAL", "REDUCED", "PROTECTIVE_STOP", "RECOVERY", "SAFEGUARD_STOP",
	"SYSTEM_EMERGENCY_STOP", "ROBOT_EMERGENCY_STOP", "VIOLATION", "FAULT",
	"AUTOMATIC_MODE_SAFEGUARD_STOP", "SYSTEM_THREE_POSITION_ENABLING_STOP",
}

func (s SafetyStatus) String() string {
	return enumName(safetyStatusNames, int(s))
}

// ParseSafetyStatus parses a status as returned by the safetystatus query.
func ParseSafetyStatus(s string) (SafetyStatus, error) {
	i, err := parseEnum(safetyStatusNames, s, "safety status")
	return SafetyStatus(i), err
}

// OpMode is the operational mode. OpModeNone means, that no password is set
// for the operational mode or that the mode is not controlled remotely.
type OpMode int

// Operational modes.
const (
	OpModeNone OpMode = iota
	OpModeManual
	OpModeAutomatic
)

var opModeNames = []string{"none", "manual", "automatic"}

func (m OpMode) String() string {
	return enumName(opModeNames, int(m))
}

// ParseOpMode parses an operational mode.
func ParseOpMode(s string) (OpMode, error) {
	i, err := parseEnum(opModeNames, s, "operational mode")
	return OpMode(i), err
}

// ProgramStatus is the execution state of the loaded program.
type ProgramStatus int

// Program states.
const (
	Stopped ProgramStatus = iota
	Playing
	Paused
)

var programStatusNames = []string{"STOPPED", "PLAYING", "PAUSED"}

func (s ProgramStatus) String() string {
	return enumName(programStatusNames, int(s))
}

// ProgramState is the state of the loaded program. Program is empty, if no
// program is loaded.
type ProgramState struct {
	Status  ProgramStatus
	Program string
}

func (s ProgramState) String() string {
	if s.Program == "" {
		return s.Status.String()
	}
	return s.Status.String() + " " + s.Program
}

// OperationalState is the quickly changing state of the robot.
type OperationalState struct {
	Mode  RobotMode
	State ProgramState
}

// RobotState is the slowly changing meta data of the robot.
type RobotState struct {
	Program         string
	IsSaved         bool
	Version         string
	Mode            RobotMode
	OperationalMode OpMode
	SafetyStatus    SafetyStatus
	IsRemote        bool
	Serial          string
	Model           string
}

func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return fmt.Sprintf("UNKNOWN(%d)", i)
	}
	return names[i]
}

func parseEnum(names []string, s, what string) (int, error) {
	for i, n := range names {
		if strings.EqualFold(n, s) {
			return i, nil
		}
	}
	return 0, ur.Unexpectedf("Unknown %s: %s", what, s)
}
