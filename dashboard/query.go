package dashboard

import (
	"strings"

	ur "github.com/mdzio/go-ur"
)

// field returns the i-th whitespace separated field of a response.
func field(resp string, i int) (string, error) {
	f := strings.Fields(resp)
	if i >= len(f) {
		return "", &ur.UnexpectedResponseError{Response: resp}
	}
	return f[i], nil
}

func parseBool(resp string) (bool, error) {
	switch strings.ToLower(resp) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, &ur.UnexpectedResponseError{Response: resp}
}

// RobotMode queries the mode of the arm.
func (c *Client) RobotMode() (RobotMode, error) {
	// Robotmode: <mode>
	resp, err := c.send("robotmode", "robotmode")
	if err != nil {
		return 0, err
	}
	v, err := field(resp, 1)
	if err != nil {
		return 0, err
	}
	return ParseRobotMode(v)
}

// IsRunning reports whether a program is running.
func (c *Client) IsRunning() (bool, error) {
	// Program running: <bool>
	resp, err := c.send("running", "program running")
	if err != nil {
		return false, err
	}
	f := strings.Fields(resp)
	return parseBool(f[len(f)-1])
}

// IsProgramSaved returns the save state of the loaded program and its name.
func (c *Client) IsProgramSaved() (saved bool, program string, err error) {
	// <bool> <program>
	resp, err := c.send("isProgramSaved", "")
	if err != nil {
		return false, "", err
	}
	f := strings.Fields(resp)
	if len(f) == 0 {
		return false, "", &ur.UnexpectedResponseError{Response: resp}
	}
	if saved, err = parseBool(f[0]); err != nil {
		return false, "", err
	}
	if len(f) > 1 {
		program = strings.Join(f[1:], " ")
	}
	return saved, program, nil
}

// IsRemoteControl reports whether the robot is in remote control mode. In
// local mode most commands are refused.
func (c *Client) IsRemoteControl() (bool, error) {
	resp, err := c.send("is in remote control", "")
	if err != nil {
		return false, err
	}
	return parseBool(resp)
}

// ProgramState queries the state of the loaded program.
func (c *Client) ProgramState() (ProgramState, error) {
	// <STATE> <program>
	resp, err := c.send("programState", "")
	if err != nil {
		return ProgramState{}, err
	}
	f := strings.Fields(resp)
	if len(f) < 2 {
		return ProgramState{}, &ur.UnexpectedResponseError{Response: resp}
	}
	i, err := parseEnum(programStatusNames, f[0], "program state")
	if err != nil {
		return ProgramState{}, err
	}
	s := ProgramState{Status: ProgramStatus(i), Program: strings.Join(f[1:], " ")}
	if s.Program == "<unnamed>" {
		s.Program = ""
	}
	return s, nil
}

// LoadedProgram returns the path of the loaded program without ProgramDir.
// If no program is loaded, an empty string is returned.
func (c *Client) LoadedProgram() (string, error) {
	// Loaded program: <path>
	resp, err := c.send("get loaded program", "")
	if err != nil {
		return "", err
	}
	if strings.Contains(strings.ToLower(resp), "no program loaded") {
		return "", nil
	}
	label, path, ok := strings.Cut(resp, ":")
	if !ok || !strings.EqualFold(strings.TrimSpace(label), "loaded program") {
		return "", &ur.UnexpectedResponseError{Response: resp}
	}
	path = strings.TrimSpace(path)
	if c.ProgramDir != "" {
		path = strings.TrimPrefix(path, c.ProgramDir)
	}
	return path, nil
}

// PolyScopeVersion returns the version of the installed software.
func (c *Client) PolyScopeVersion() (string, error) {
	return c.send("PolyscopeVersion", "URSoftware")
}

// SerialNumber returns the serial number of the robot.
func (c *Client) SerialNumber() (string, error) {
	return c.send("get serial number", "")
}

// RobotModel returns the model of the robot (e.g. UR5).
func (c *Client) RobotModel() (string, error) {
	return c.send("get robot model", "")
}

// OperationalMode returns the operational mode. OpModeNone is returned, if
// no password is set for the mode.
func (c *Client) OperationalMode() (OpMode, error) {
	resp, err := c.send("get operational mode", "")
	if err != nil {
		return 0, err
	}
	return ParseOpMode(resp)
}
