package dashboard

import (
	"fmt"
	"strings"
)

// LoadProgram loads a program. The extension .urp is appended, if missing.
// Remote control only.
func (c *Client) LoadProgram(program string) error {
	if !strings.HasSuffix(program, ".urp") {
		program += ".urp"
	}
	_, err := c.send("load "+program, "loading program")
	return err
}

// LoadInstallation loads an installation. An empty name loads the default
// installation. Remote control only.
func (c *Client) LoadInstallation(installation string) error {
	if installation == "" {
		installation = "default"
	}
	if !strings.HasSuffix(installation, ".installation") {
		installation += ".installation"
	}
	_, err := c.send("load installation "+installation, "loading installation")
	return err
}

// Play starts the loaded program. The command is repeated, while the
// controller refuses it (e.g. shortly after loading).
func (c *Client) Play() error {
	attempts := c.PlayAttempts
	if attempts <= 0 {
		attempts = DefaultPlayAttempts
	}
	delay := c.PlayDelay
	if delay <= 0 {
		delay = DefaultPlayDelay
	}
	var err error
	for n := 1; ; n++ {
		if _, err = c.send("play", "starting program"); err == nil {
			return nil
		}
		if n >= attempts {
			break
		}
		log.Debugf("Play failed, retry in %s: %v", delay, err)
		if c.sleep(delay) != nil {
			break
		}
	}
	return fmt.Errorf("%w: %v", ErrPlayFailed, err)
}

// Stop stops the running program.
func (c *Client) Stop() error {
	_, err := c.send("stop", "stopped")
	return err
}

// Pause pauses the running program.
func (c *Client) Pause() error {
	_, err := c.send("pause", "pausing program")
	return err
}

// Shutdown shuts down and turns off robot and controller.
func (c *Client) Shutdown() error {
	_, err := c.send("shutdown", "shutting down")
	return err
}

// PopupOpen shows a popup with message on the teach pendant.
func (c *Client) PopupOpen(message string) error {
	_, err := c.send("popup "+message, "showing popup")
	return err
}

// PopupClose closes an open popup.
func (c *Client) PopupClose() error {
	_, err := c.send("close popup", "closing popup")
	return err
}

// Log adds message to the log history of the controller.
func (c *Client) Log(message string) error {
	_, err := c.send("addToLog "+message, "added log message")
	return err
}

// SetOperationalMode sets the operational mode. While set, the mode can not
// be changed from PolyScope. OpModeNone hands control of the mode back to
// PolyScope.
func (c *Client) SetOperationalMode(mode OpMode) error {
	var err error
	switch mode {
	case OpModeManual, OpModeAutomatic:
		m := mode.String()
		_, err = c.send("set operational mode "+m, fmt.Sprintf("operational mode '%s' is set", m))
	case OpModeNone:
		_, err = c.send("clear operational mode", "no longer controlling the operational mode")
	default:
		err = fmt.Errorf("Invalid operational mode: %d", int(mode))
	}
	return err
}

// Power switches the power of the arm. Remote control only.
func (c *Client) Power(on bool) error {
	var err error
	if on {
		_, err = c.send("power on", "powering on")
	} else {
		_, err = c.send("power off", "powering off")
	}
	return err
}

// BrakeRelease releases the brakes. Remote control only.
func (c *Client) BrakeRelease() error {
	_, err := c.send("brake release", "brake releasing")
	return err
}
