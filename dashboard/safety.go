package dashboard

// SafetyStatus queries the safety status.
func (c *Client) SafetyStatus() (SafetyStatus, error) {
	resp, err := c.send("safetystatus", "safetystatus")
	if err != nil {
		return 0, err
	}
	v, err := field(resp, 1)
	if err != nil {
		return 0, err
	}
	return ParseSafetyStatus(v)
}

// CloseSafetyPopup closes an open safety popup.
func (c *Client) CloseSafetyPopup() error {
	_, err := c.send("close safety popup", "closing safety popup")
	return err
}

// UnlockProtectiveStop closes the current popup and unlocks a protective
// stop. The controller refuses this within 5 seconds after the stop.
func (c *Client) UnlockProtectiveStop() error {
	_, err := c.send("unlock protective stop", "protective stop releasing")
	return err
}

// RestartSafety restarts the safety system after a fault or violation. The
// robot is powered off afterwards. The restart is noted in the controller
// log.
func (c *Client) RestartSafety() error {
	if err := c.Log("restarted safety remotely"); err != nil {
		return err
	}
	_, err := c.send("restart safety", "restarting safety")
	return err
}
