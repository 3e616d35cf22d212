package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mdzio/go-ur/rtde"
)

var (
	logLevel  string
	logSource string
)

var logCmd = &cobra.Command{
	Use:   "log MESSAGE...",
	Short: "Add a message to the controller log",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lvl, err := parseLevel(logLevel)
		if err != nil {
			return err
		}
		c, err := rtde.Dial(cfg.Host, cfg.Timeout)
		if err != nil {
			return err
		}
		if err := c.SendMessage(strings.Join(args, " "), logSource, lvl); err != nil {
			c.Close()
			return err
		}
		_, err = c.Close()
		return err
	},
}

func init() {
	logCmd.Flags().StringVar(&logLevel, "level", "info", "exception, error, warning or info")
	logCmd.Flags().StringVar(&logSource, "source", "urctl", "source of the message")
}

func parseLevel(s string) (rtde.Level, error) {
	for _, l := range []rtde.Level{rtde.LevelException, rtde.LevelError, rtde.LevelWarning, rtde.LevelInfo} {
		if strings.EqualFold(l.String(), s) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("Invalid message level: %s", s)
}
