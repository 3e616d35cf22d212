package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mdzio/go-ur/dashboard"
	"github.com/mdzio/go-ur/robot"
)

var dashCmd = &cobra.Command{
	Use:   "dash COMMAND...",
	Short: "Send a raw command to the Dashboard Server",
	Example: `  urctl dash robotmode
  urctl dash popup Hello`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := dashboard.Dial(cfg.Host, cfg.Timeout)
		if err != nil {
			return err
		}
		defer c.Close()
		return runDash(c, args, cmd.OutOrStdout())
	},
}

type commander interface {
	Command(cmd string) (string, error)
}

func runDash(c commander, args []string, w io.Writer) error {
	resp, err := c.Command(strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(w, resp)
	return nil
}

var (
	waitTimeout time.Duration
)

var powerCmd = &cobra.Command{
	Use:       "power on|off",
	Short:     "Power the arm on or off",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"on", "off"},
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := robot.Connect(cfg.Host, cfg.Timeout)
		if err != nil {
			return err
		}
		defer r.Close()
		if args[0] == "off" {
			return r.Dashboard.Power(false)
		}
		return r.PowerOn(waitTimeout)
	},
}

var loadCmd = &cobra.Command{
	Use:   "load PROGRAM",
	Short: "Load a program and wait until it is loaded",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := robot.Connect(cfg.Host, cfg.Timeout)
		if err != nil {
			return err
		}
		defer r.Close()
		return r.Load(args[0], waitTimeout)
	},
}

func init() {
	powerCmd.Flags().DurationVar(&waitTimeout, "wait", 30*time.Second, "maximum time to wait for power on")
	loadCmd.Flags().DurationVar(&waitTimeout, "wait", 30*time.Second, "maximum time to wait for the program")
}
