package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mdzio/go-ur/dashboard"
	"github.com/mdzio/go-ur/robot"
	"github.com/mdzio/go-ur/rtde"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the version of the controller software",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := rtde.Dial(cfg.Host, cfg.Timeout)
		if err != nil {
			return err
		}
		defer c.Close()
		v, err := c.ControlVersion()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show meta data and state of the robot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := robot.Connect(cfg.Host, cfg.Timeout)
		if err != nil {
			return err
		}
		defer r.Close()
		return runStatus(r, cmd.OutOrStdout())
	},
}

// robotStatus is implemented by robot.Robot.
type robotStatus interface {
	MetaData() (dashboard.RobotState, error)
	State() (dashboard.OperationalState, error)
	ControlVersion() (rtde.Version, error)
}

func runStatus(r robotStatus, w io.Writer) error {
	md, err := r.MetaData()
	if err != nil {
		return fmt.Errorf("Querying of meta data failed: %w", err)
	}
	st, err := r.State()
	if err != nil {
		return fmt.Errorf("Querying of state failed: %w", err)
	}
	v, err := r.ControlVersion()
	if err != nil {
		return fmt.Errorf("Querying of controller version failed: %w", err)
	}
	fmt.Fprintf(w, "Model:            %s\n", md.Model)
	fmt.Fprintf(w, "Serial:           %s\n", md.Serial)
	fmt.Fprintf(w, "Software:         %s\n", md.Version)
	fmt.Fprintf(w, "Controller:       %v\n", v)
	fmt.Fprintf(w, "Robot mode:       %v\n", st.Mode)
	fmt.Fprintf(w, "Safety status:    %v\n", md.SafetyStatus)
	fmt.Fprintf(w, "Operational mode: %v\n", md.OperationalMode)
	fmt.Fprintf(w, "Remote control:   %t\n", md.IsRemote)
	fmt.Fprintf(w, "Program:          %v (saved: %t)\n", st.State, md.IsSaved)
	return nil
}
