package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	ur "github.com/mdzio/go-ur"

	"github.com/mdzio/go-ur/rtde"
)

var (
	streamCount int
	streamVars  []string
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Print output data of the controller",
	Long: `Sets up an output recipe, starts the synchronization and prints the received
values. Without --var the default outputs (timestamp, TCP pose, joint
positions, ...) are streamed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := rtde.Dial(cfg.Host, cfg.Timeout)
		if err != nil {
			return err
		}
		defer func() {
			msgs, _ := c.Close()
			for _, m := range msgs {
				fmt.Fprintln(cmd.ErrOrStderr(), "Controller:", m)
			}
		}()
		vars := streamVars
		if len(vars) == 0 {
			vars = rtde.DefaultOutputs
		}
		return runStream(c, vars, cfg.Rate, streamCount, cmd.OutOrStdout())
	},
}

func init() {
	streamCmd.Flags().Float64("rate", 50, "output frequency in Hz (1..500)")
	streamCmd.Flags().IntVarP(&streamCount, "count", "n", 10, "number of packages, 0 streams until interrupted")
	streamCmd.Flags().StringSliceVar(&streamVars, "var", nil, "output variable (repeatable)")
}

func runStream(c *rtde.Client, vars []string, rate float64, count int, w io.Writer) error {
	if rate < 1 || rate > 500 {
		return fmt.Errorf("Invalid rate %g, expected 1..500 Hz", rate)
	}
	r, err := c.SetupOutput(vars, rate)
	if err != nil {
		return err
	}
	if len(r.Types) != len(vars) {
		return ur.Unexpectedf("%d output types for %d variables: %v", len(r.Types), len(vars), r)
	}
	for i, t := range r.Types {
		if t == rtde.Unresolved {
			return fmt.Errorf("Output variable %s is not available", vars[i])
		}
	}
	if err := c.Start(); err != nil {
		return err
	}
	for n := 0; count == 0 || n < count; {
		f, err := c.Read()
		if err != nil {
			return err
		}
		if !f.IsData() {
			continue
		}
		vals, err := f.Values(r)
		if err != nil {
			return err
		}
		for i, v := range vals {
			if i > 0 {
				fmt.Fprint(w, "\t")
			}
			fmt.Fprintf(w, "%s=%v", vars[i], format(v))
		}
		fmt.Fprintln(w)
		n++
	}
	return c.Pause()
}

// format prints poses in millimeters and degrees.
func format(v interface{}) interface{} {
	switch p := v.(type) {
	case rtde.Vec6:
		c := p.Convert()
		return fmt.Sprintf("[%.1f %.1f %.1f %.1f %.1f %.1f]", c.X, c.Y, c.Z, c.RX, c.RY, c.RZ)
	case rtde.Vec3:
		c := p.Convert()
		return fmt.Sprintf("[%.1f %.1f %.1f]", c.X, c.Y, c.Z)
	}
	return v
}
