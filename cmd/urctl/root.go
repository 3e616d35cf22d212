package main

import (
	"github.com/spf13/cobra"
)

var (
	// global flags
	configFile string

	// set by PersistentPreRunE
	cfg *config
)

var rootCmd = &cobra.Command{
	Use:   "urctl",
	Short: "Query and control Universal Robots controllers",
	Long: `urctl talks to the Dashboard Server (port 29999) and the RTDE interface
(port 30004) of a Universal Robots controller or URSim.

Flags may also be set with environment variables (UR_HOST, UR_TIMEOUT,
UR_LOG, UR_RATE) or in a config file.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = loadConfig(cmd); err != nil {
			return err
		}
		return applyLogLevel(cfg.Log)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "config file (YAML, TOML or JSON)")
	pf.StringP("host", "H", "127.0.0.1", "hostname or IP address of the controller")
	pf.Duration("timeout", 0, "connect, read and write timeout (default 10s)")
	pf.String("log", "", "log level: OFF, ERROR, WARNING, INFO, DEBUG, TRACE (default WARNING)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(streamCmd)
	rootCmd.AddCommand(dashCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(powerCmd)
	rootCmd.AddCommand(loadCmd)
}
