package main

import (
	"github.com/spf13/cobra"
)

// version is set at link time with -ldflags "-X main.version=..."
var version = "dev"

// --- Global Command Variables ---
var (
	configPath string
	workers    int
	strategy   string
	solve      bool
	verbose    bool

	rootCmd = &cobra.Command{
		Use:   "femassemble",
		Short: "Parallel finite element assembly driver",
		Long: `femassemble builds a degree 1 Lagrange discretization of a Poisson problem on a
unit interval, square or cube, assembles it in parallel and reports the linear system.`,
		SilenceUsage: true,
	}

	assembleCmd = &cobra.Command{
		Use:   "assemble",
		Short: "Assemble the system described by a problem file",
		RunE:  runAssembleCmd,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("femassemble", version)
		},
	}
)

func init() {
	assembleCmd.Flags().StringVarP(&configPath, "config", "c", "", "problem file (YAML)")
	assembleCmd.Flags().IntVarP(&workers, "workers", "w", 0, "worker goroutines, overrides the problem file")
	assembleCmd.Flags().StringVar(&strategy, "strategy", "", "entity sharding: block or roundrobin, overrides the problem file")
	assembleCmd.Flags().BoolVar(&solve, "solve", false, "solve the system densely and report the error")
	assembleCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "development logging at debug level")
	_ = assembleCmd.MarkFlagRequired("config")

	rootCmd.AddCommand(assembleCmd)
	rootCmd.AddCommand(versionCmd)
}
