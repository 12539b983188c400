package main

import (
	"fmt"
	"os"

	"github.com/OFFIS-RIT/kgview/internal/util"
	"github.com/OFFIS-RIT/kgview/pkg/logger"
	"github.com/OFFIS-RIT/kgview/pkg/logger/console"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	if err := newRootCmd().Execute(); err != nil {
		logger.Error("Command failed", "err", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kgview",
		Short: "Turn reasoning responses into renderable entity graphs",
		Long: `kgview reads chat/reasoning responses (hypothesis, entity lists and
scored reasoning paths or a ready graph) and writes the node/edge view a
network graph component can render.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kgview v%s\n", version)
		},
	})

	assembleCmd := &cobra.Command{
		Use:   "assemble [files...]",
		Short: "Assemble graph views from response payloads",
		Long:  "Assemble graph views from JSON or YAML response payloads. Reads stdin when no file or \"-\" is given. Stdin may only be named once.",
		RunE:  runAssemble,
	}
	assembleCmd.Flags().Int("parallel", util.GetEnvInt("KGVIEW_PARALLEL_FILES", 4), "Number of payloads assembled in parallel")
	assembleCmd.Flags().String("out", "", "Directory to write <name>.graph.json files to instead of stdout")
	rootCmd.AddCommand(assembleCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "locate <search> [file]",
		Short: "Print the byte offsets of a string in a text",
		Long: `Print the byte offsets of every non-overlapping occurrence of <search>
in [file], or in stdin when no file or "-" is given. Offsets count UTF-8
bytes from the start of the text, one per line, not characters or UTF-16
code units.`,
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runLocate,
	})

	rootCmd.AddCommand(&cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of response payloads",
		RunE:  runSchema,
	})

	return rootCmd
}
