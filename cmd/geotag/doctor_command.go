package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"geotag/internal/preflight"
	"geotag/internal/services"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools and the output directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			target := strings.TrimSpace(outDir)
			if target == "" {
				target = cfg.Paths.OutputDir
			}
			if target == "" {
				target = "."
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("geotag doctor", colorize) {
				fmt.Fprintln(out, line)
			}
			if ctx.configPath != "" {
				fmt.Fprintln(out, renderStatusLine("Config", statusInfo, ctx.configPath, colorize))
			}

			results := preflight.Check(cmd.Context(), cfg, target)
			for _, line := range preflightLines(results, colorize) {
				fmt.Fprintln(out, line)
			}

			if preflight.Failed(results) {
				return services.Wrap(services.ErrExternalTool, "doctor", "check", "required checks failed", nil)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory to check (defaults to paths.output_dir)")
	return cmd
}
