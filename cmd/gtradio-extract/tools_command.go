package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChickenNuggetsK/GTRadio/internal/config"
	"github.com/ChickenNuggetsK/GTRadio/internal/deps"
)

func newToolsCommand() *cobra.Command {
	var rpfCLI, vgmstream string

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Check that the external tools are installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Checked as a full extraction would need them, so both tools
			// count as required here.
			cfg := config.Default()
			cfg.AutoDetect = true
			cfg.RPFCLIBinary = rpfCLI
			cfg.VGMStreamBinary = vgmstream
			if err := cfg.Normalize(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			statuses := deps.CheckBinaries(deps.ForConfig(&cfg))
			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				state := paint("ok", ansiGreen, colorize)
				detail := status.Description
				if !status.Available {
					state = paint("missing", ansiRed, colorize)
					detail = status.Detail
				}
				rows = append(rows, []string{status.Name, status.Command, state, detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Tool", "Command", "Status", "Notes"}, rows))

			missing := deps.MissingRequired(statuses)
			if len(missing) == 0 {
				return nil
			}
			names := make([]string, 0, len(missing))
			for _, status := range missing {
				names = append(names, status.Name)
			}
			return fmt.Errorf("missing required tools: %s", strings.Join(names, ", "))
		},
	}

	cmd.Flags().StringVarP(&rpfCLI, "rpf-cli", "r", "", "Path to the rpf-cli binary")
	cmd.Flags().StringVarP(&vgmstream, "vgmstream", "v", "", "Path to the vgmstream-cli binary")
	return cmd
}
