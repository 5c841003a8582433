package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"talklens/config"
)

func NewSummaryCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summary presets and regeneration",
	}
	cmd.AddCommand(newSummaryPresetsCmd(deps))
	cmd.AddCommand(newSummaryRegenerateCmd(deps))
	return cmd
}

func newSummaryPresetsCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List available summary presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			presets, err := deps.Client.SummaryPresets(cmd.Context())
			if err != nil {
				return err
			}
			for _, preset := range presets {
				fmt.Printf("%s\t%s\n", preset.Key, preset.Label)
			}
			return nil
		},
	}
}

func newSummaryRegenerateCmd(deps *Dependencies) *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "regenerate <session-id>",
		Short: "Regenerate a session's summary with a preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deps.Client.RegenerateSummary(cmd.Context(), args[0], preset); err != nil {
				return err
			}
			fmt.Printf("summary regeneration queued for %s (preset %s)\n", args[0], preset)
			return nil
		},
	}

	cmd.Flags().StringVarP(&preset, "preset", "p", config.DefaultPreset, "summary preset")
	return cmd
}
