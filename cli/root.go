package cli

import (
	"github.com/spf13/cobra"

	"talklens/client"
	"talklens/config"
	"talklens/tui"
)

// Dependencies carries the shared wiring for all commands.
type Dependencies struct {
	Client *client.Client
	Config config.Config
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "talklens",
		Short: "Browse multi-speaker recordings, transcripts, emotions and summaries",
		Long:  "A terminal client for a conversation-analysis backend: upload recordings, watch transcript, emotion and summary artifacts become ready, and explore them with a synchronized playback clock.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(deps.Config)
		},
	}

	rootCmd.AddCommand(NewTUICmd(deps))
	rootCmd.AddCommand(NewListCmd(deps))
	rootCmd.AddCommand(NewStatusCmd(deps))
	rootCmd.AddCommand(NewUploadCmd(deps))
	rootCmd.AddCommand(NewDeleteCmd(deps))
	rootCmd.AddCommand(NewSpeakersCmd(deps))
	rootCmd.AddCommand(NewSummaryCmd(deps))

	return rootCmd
}

func NewTUICmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive session browser",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(deps.Config)
		},
	}
}
