package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"talklens/audioinfo"
	"talklens/client"
	"talklens/config"
)

func NewUploadCmd(deps *Dependencies) *cobra.Command {
	var title string
	var preset string

	cmd := &cobra.Command{
		Use:   "upload <audio-file>",
		Short: "Upload a recording and enqueue processing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			duration := 0.0
			if info, err := audioinfo.Probe(path); err != nil {
				fmt.Printf("warning: could not probe %s: %v\n", path, err)
			} else {
				duration = info.Duration
				fmt.Printf("audio: %s, %.1fs\n", info.Format, info.Duration)
			}

			session, err := deps.Client.CreateSession(cmd.Context(), client.UploadRequest{
				Title:     title,
				AudioPath: path,
				Preset:    preset,
				Duration:  duration,
			})
			if err != nil {
				return err
			}
			fmt.Printf("created session %s (%q)\n", session.ID, session.Title)
			fmt.Println("processing runs in the background; watch it with 'talklens tui' or 'talklens status'")
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "session title (required)")
	cmd.Flags().StringVarP(&preset, "preset", "p", config.DefaultPreset, "summary preset")
	cmd.MarkFlagRequired("title")
	return cmd
}
