package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"talklens/emotion"
)

func NewSpeakersCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "speakers <session-id>",
		Short: "Show detected speakers and their display names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := deps.Client.Speakers(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(names.Detected) == 0 {
				fmt.Println("No speakers detected yet")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tNAME\tSAMPLE")
			for _, detected := range names.Detected {
				key := emotion.SpeakerKey(detected)
				name := names.Map[key]
				if name == "" {
					name = "(unnamed)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", key, name, names.Samples[key])
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(newSpeakersRenameCmd(deps))
	return cmd
}

func newSpeakersRenameCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <session-id> <speaker-key> <name>",
		Short: "Assign a display name to a speaker",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, key, name := args[0], emotion.SpeakerKey(args[1]), args[2]

			names, err := deps.Client.Speakers(cmd.Context(), id)
			if err != nil {
				return err
			}
			nameMap := make(map[string]string, len(names.Map)+1)
			for k, v := range names.Map {
				nameMap[k] = v
			}
			nameMap[key] = name

			if err := deps.Client.SetSpeakers(cmd.Context(), id, nameMap); err != nil {
				return err
			}
			fmt.Printf("speaker %s is now %q\n", key, name)
			return nil
		},
	}
}
