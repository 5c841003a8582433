package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"talklens/types"
)

func NewListCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List uploaded sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessions, err := deps.Client.ListSessions(cmd.Context())
			if err != nil {
				return err
			}
			if len(sessions) == 0 {
				fmt.Println("No sessions found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tCREATED\tTRANSCRIPT\tEMOTIONS\tSUMMARY")
			for _, sess := range sessions {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					sess.ID, sess.Title, sess.CreatedAt,
					sess.TranscriptStatus, sess.EmotionStatus, sess.SummaryStatus)
			}
			return w.Flush()
		},
	}
}

func NewStatusCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "status <session-id>",
		Short: "Show the readiness of each artifact of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			session, err := deps.Client.GetSession(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Printf("%s (%s)\n", session.Title, session.ID)

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, kind := range types.Kinds {
				if kind == types.KindMetadata {
					// Metadata has no descriptor endpoint; the session record
					// we already hold is its status.
					status := session.SessionStatus
					if status == "" {
						status = types.StatusCompleted
					}
					fmt.Fprintf(w, "%s\t%s\t\n", kind, status)
					continue
				}
				artifact, err := deps.Client.FetchArtifact(cmd.Context(), id, kind)
				if err != nil {
					fmt.Fprintf(w, "%s\terror: %v\n", kind, err)
					continue
				}
				detail := ""
				if artifact.Result != nil {
					detail = artifact.Result.ObjectPath
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", kind, artifact.Status, detail)
			}
			return w.Flush()
		},
	}
}
