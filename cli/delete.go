package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewDeleteCmd(deps *Dependencies) *cobra.Command {
	var keepBlobs bool

	cmd := &cobra.Command{
		Use:   "delete <session-id> [session-id...]",
		Short: "Delete sessions and, by default, their stored artifacts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deleteBlobs := !keepBlobs

			if len(args) == 1 {
				if err := deps.Client.DeleteSession(cmd.Context(), args[0], deleteBlobs); err != nil {
					return err
				}
				fmt.Printf("deleted %s\n", args[0])
				return nil
			}

			// Bulk deletes are best-effort; report each id's outcome.
			result, err := deps.Client.DeleteSessions(cmd.Context(), args, deleteBlobs)
			if err != nil {
				return err
			}
			for _, id := range result.Deleted {
				fmt.Printf("deleted %s\n", id)
			}
			for id, reason := range result.Failed {
				fmt.Printf("failed %s: %s\n", id, reason)
			}
			if len(result.Failed) > 0 {
				return fmt.Errorf("%d of %d deletes failed", len(result.Failed), len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&keepBlobs, "keep-blobs", false, "delete the records but keep stored audio and artifacts")
	return cmd
}
