package cli

import (
	stderrors "errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/streetblock/pkg/errors"
	"github.com/matzehuels/streetblock/pkg/store"
)

// snapshotsCommand creates the snapshots command for stored cities.
func (c *CLI) snapshotsCommand() *cobra.Command {
	var b backends

	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "List and delete stored cities",
		Long: `Manage cities saved with "generate --save". Snapshots live in the local
data directory unless --mongo names a MongoDB deployment.`,
	}
	cmd.PersistentFlags().StringVar(&b.mongo, "mongo", "", "MongoDB URI")
	cmd.PersistentFlags().StringVar(&b.storeDir, "dir", "", "local snapshot directory")

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored cities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := newStore(cmd.Context(), b)
			if err != nil {
				return err
			}
			defer st.Close()

			summaries, err := st.List(cmd.Context())
			if err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "list snapshots")
			}
			if len(summaries) == 0 {
				printInfo(cmd.OutOrStdout(), "No snapshots stored")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), snapshotTable(summaries))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <id>...",
		Short: "Delete stored cities",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := newStore(cmd.Context(), b)
			if err != nil {
				return err
			}
			defer st.Close()

			for _, id := range args {
				if err := st.Delete(cmd.Context(), id); err != nil {
					return storeError(err, id)
				}
				printSuccess(cmd.OutOrStdout(), "Deleted %s", id)
			}
			return nil
		},
	})

	return cmd
}

func snapshotTable(summaries []store.Summary) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers("ID", "SEED", "GENERATION", "BLOCKS", "JUNCTIONS").
		StyleFunc(func(r, col int) lipgloss.Style {
			switch {
			case r == table.HeaderRow:
				return StyleTitle.PaddingRight(1)
			case col == 0:
				return StyleValue.PaddingRight(1)
			default:
				return StyleNumber.PaddingRight(1)
			}
		})
	for _, s := range summaries {
		t.Row(s.ID, fmt.Sprint(s.Seed), formatInt(s.Generation), formatInt(s.Cells), formatInt(s.Points))
	}
	return t.Render()
}

func storeError(err error, id string) error {
	switch {
	case stderrors.Is(err, store.ErrNotFound):
		return errors.Wrap(errors.ErrCodeNotFound, err, "snapshot %s", id)
	case stderrors.Is(err, store.ErrInvalidID):
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "snapshot %q", id)
	default:
		return errors.Wrap(errors.ErrCodeInternal, err, "snapshot %s", id)
	}
}
