package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/matzehuels/streetblock/pkg/errors"
	cityio "github.com/matzehuels/streetblock/pkg/io"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		id    string
		mongo string
	)

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Validate and summarize a city",
		Long: `Validate a city exported as JSON, or a stored snapshot given by --id, and
print its block statistics. Validation rebuilds the street graph and fails on
one-way links, dangling references and malformed blocks.`,
		Example: `  streetblock inspect city.json
  streetblock inspect --id 0b6c4e2a-...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 1) == (id != "") {
				return errors.New(errors.ErrCodeInvalidInput, "give either a file or --id")
			}
			var (
				city *cityio.City
				err  error
			)
			if id != "" {
				city, err = c.loadSnapshot(cmd.Context(), backends{mongo: mongo}, id)
			} else {
				city, err = readCity(args[0])
			}
			if err != nil {
				return err
			}
			rows, err := inspectCity(city)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), "City", rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "inspect a stored snapshot")
	cmd.Flags().StringVar(&mongo, "mongo", "", "read snapshots from MongoDB at this URI")
	return cmd
}

// loadSnapshot fetches a stored city through a runner without a cache.
func (c *CLI) loadSnapshot(ctx context.Context, b backends, id string) (*cityio.City, error) {
	b.noCache = true
	runner, err := c.newRunner(ctx, b)
	if err != nil {
		return nil, err
	}
	defer runner.Close()
	return runner.Load(ctx, id)
}

func readCity(path string) (*cityio.City, error) {
	city, err := cityio.ImportJSON(path)
	switch {
	case err == nil:
		return city, nil
	case stderrors.Is(err, os.ErrNotExist):
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", path)
	default:
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
}

// inspectCity validates c and returns its statistics as summary rows.
func inspectCity(c *cityio.City) ([]row, error) {
	graph, cells, err := c.Restore()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid city")
	}

	areas := make([]float64, len(cells))
	for i, cell := range cells {
		areas[i] = cell.Area(graph)
	}

	rows := []row{
		{"seed", fmt.Sprint(c.Seed)},
		{"generation", formatInt(c.Generation)},
		{"converged", formatBool(c.Converged)},
		{"blocks", formatInt(len(cells))},
		{"junctions", formatInt(graph.Len())},
		{"street length", formatFloat(graph.StreetLength())},
	}
	if len(areas) > 0 {
		rows = append(rows,
			row{"total area", formatFloat(floats.Sum(areas))},
			row{"smallest block", formatFloat(floats.Min(areas))},
			row{"largest block", formatFloat(floats.Max(areas))},
			row{"block size", formatFloat(c.Params.BlockSize)},
		)
	}
	if len(c.Lots) > 0 {
		rows = append(rows, row{"lots", formatInt(len(c.Lots))})
	}
	if c.ID != "" {
		rows = append(rows, row{"snapshot", c.ID})
	}
	return rows, nil
}
