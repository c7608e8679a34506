package cli

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/streetblock/pkg/city/generate"
	"github.com/matzehuels/streetblock/pkg/config"
	"github.com/matzehuels/streetblock/pkg/errors"
	"github.com/matzehuels/streetblock/pkg/pipeline"
)

// paramFlags select the parameters of a run. They are shared by generate
// and params so both commands resolve a seed the same way.
type paramFlags struct {
	seed   uint64
	config string
	width  float64
	depth  float64
}

func (f *paramFlags) bind(cmd *cobra.Command) {
	cmd.Flags().Uint64Var(&f.seed, "seed", pipeline.DefaultSeed, "random seed for the generation parameters")
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "TOML config file")
	cmd.Flags().Float64Var(&f.width, "width", 0, "override the root block width")
	cmd.Flags().Float64Var(&f.depth, "depth", 0, "override the root block depth")
}

// loadConfig reads the config file, or returns an empty config when none
// is given.
func (f *paramFlags) loadConfig() (*config.Config, error) {
	if f.config == "" {
		return &config.Config{}, nil
	}
	cfg, err := config.Load(f.config)
	switch {
	case err == nil:
		return cfg, nil
	case stderrors.Is(err, os.ErrNotExist):
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", f.config)
	default:
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "config %s", f.config)
	}
}

// resolve returns the seed and parameters. Flags win over the config file,
// which wins over the values drawn from the seed.
func (f *paramFlags) resolve(cmd *cobra.Command, cfg *config.Config) (uint64, generate.Params, error) {
	seed := pipeline.DefaultSeed
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}
	if cmd.Flags().Changed("seed") {
		seed = f.seed
	}

	params := cfg.Params.Apply(generate.NewParams(seed))
	if cmd.Flags().Changed("width") {
		if err := errors.ValidateExtent("width", f.width); err != nil {
			return 0, params, err
		}
		params.Width = f.width
	}
	if cmd.Flags().Changed("depth") {
		if err := errors.ValidateExtent("depth", f.depth); err != nil {
			return 0, params, err
		}
		params.Depth = f.depth
	}
	if err := params.Validate(); err != nil {
		return 0, params, errors.Wrap(errors.ErrCodeInvalidParams, err, "seed %d", seed)
	}
	return seed, params, nil
}

type generateFlags struct {
	paramFlags
	generations int
	strict      bool
	inset       float64
	formats     string
	output      string
	layout      bool
	refresh     bool
	save        bool
	noCache     bool
	redis       string
	mongo       string
}

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var flags generateFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Grow a city and export it",
		Long: `Grow a city from a seed and write it as JSON and/or Graphviz DOT.

The subdivision runs until no block can be split or the generation limit is
reached. Results are cached by their parameters, so repeating a run is free.`,
		Example: `  streetblock generate --seed 7 -f json,dot -o downtown
  streetblock generate -c city.toml --layout -f dot
  streetblock generate --seed 7 --save --mongo mongodb://localhost:27017`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd, &flags)
		},
	}

	flags.bind(cmd)
	cmd.Flags().IntVarP(&flags.generations, "generations", "g", pipeline.DefaultGenerations, "maximum number of generations")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "abort a split when an edge path cannot be traced")
	cmd.Flags().Float64Var(&flags.inset, "inset", 0, "add lot footprints inset from the streets by this length")
	cmd.Flags().StringVarP(&flags.formats, "format", "f", "", "output formats: json, dot (comma-separated)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "city", "output file base name")
	cmd.Flags().BoolVar(&flags.layout, "layout", false, "lay out DOT output with Graphviz")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached results")
	cmd.Flags().BoolVar(&flags.save, "save", false, "store the city as a snapshot")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&flags.redis, "redis", "", "cache in Redis at host:port")
	cmd.Flags().StringVar(&flags.mongo, "mongo", "", "store snapshots in MongoDB at this URI")

	return cmd
}

// generateOptions merges flags and config into pipeline options and backends.
func generateOptions(cmd *cobra.Command, flags *generateFlags) (pipeline.Options, backends, error) {
	cfg, err := flags.loadConfig()
	if err != nil {
		return pipeline.Options{}, backends{}, err
	}
	seed, params, err := flags.resolve(cmd, cfg)
	if err != nil {
		return pipeline.Options{}, backends{}, err
	}

	changed := cmd.Flags().Changed
	opts := pipeline.Options{
		Seed:        seed,
		Params:      &params,
		Generations: cfg.Generations,
		Strict:      cfg.Strict || flags.strict,
		Inset:       cfg.Inset,
		Formats:     cfg.Formats,
		Layout:      flags.layout,
		Refresh:     flags.refresh,
		Save:        flags.save,
	}
	if changed("generations") || opts.Generations == 0 {
		opts.Generations = flags.generations
	}
	if changed("inset") {
		opts.Inset = flags.inset
	}
	if changed("format") || len(opts.Formats) == 0 {
		opts.Formats = parseFormats(flags.formats)
	}

	b := backends{
		noCache:  cfg.Cache.Disabled || flags.noCache,
		cacheDir: cfg.Cache.Dir,
		redis:    cfg.Cache.Redis,
		storeDir: cfg.Store.Dir,
		mongo:    cfg.Store.Mongo,
	}
	if changed("redis") {
		b.redis = flags.redis
	}
	if changed("mongo") {
		b.mongo = flags.mongo
	}
	return opts, b, nil
}

func (c *CLI) runGenerate(cmd *cobra.Command, flags *generateFlags) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	opts, b, err := generateOptions(cmd, flags)
	if err != nil {
		return err
	}
	if err := errors.ValidateOutputPath(flags.output); err != nil {
		return err
	}
	opts.Logger = c.Logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, b)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, cmd.ErrOrStderr(), "Subdividing blocks...")
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	spinner.Stop()
	if err != nil {
		return err
	}

	for _, format := range opts.Formats {
		path := outputPath(flags.output, format)
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
		}
		printFile(out, path)
	}
	if !b.noCache {
		printCacheStatus(out, "city", result.CacheInfo.CityHit)
	}

	st := result.Stats
	rows := []row{
		{"seed", fmt.Sprint(opts.Seed)},
		{"generations", formatInt(st.Generations)},
		{"blocks", formatInt(st.Cells)},
		{"junctions", formatInt(st.Points)},
		{"street length", formatFloat(st.StreetLength)},
		{"converged", formatBool(st.Converged)},
	}
	if !result.CacheInfo.CityHit {
		rows = append(rows, row{"splits", formatInt(st.Split)}, row{"aborted", formatInt(st.Failed)})
	}
	if opts.Save {
		rows = append(rows, row{"snapshot", result.City.ID})
	}
	printSummary(out, "City", rows)

	if !st.Converged {
		printWarning(out, "generation limit reached before every block was final")
	}
	prog.done(fmt.Sprintf("Generated %d blocks", st.Cells))
	return nil
}
