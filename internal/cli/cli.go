package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/streetblock/pkg/buildinfo"
	"github.com/matzehuels/streetblock/pkg/cache"
	"github.com/matzehuels/streetblock/pkg/errors"
	"github.com/matzehuels/streetblock/pkg/observability"
	"github.com/matzehuels/streetblock/pkg/pipeline"
	"github.com/matzehuels/streetblock/pkg/store"
)

// appName is used for directories and display.
const appName = "streetblock"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Streetblock grows city street networks by recursive block subdivision",
		Long: `Streetblock starts from one rectangular block and repeatedly splits every
block that is larger than the block size with a new street, snapping street
ends onto nearby junctions, until no block can be split further.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			hooks := observability.NewLogHooks(c.Logger)
			observability.SetRunHooks(hooks)
			observability.SetCacheHooks(hooks)
			return nil
		},
	}
	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.paramsCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.snapshotsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// backends selects where the runner caches and stores results.
type backends struct {
	noCache  bool
	cacheDir string
	redis    string
	storeDir string
	mongo    string
}

// newRunner creates a pipeline runner. A local file cache is used unless
// caching is disabled or a Redis address is given; snapshots go to MongoDB
// when a URI is given and to the local store otherwise.
func (c *CLI) newRunner(ctx context.Context, b backends) (*pipeline.Runner, error) {
	ch, keyer, err := c.newCache(ctx, b)
	if err != nil {
		return nil, err
	}
	st, err := newStore(ctx, b)
	if err != nil {
		ch.Close()
		return nil, err
	}
	return pipeline.NewRunner(ch, keyer, st, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, b backends) (cache.Cache, cache.Keyer, error) {
	switch {
	case b.noCache:
		return cache.NewNullCache(), nil, nil
	case b.redis != "":
		if err := errors.ValidateRedisAddr(b.redis); err != nil {
			return nil, nil, err
		}
		rc, err := cache.NewRedisCache(ctx, b.redis)
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeUnsupported, err, "redis cache unavailable")
		}
		return rc, cache.NewScopedKeyer(nil, appName+":"), nil
	}

	dir := b.cacheDir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil, nil
		}
		dir = d
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, nil, err
	}
	return fc, nil, nil
}

func newStore(ctx context.Context, b backends) (store.Store, error) {
	if b.mongo != "" {
		if err := errors.ValidateMongoURI(b.mongo); err != nil {
			return nil, err
		}
		ms, err := store.NewMongoStore(ctx, b.mongo)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeUnsupported, err, "mongo store unavailable")
		}
		return ms, nil
	}
	return store.NewFileStore(b.storeDir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/streetblock/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// parseFormats splits a comma-separated format list. Empty means json.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatJSON}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// outputPath returns the file for one format. A .json or .dot extension on
// base is replaced by the format's.
func outputPath(base, format string) string {
	switch ext := filepath.Ext(base); ext {
	case ".json", ".dot":
		base = strings.TrimSuffix(base, ext)
	}
	return base + "." + format
}

// UserError formats err for the terminal, with its code and cause when it
// has them.
func UserError(err error) string {
	var e *errors.Error
	switch {
	case !stderrors.As(err, &e):
		return err.Error()
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v (%s)", e.Message, e.Cause, e.Code)
	default:
		return fmt.Sprintf("%s (%s)", e.Message, e.Code)
	}
}
