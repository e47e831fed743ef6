package system

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/zentask/internal/cli"
	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/storage"
	"github.com/julianstephens/zentask/internal/storage/jsonfile"
	"github.com/julianstephens/zentask/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting the existing local store before initialization."`
	Source string `help:"Local store file (.db or .json) to copy data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	dbPath := ctx.Local.GetConfigPath()
	if c.Source != "" && samePath(c.Source, dbPath) {
		return fmt.Errorf("source and destination are the same: %s", dbPath)
	}

	if c.Force {
		if _, err := os.Stat(dbPath); err == nil {
			// Close first to release the file handle
			if err := ctx.Local.Close(); err != nil {
				return fmt.Errorf("failed to close existing store: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing store: %w", err)
			}
			fmt.Fprintf(ctx.Out, "Deleted existing store at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing store: %w", err)
		}
	}

	if err := ctx.Local.Init(); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Initialized zentask storage at: %s\n", dbPath)

	if ctx.Remote != nil {
		if err := ctx.Remote.Init(); err != nil {
			return fmt.Errorf("failed to initialize remote store: %w", err)
		}
		fmt.Fprintf(ctx.Out, "Initialized remote store (%s)\n", ctx.Config.RemoteSource)
	}

	if c.Source != "" {
		fmt.Fprintf(ctx.Out, "Copying data from: %s\n", c.Source)
		n, err := copyLocal(openLocal(c.Source), ctx.Local)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Fprintf(ctx.Out, "Copied %d categories.\n", n)
	}
	return nil
}

func openLocal(path string) storage.Local {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return jsonfile.NewStore(path)
	}
	return sqlite.NewStore(path)
}

// copyLocal copies every category of every namespace in src into dst. Flags
// are not copied: the session stays the one of dst.
func copyLocal(src, dst storage.Local) (int, error) {
	if err := src.Load(); err != nil {
		return 0, fmt.Errorf("failed to load source store: %w", err)
	}
	defer src.Close()

	lister, ok := src.(storage.NamespaceLister)
	if !ok {
		return 0, fmt.Errorf("source store cannot list its namespaces")
	}
	namespaces, err := lister.Namespaces()
	if err != nil {
		return 0, err
	}

	copied := 0
	for _, ns := range namespaces {
		for _, kind := range models.AllKinds {
			if v, ok := src.Read(ns, kind); ok {
				dst.Write(ns, kind, v)
				copied++
			}
		}
	}
	return copied, nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}
