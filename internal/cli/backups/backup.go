package backups

import (
	"fmt"
	"path/filepath"

	"github.com/julianstephens/zentask/internal/backup"
	"github.com/julianstephens/zentask/internal/cli"
	"github.com/julianstephens/zentask/internal/constants"
	"github.com/julianstephens/zentask/internal/utils"
)

type BackupCmd struct {
	Create BackupCreateCmd `cmd:"" help:"Create a manual backup." default:"1"`
	List   BackupListCmd   `cmd:"" help:"List available backups."`
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	path, err := ctx.Backups.CreateBackup(t.Export())
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	fmt.Fprintf(ctx.Out, "✓ Backup created: %s\n", filepath.Base(path))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr := ctx.Backups
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		fmt.Fprintln(ctx.Out, "No backups found.")
		fmt.Fprintf(ctx.Out, "Backups are stored in: %s\n", mgr.GetBackupDir())
		return nil
	}

	fmt.Fprintf(ctx.Out, "Available backups (%d total, keeping most recent %d):\n\n", len(backups), ctx.Config.Backup.Max)
	for _, b := range backups {
		sizeKB := float64(b.Size) / 1024.0
		fmt.Fprintf(ctx.Out, "  %s  %s  (%.1f KB)\n", b.Date.Format(constants.DateFormat), filepath.Base(b.Path), sizeKB)
	}
	fmt.Fprintf(ctx.Out, "\nBackup directory: %s\n", mgr.GetBackupDir())
	return nil
}

type ExportCmd struct {
	Out string `short:"o" help:"File to write. Defaults to zentask-export-<date>.json in the working directory."`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	path := c.Out
	if path == "" {
		path = fmt.Sprintf("%s-export-%s.json", constants.AppName, utils.FormatDate(ctx.Now()))
	}
	if err := backup.WriteFile(path, t.Export()); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "✓ Exported to %s\n", path)
	return nil
}

type ImportCmd struct {
	File string `arg:"" help:"Export or backup file (path or backup file name)."`
	Fix  bool   `help:"Repair duplicate ids and invalid dates instead of refusing the import."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	path, err := ctx.Backups.Resolve(c.File)
	if err != nil {
		return err
	}
	snap, err := backup.ReadFile(path)
	if err != nil {
		return err
	}
	t, err := ctx.Open()
	if err != nil {
		return err
	}

	fmt.Fprintln(ctx.Out, cli.Warning("Every category present in the file replaces your current data."))
	ok, err := ctx.Ask(fmt.Sprintf("Import %s?", filepath.Base(path)))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(ctx.Out, "Import cancelled.")
		return nil
	}

	ctx.PerformAutomaticBackup(t)
	rctx, cancel := ctx.WithTimeout()
	defer cancel()
	res, err := t.Import(rctx, snap, c.Fix)
	if err != nil {
		return err
	}
	for _, fix := range res.Fixes {
		fmt.Fprintf(ctx.Out, "  fixed: %s\n", fix.Action)
	}
	if len(res.Kinds) == 0 {
		fmt.Fprintln(ctx.Out, "Nothing to import: the file has no known categories.")
		return nil
	}
	fmt.Fprintf(ctx.Out, "✓ Imported %v\n", res.Kinds)
	if res.SyncErr != nil {
		fmt.Fprintf(ctx.Err, "%s imported data is saved locally but was not synced: %v\n", cli.Warning("Warning:"), res.SyncErr)
	}
	return nil
}

type ClearCmd struct{}

func (c *ClearCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, cli.Danger("This removes all local data for the current session."))
	if t.Session().Authenticated() {
		fmt.Fprintln(ctx.Out, "Data already synced to your account is kept.")
	}
	ok, err := ctx.Ask("Clear local data?")
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(ctx.Out, "Cancelled.")
		return nil
	}
	ctx.PerformAutomaticBackup(t)
	t.ClearLocal()
	fmt.Fprintln(ctx.Out, "✓ Local data cleared")
	return nil
}
