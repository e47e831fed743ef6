package system

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/zentask/internal/cli"
	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/storage"
)

type DebugCmd struct {
	DBPath     DebugDBPathCmd     `cmd:"" help:"Show local store path."`
	Namespaces DebugNamespacesCmd `cmd:"" help:"List namespaces held by the local store."`
	Dump       DebugDumpCmd       `cmd:"" help:"Dump the raw local value of a category as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return writeJSON(ctx, map[string]string{
		"path":    ctx.Local.GetConfigPath(),
		"backend": ctx.Config.LocalBackend,
		"backups": ctx.Backups.GetBackupDir(),
	})
}

type DebugNamespacesCmd struct{}

func (cmd *DebugNamespacesCmd) Run(ctx *cli.Context) error {
	lister, ok := ctx.Local.(storage.NamespaceLister)
	if !ok {
		return fmt.Errorf("local store cannot list namespaces")
	}
	namespaces, err := lister.Namespaces()
	if err != nil {
		return fmt.Errorf("failed to list namespaces: %w", err)
	}
	if namespaces == nil {
		namespaces = []string{}
	}
	return writeJSON(ctx, namespaces)
}

type DebugDumpCmd struct {
	Kind      string `arg:"" help:"Category to dump (logs, habits, goals, challenges, profile)."`
	Namespace string `help:"Namespace to read. Defaults to the current session's."`
}

func (cmd *DebugDumpCmd) Run(ctx *cli.Context) error {
	kind, err := models.ParseKind(cmd.Kind)
	if err != nil {
		return err
	}
	ns := cmd.Namespace
	if ns == "" {
		ns = ctx.Resolver.Current().Namespace()
	}

	raw, ok := ctx.Local.Read(ns, kind)
	if !ok {
		return fmt.Errorf("no %s stored under namespace %q", kind, ns)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("stored %s is not valid JSON: %w", kind, err)
	}
	fmt.Fprintln(ctx.Out, buf.String())
	return nil
}

func writeJSON(ctx *cli.Context, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(ctx.Out, string(jsonBytes))
	return nil
}
