package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/zentask/internal/cli"
	"github.com/julianstephens/zentask/internal/cli/account"
	"github.com/julianstephens/zentask/internal/cli/backups"
	"github.com/julianstephens/zentask/internal/cli/challenges"
	"github.com/julianstephens/zentask/internal/cli/goals"
	"github.com/julianstephens/zentask/internal/cli/habits"
	"github.com/julianstephens/zentask/internal/cli/report"
	"github.com/julianstephens/zentask/internal/cli/settings"
	"github.com/julianstephens/zentask/internal/cli/system"
	"github.com/julianstephens/zentask/internal/cli/tasks"
	"github.com/julianstephens/zentask/internal/config"
	"github.com/julianstephens/zentask/internal/constants"
	"github.com/julianstephens/zentask/internal/errors"
	"github.com/julianstephens/zentask/internal/logger"
	"github.com/julianstephens/zentask/internal/notifier"
	"github.com/julianstephens/zentask/internal/storage"
	"github.com/julianstephens/zentask/internal/storage/postgres"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"path" default:"~/.config/zentask/config.yaml" env:"ZENTASK_CONFIG"`
	Yes     bool   `short:"y" help:"Answer yes to every confirmation prompt."`
	Debug   bool   `help:"Log at debug level."`

	Init    system.InitCmd    `cmd:"" help:"Initialize zentask storage."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Status  system.StatusCmd  `cmd:"" help:"Show session, stores and pending sync state." default:"1"`
	Sync    system.SyncCmd    `cmd:"" help:"Push every category to the remote store now."`
	Inspect system.DebugCmd   `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
	Keyring system.KeyringCmd `cmd:"" help:"Manage the remote connection string in the OS keyring."`
	Notify  system.NotifyCmd  `cmd:"" help:"Send reminders about the day's open tasks, habits and challenges."`

	Login  account.LoginCmd  `cmd:"" help:"Sign in and sync with the remote store."`
	Logout account.LogoutCmd `cmd:"" help:"Sign out. Local data is kept."`
	Guest  account.GuestCmd  `cmd:"" help:"Continue without an account."`

	Task      tasks.TaskCmd           `cmd:"" help:"Manage daily tasks."`
	Habit     habits.HabitCmd         `cmd:"" help:"Manage monthly habits."`
	Goal      goals.GoalCmd           `cmd:"" help:"Manage monthly and yearly goals."`
	Challenge challenges.ChallengeCmd `cmd:"" help:"Manage challenges."`
	Profile   settings.ProfileCmd     `cmd:"" help:"Show or update your profile and preferences."`
	Stats     report.StatsCmd         `cmd:"" help:"Show monthly statistics and insights."`
	Search    report.SearchCmd        `cmd:"" help:"Search tasks across all days."`

	Backup backups.BackupCmd `cmd:"" help:"Manage backups."`
	Export backups.ExportCmd `cmd:"" help:"Export all data to a JSON file."`
	Import backups.ImportCmd `cmd:"" help:"Import data from an export or backup file."`
	Clear  backups.ClearCmd  `cmd:"" help:"Remove all local data of the current session."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("zentask"),
		kong.Description("Offline-first tracker for tasks, habits, goals and challenges"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	errors.Fatal(run(kctx))
}

func run(kctx *kong.Context) error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	if CLI.Debug {
		cfg.Debug = true
	}
	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: cfg.Dir()}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: file logging disabled: %v\n", err)
	}

	local, err := cli.NewLocal(cfg)
	if err != nil {
		return err
	}

	var remote storage.Remote
	command, _, _ := strings.Cut(kctx.Command(), " ")
	switch command {
	case "init":
		// Init creates the schemas, so neither store is loaded first.
		if cfg.HasRemote() {
			remote = postgres.New(cfg.RemoteURL)
		}
	case "keyring":
	case "migrate":
		remote = cli.OpenRemote(cfg)
	default:
		if err := local.Load(); err != nil {
			return err
		}
		remote = cli.OpenRemote(cfg)
	}

	appCtx := cli.NewContext(cfg, cli.Options{
		Local:    local,
		Remote:   remote,
		Notifier: notifier.Chain{notifier.New(), notifier.NewConsole(os.Stderr)},
	})
	appCtx.Yes = CLI.Yes
	defer appCtx.Close()

	err = kctx.Run(appCtx)
	appCtx.Finish()
	return err
}
