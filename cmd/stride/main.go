package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/julianstephens/stride/internal/cli"
	"github.com/julianstephens/stride/internal/cli/backups"
	"github.com/julianstephens/stride/internal/cli/goals"
	"github.com/julianstephens/stride/internal/cli/habits"
	"github.com/julianstephens/stride/internal/cli/settings"
	"github.com/julianstephens/stride/internal/cli/social"
	"github.com/julianstephens/stride/internal/cli/system"
	"github.com/julianstephens/stride/internal/community"
	"github.com/julianstephens/stride/internal/constants"
	"github.com/julianstephens/stride/internal/keyring"
	"github.com/julianstephens/stride/internal/logger"
	"github.com/julianstephens/stride/internal/notifier"
	"github.com/julianstephens/stride/internal/storage"
	"github.com/julianstephens/stride/internal/storage/postgres"
	"github.com/julianstephens/stride/internal/storage/sqlite"
	"github.com/julianstephens/stride/internal/tracker"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Database file path or PostgreSQL connection string. Credentials must NOT be embedded; use ${env_var}, .pgpass or the OS keyring instead." default:"${default_config}"`
	Debug   bool   `help:"Write debug logs to stderr."`

	Init        system.InitCmd        `cmd:"" help:"Initialize stride storage."`
	Migrate     system.MigrateCmd     `cmd:"" help:"Run database migrations."`
	Doctor      system.DoctorCmd      `cmd:"" help:"Run health checks and diagnostics."`
	ConfigCmd   system.ConfigCmd      `cmd:"" name:"config" help:"Manage the database connection."`
	Settings    settings.SettingsCmd  `cmd:"" help:"Show or change settings."`
	Goal        goals.GoalCmd         `cmd:"" help:"Manage goals."`
	Habit       habits.HabitCmd       `cmd:"" help:"Manage habits."`
	Log         habits.LogCmd         `cmd:"" help:"Mark a habit done for today."`
	Day         habits.DayCmd         `cmd:"" help:"Show habits for a day."`
	Progress    goals.ProgressCmd     `cmd:"" help:"Record goal measurements."`
	Week        goals.WeekCmd         `cmd:"" help:"Weekly snapshots."`
	Achievement habits.AchievementCmd `cmd:"" help:"Achievements and badges."`
	Shield      habits.ShieldCmd      `cmd:"" help:"Streak shields."`
	Community   social.CommunityCmd   `cmd:"" help:"Accountability communities."`
	Backup      backups.BackupCmd     `cmd:"" help:"Manage database backups."`
	Serve       system.ServeCmd       `cmd:"" help:"Run the HTTP API and scheduled jobs."`
	Scheduler   system.SchedulerCmd   `cmd:"" help:"Run scheduled jobs by hand."`
	Tui         system.TuiCmd         `cmd:"" help:"Launch the interactive TUI." default:"1"`
}

// Commands that run before (or without) an initialized database.
var skipLoad = map[string]bool{"init": true, "config": true, "doctor": true}

func main() {
	// A .env in the working directory may supply STRIDE_* variables; the
	// real environment wins.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to read .env: %v\n", err)
	}

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Goal and habit tracker with streaks, weekly snapshots and accountability communities"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":        constants.Version,
			"default_config": constants.DefaultConfigPath,
			"env_var":        constants.ConnectionEnvVar,
			"serve_addr":     constants.DefaultServeAddr,
		},
	)

	command := strings.Fields(ctx.Command())[0]

	store, logDir, err := openStore(CLI.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: logDir,
		Stderr:    command == "serve",
		Level:     os.Getenv(logger.LevelEnvVar),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}

	if !skipLoad[command] {
		if err := store.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	trk, err := tracker.New(store, tracker.WithNotifier(notifier.New()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	appCtx := &cli.Context{
		Store:     store,
		Tracker:   trk,
		Community: community.New(trk),
	}

	if err := ctx.Run(appCtx); err != nil {
		logger.Error("Command execution failed", "command", ctx.Command(), "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openStore picks the backend for the resolved location and the directory
// logs are written to.
func openStore(flagValue string) (storage.Provider, string, error) {
	connStr, source := keyring.ResolveConnectionString(flagValue)
	if !storage.IsPostgres(connStr) {
		s := sqlite.NewStore(connStr)
		return s, filepath.Dir(s.GetConfigPath()), nil
	}

	if err := postgres.ValidateConnString(connStr); err != nil {
		if !errors.Is(err, postgres.ErrEmbeddedCredentials) {
			return nil, "", err
		}
		if source == keyring.SourceFlag {
			return nil, "", fmt.Errorf("PostgreSQL connection strings with embedded credentials are NOT allowed on the command line.\n"+
				"       Use 'stride config set-connection', the %s environment variable, or a .pgpass file", constants.ConnectionEnvVar)
		}
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, "", err
	}
	return postgres.New(connStr), filepath.Join(configDir, constants.AppName), nil
}
