package backups

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/stride/internal/backup"
	"github.com/julianstephens/stride/internal/cli"
	"github.com/julianstephens/stride/internal/constants"
	"github.com/julianstephens/stride/internal/storage/sqlite"
)

type BackupCmd struct {
	Create  BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
	List    BackupListCmd    `cmd:"" help:"List available backups."`
	Restore BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	Push    BackupPushCmd    `cmd:"" help:"Back up and upload the database to S3."`
	Pull    BackupPullCmd    `cmd:"" help:"Download the database from S3 and restore it."`
}

func manager(ctx *cli.Context) (*backup.Manager, error) {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return nil, fmt.Errorf("backups are only supported for SQLite storage")
	}
	return backup.NewManager(ctx.Store.GetConfigPath()), nil
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	path, err := mgr.Create()
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	ctx.Printf("✓ Backup created: %s\n", filepath.Base(path))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		ctx.Println("No backups found.")
		ctx.Printf("Backups are stored in: %s\n", mgr.Dir())
		return nil
	}

	ctx.Printf("Available backups (%d total, keeping most recent %d):\n\n", len(backups), constants.MaxBackups)
	for _, b := range backups {
		ctx.Printf("  %s  %s  (%.1f KB)\n", b.Timestamp.Format("2006-01-02 15:04:05"), filepath.Base(b.Path), float64(b.Size)/1024.0)
	}
	ctx.Printf("\nBackup directory: %s\n", mgr.Dir())
	return nil
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" help:"Path or filename of the backup to restore."`
	Yes        bool   `short:"y" help:"Skip the confirmation prompt."`

	In io.Reader `kong:"-"`
}

// resolve finds the backup by absolute path, then relative to the working
// directory, then inside the backup directory.
func (c *BackupRestoreCmd) resolve(mgr *backup.Manager) (string, error) {
	if filepath.IsAbs(c.BackupFile) {
		if _, err := os.Stat(c.BackupFile); err != nil {
			return "", fmt.Errorf("backup file not found: %s", c.BackupFile)
		}
		return c.BackupFile, nil
	}
	if _, err := os.Stat(c.BackupFile); err == nil {
		return filepath.Abs(c.BackupFile)
	}
	candidate := filepath.Join(mgr.Dir(), c.BackupFile)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	return "", fmt.Errorf("backup file not found: tried current directory and %s", mgr.Dir())
}

// confirmRestore asks before the database is replaced by source.
func confirmRestore(ctx *cli.Context, in io.Reader, source string) (bool, error) {
	ctx.Println("⚠️  WARNING: This will replace your current database with the backup.")
	ctx.Println("⚠️  IMPORTANT: All stride processes (including the TUI and serve) must be stopped first.")
	ctx.Println("A backup of your current database will be created before restoring.")
	ctx.Printf("\nRestore from: %s\n", source)
	ctx.Printf("Continue? [y/N]: ")

	if in == nil {
		in = os.Stdin
	}
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	if response != "y" && response != "yes" {
		ctx.Println("Restore cancelled.")
		return false, nil
	}
	return true, nil
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	path, err := c.resolve(mgr)
	if err != nil {
		return err
	}

	if !c.Yes {
		ok, err := confirmRestore(ctx, c.In, path)
		if err != nil || !ok {
			return err
		}
	}

	if err := ctx.Store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database connection: %v\n", err)
	}

	previous, err := mgr.Restore(path)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	ctx.Println("✓ Database restored successfully!")
	if previous != "" {
		ctx.Printf("  Previous database saved as: %s\n", filepath.Base(previous))
	}
	return nil
}

// RemoteFlags selects the S3 object used by push and pull.
type RemoteFlags struct {
	Bucket  string `help:"S3 bucket." env:"STRIDE_BACKUP_BUCKET"`
	Key     string `help:"Object key." default:"stride/stride.db"`
	Profile string `help:"AWS shared config profile."`

	Remote backup.ObjectStore `kong:"-"`
}

func (f *RemoteFlags) store(ctx context.Context) (backup.ObjectStore, error) {
	if f.Remote != nil {
		return f.Remote, nil
	}
	return backup.NewS3Store(ctx, f.Bucket, f.Profile)
}

type BackupPushCmd struct {
	RemoteFlags `embed:""`
}

func (c *BackupPushCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	bg := context.Background()
	remote, err := c.store(bg)
	if err != nil {
		return err
	}
	path, err := mgr.Push(bg, remote, c.Key)
	if err != nil {
		return fmt.Errorf("push failed: %w", err)
	}
	ctx.Printf("✓ Uploaded %s to %s\n", filepath.Base(path), c.Key)
	return nil
}

type BackupPullCmd struct {
	RemoteFlags `embed:""`
	Yes bool `short:"y" help:"Skip the confirmation prompt."`

	In io.Reader `kong:"-"`
}

func (c *BackupPullCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	bg := context.Background()
	remote, err := c.store(bg)
	if err != nil {
		return err
	}
	if !c.Yes {
		ok, err := confirmRestore(ctx, c.In, c.Key)
		if err != nil || !ok {
			return err
		}
	}

	if err := ctx.Store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close database connection: %v\n", err)
	}
	previous, err := mgr.Pull(bg, remote, c.Key)
	if err != nil {
		return fmt.Errorf("pull failed: %w", err)
	}
	ctx.Printf("✓ Database restored from %s\n", c.Key)
	if previous != "" {
		ctx.Printf("  Previous database saved as: %s\n", filepath.Base(previous))
	}
	return nil
}
