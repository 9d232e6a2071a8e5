package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/stride/internal/constants"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

func withConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old := userConfigDirFunc
	userConfigDirFunc = func() (string, error) { return dir, nil }
	t.Cleanup(func() { userConfigDirFunc = old })
	return dir
}

func withProcess(t *testing.T, exe string) {
	t.Helper()
	old := findProcessFunc
	findProcessFunc = func(pid int) (ps.Process, error) {
		if exe == "" {
			return nil, nil
		}
		return &mockProcess{pid: pid, executable: exe}, nil
	}
	t.Cleanup(func() { findProcessFunc = old })
}

func writeLockfile(t *testing.T, dir, content string) {
	t.Helper()
	trayDir := filepath.Join(dir, constants.TrayAppIdentifier)
	if err := os.MkdirAll(trayDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(trayDir, constants.NotifierLockfileName), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestTrayConfigDir(t *testing.T) {
	dir := withConfigDir(t)

	got, err := TrayConfigDir()
	if err != nil {
		t.Fatalf("TrayConfigDir failed: %v", err)
	}
	if want := filepath.Join(dir, constants.TrayAppIdentifier); got != want {
		t.Errorf("default dir = %s, want %s", got, want)
	}

	custom := filepath.Join(dir, "custom")
	trayDir := filepath.Join(dir, constants.TrayAppIdentifier)
	if err := os.MkdirAll(trayDir, 0o755); err != nil {
		t.Fatal(err)
	}
	data, _ := json.Marshal(map[string]any{"settings": map[string]any{"lockfile_dir": custom}})
	if err := os.WriteFile(filepath.Join(trayDir, "settings.json"), data, 0o600); err != nil {
		t.Fatal(err)
	}
	got, _ = TrayConfigDir()
	if got != custom {
		t.Errorf("custom dir = %s, want %s", got, custom)
	}
}

func TestReadLockfile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		exe     string
		wantErr bool
	}{
		{"valid", "4321|99|s3cret", constants.TrayAppExecutable, false},
		{"malformed", "4321|99", constants.TrayAppExecutable, true},
		{"bad port", "http|99|s3cret", constants.TrayAppExecutable, true},
		{"port out of range", "70000|99|s3cret", constants.TrayAppExecutable, true},
		{"bad pid", "4321|abc|s3cret", constants.TrayAppExecutable, true},
		{"empty secret", "4321|99| ", constants.TrayAppExecutable, true},
		{"process gone", "4321|99|s3cret", "", true},
		{"wrong process", "4321|99|s3cret", "bash", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "lock")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}
			withProcess(t, tt.exe)
			port, secret, err := readLockfile(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("readLockfile() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && (port != "4321" || secret != "s3cret") {
				t.Errorf("got port %q secret %q", port, secret)
			}
		})
	}
}

func TestNotifyWithoutTray(t *testing.T) {
	withConfigDir(t)
	err := New().Notify(context.Background(), "hello")
	if !errors.Is(err, ErrTrayNotRunning) {
		t.Errorf("Notify() = %v, want ErrTrayNotRunning", err)
	}
}

func TestNotifySendsPayload(t *testing.T) {
	var got payload
	var gotSecret string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.Header.Get(secretHeader)
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	dir := withConfigDir(t)
	withProcess(t, constants.TrayAppExecutable)
	writeLockfile(t, dir, fmt.Sprintf("%s|%d|abc", u.Port(), 42))

	if err := New().Notify(context.Background(), "7-day streak!"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if got.Text != "7-day streak!" || got.DurationMs != constants.NotificationDurationMs {
		t.Errorf("payload = %+v", got)
	}
	if gotSecret != "abc" {
		t.Errorf("secret header = %q, want abc", gotSecret)
	}
}
