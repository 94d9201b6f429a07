package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_TablePrefix(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		override    string
		want        string
	}{
		{name: "dev default", environment: "dev", want: "dev_"},
		{name: "test env", environment: "test", want: "test_"},
		{name: "prod env", environment: "prod", want: "prod_"},
		{name: "unknown env falls back to dev", environment: "staging", want: "dev_"},
		{name: "explicit override wins", environment: "prod", override: "custom_", want: "custom_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENVIRONMENT", tt.environment)
			t.Setenv("TABLE_PREFIX", tt.override)

			cfg := Load()
			if cfg.TablePrefix != tt.want {
				t.Errorf("TablePrefix = %q, want %q", cfg.TablePrefix, tt.want)
			}
		})
	}
}

func TestLoad_MaxFolderDepth(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{name: "unset uses default", value: "", want: DefaultMaxFolderDepth},
		{name: "explicit value", value: "3", want: 3},
		{name: "zero rejected", value: "0", want: DefaultMaxFolderDepth},
		{name: "garbage rejected", value: "deep", want: DefaultMaxFolderDepth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MAX_FOLDER_DEPTH", tt.value)

			cfg := Load()
			if cfg.MaxFolderDepth != tt.want {
				t.Errorf("MaxFolderDepth = %d, want %d", cfg.MaxFolderDepth, tt.want)
			}
		})
	}
}

func TestPruneLogs(t *testing.T) {
	names := []string{
		"noteshelf-2026-01-01T00-00-00.log",
		"noteshelf-2026-01-02T00-00-00.log",
		"noteshelf-2026-01-03T00-00-00.log",
	}

	tests := []struct {
		name        string
		keep        int
		wantRemoved []string
	}{
		{name: "keeps newest", keep: 2, wantRemoved: names[:1]},
		{name: "under limit", keep: 5},
		{name: "zero keeps everything", keep: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, n := range append([]string{"other.txt"}, names...) {
				if err := os.WriteFile(filepath.Join(dir, n), nil, 0644); err != nil {
					t.Fatalf("write %s: %v", n, err)
				}
			}

			if err := pruneLogs(dir, tt.keep); err != nil {
				t.Fatalf("pruneLogs: %v", err)
			}

			removed := make(map[string]bool)
			for _, n := range tt.wantRemoved {
				removed[n] = true
			}
			for _, n := range append([]string{"other.txt"}, names...) {
				_, err := os.Stat(filepath.Join(dir, n))
				if removed[n] && !os.IsNotExist(err) {
					t.Errorf("%s should have been removed", n)
				}
				if !removed[n] && err != nil {
					t.Errorf("%s should be kept: %v", n, err)
				}
			}
		})
	}
}

func TestLogWriter(t *testing.T) {
	w, closer, err := LogWriter(&Config{})
	if err != nil {
		t.Fatalf("LogWriter: %v", err)
	}
	if w != os.Stdout || closer == nil {
		t.Errorf("empty LogDir should log to stdout with a no-op closer")
	}

	dir := filepath.Join(t.TempDir(), "logs")
	_, closer, err = LogWriter(&Config{LogDir: dir, LogMaxFiles: 3})
	if err != nil {
		t.Fatalf("LogWriter: %v", err)
	}
	defer closer.Close()

	matches, err := filepath.Glob(filepath.Join(dir, "noteshelf-*.log"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) != 1 {
		t.Errorf("log files = %v, want one", matches)
	}
}
