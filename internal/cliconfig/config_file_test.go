package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	trueVal := true

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all sections",
			fileConfig: FileConfig{
				Auth:  AuthSection{Token: "file-token"},
				UI:    UISection{Theme: "dark", VimMode: &trueVal},
				Cache: CacheSection{MaxMessages: 50},
				Network: NetworkSection{
					GatewayURL:  "ws://127.0.0.1:9000",
					APIBaseURL:  "http://127.0.0.1:9001/api",
					HTTPTimeout: "5s",
					Intents:     513,
				},
				Log: LogSection{Level: "debug"},
			},
			changed: map[string]bool{},
			initial: DefaultConfig(),
			expected: Config{
				Token:       "file-token",
				GatewayURL:  "ws://127.0.0.1:9000",
				APIBaseURL:  "http://127.0.0.1:9001/api",
				HTTPTimeout: 5 * time.Second,
				Intents:     513,
				LogLevel:    "debug",
				Theme:       "dark",
				VimMode:     true,
				MaxMessages: 50,
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				Auth:    AuthSection{Token: "file-token"},
				Network: NetworkSection{HTTPTimeout: "5s"},
			},
			changed: map[string]bool{"token": true, "timeout": true},
			initial: Config{
				Token:       "flag-token",
				HTTPTimeout: time.Minute,
			},
			expected: Config{
				Token:       "flag-token", // unchanged because flag was set
				HTTPTimeout: time.Minute,
			},
		},
		{
			name:       "empty file keeps defaults",
			fileConfig: FileConfig{},
			changed:    map[string]bool{},
			initial:    DefaultConfig(),
			expected:   DefaultConfig(),
		},
		{
			name:       "invalid duration",
			fileConfig: FileConfig{Network: NetworkSection{HTTPTimeout: "soon"}},
			changed:    map[string]bool{},
			initial:    Config{},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyFileConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyFileConfig() unexpected error: %v", err)
			}
			if cfg != tt.expected {
				t.Errorf("config = %+v\nwant %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	tomlContent := `
[auth]
token = "test-token"

[ui]
theme = "dark"
vim_mode = true

[cache]
max_messages = 50

[network]
http_timeout = "10s"
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	if fc.Auth.Token != "test-token" {
		t.Errorf("Auth.Token = %v, want test-token", fc.Auth.Token)
	}
	if fc.UI.Theme != "dark" {
		t.Errorf("UI.Theme = %v, want dark", fc.UI.Theme)
	}
	if fc.UI.VimMode == nil || !*fc.UI.VimMode {
		t.Errorf("UI.VimMode = %v, want true", fc.UI.VimMode)
	}
	if fc.Cache.MaxMessages != 50 {
		t.Errorf("Cache.MaxMessages = %v, want 50", fc.Cache.MaxMessages)
	}
	if fc.Network.HTTPTimeout != "10s" {
		t.Errorf("Network.HTTPTimeout = %v, want 10s", fc.Network.HTTPTimeout)
	}
}

func TestLoadFileConfig_InvalidFile(t *testing.T) {
	_, err := LoadFileConfig("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("LoadFileConfig() expected error for nonexistent file")
	}
}

func TestLoadFileConfig_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.toml")

	invalidContent := `
[auth]
token = "unterminated
`

	if err := os.WriteFile(configPath, []byte(invalidContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	_, err := LoadFileConfig(configPath)
	if err == nil {
		t.Error("LoadFileConfig() expected error for invalid TOML")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()

	if path != "" && !strings.HasSuffix(path, filepath.Join("discline", "config.toml")) {
		t.Errorf("DefaultConfigPath() = %v, want .../discline/config.toml", path)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "exists.txt")

	if err := os.WriteFile(existingFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if !FileExists(existingFile) {
		t.Error("FileExists() = false, want true for existing file")
	}

	if FileExists(filepath.Join(tmpDir, "nonexistent.txt")) {
		t.Error("FileExists() = true, want false for nonexistent file")
	}
}
