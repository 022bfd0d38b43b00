package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	// Save original args
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
	}()
	t.Setenv("NO_COLOR", "1")

	tests := []struct {
		name         string
		setupConfig  func(tmpDir string)
		args         []string
		expectedExit int
	}{
		{
			name: "Status with valid config",
			setupConfig: func(tmpDir string) {
				configContent := `version: "1"
modules:
  example-widget:
    repoUrl: https://example.com/widget.git
    sourceAndroidPath: android
    targetAndroidPath: android/vendored/example-widget
    sourceAndroidPackage: com.example.widget
`
				err := os.WriteFile(filepath.Join(tmpDir, "verso.yaml"), []byte(configContent), 0o600)
				if err != nil {
					t.Fatalf("failed to write config: %v", err)
				}
			},
			args:         []string{"verso", "status"},
			expectedExit: 0,
		},
		{
			name:         "Error with missing config",
			setupConfig:  func(string) {},
			args:         []string{"verso", "status"},
			expectedExit: 1,
		},
		{
			name:         "Error with missing flag",
			setupConfig:  func(string) {},
			args:         []string{"verso", "version-module", "--revision", "31.0.0"},
			expectedExit: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			tt.setupConfig(tmpDir)

			// Set args
			os.Args = append(tt.args[:1:1], append([]string{"--root", tmpDir}, tt.args[1:]...)...)

			// Run and capture exit code
			exitCode := run()
			assert.Equal(t, tt.expectedExit, exitCode)
		})
	}
}
