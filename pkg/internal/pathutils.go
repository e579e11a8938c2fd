package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// GetConfigDir returns the per-user configuration directory for appName:
// %APPDATA%\<appName> on Windows, $XDG_CONFIG_HOME/<appName> or
// ~/.config/<appName> elsewhere. The directory is not created here;
// callers create it when they first write.
func GetConfigDir(appName string) (string, error) {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName), nil
		}
		return "", fmt.Errorf("APPDATA environment variable not set")
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
