// Package viewer opens files with the desktop's default application.
package viewer

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Open starts the platform's default handler for path and returns without
// waiting for it.
func Open(path string) error {
	cmd, err := command(runtime.GOOS, path)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	return cmd.Process.Release()
}

func command(goos, path string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		return exec.Command("open", path), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", path), nil
	case "linux", "freebsd", "netbsd", "openbsd":
		return exec.Command("xdg-open", path), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}
