package cli

import (
	"fmt"
	"os/exec"
	"runtime"

	"github.com/matzehuels/papermap/pkg/errors"
	"github.com/matzehuels/papermap/pkg/papermap"
)

// Opener opens paper URLs. It is the map's click handler.
type Opener = papermap.Opener

// browserOpener opens URLs in the system browser.
type browserOpener struct{}

// Open starts the platform's URL handler and returns without waiting for it.
func (browserOpener) Open(url string) error {
	cmd, err := browserCommand(runtime.GOOS, url)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	go cmd.Wait() //nolint:errcheck
	return nil
}

// browserCommand returns the command that opens url on goos.
func browserCommand(goos, url string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		return exec.Command("open", url), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", url), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url), nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported platform: %s", goos)
	}
}
