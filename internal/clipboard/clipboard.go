// Package clipboard copies text to the system clipboard through the
// platform's clipboard tool.
package clipboard

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ErrUnavailable is returned when no clipboard tool is installed.
var ErrUnavailable = errors.New("no clipboard tool found")

type tool struct {
	name string
	args []string
}

// pick chooses a clipboard tool for goos. lookPath reports whether a binary
// exists; wayland tells whether a Wayland session is running.
func pick(goos string, wayland bool, lookPath func(string) bool) (tool, bool) {
	switch goos {
	case "darwin":
		return tool{name: "pbcopy"}, lookPath("pbcopy")
	case "windows":
		return tool{name: "cmd", args: []string{"/c", "clip"}}, true
	}

	candidates := []tool{
		{name: "xclip", args: []string{"-selection", "clipboard"}},
		{name: "xsel", args: []string{"--clipboard", "--input"}},
	}
	if wayland {
		candidates = append([]tool{{name: "wl-copy"}}, candidates...)
	}
	for _, c := range candidates {
		if lookPath(c.name) {
			return c, true
		}
	}
	return tool{}, false
}

func detect() (tool, bool) {
	return pick(runtime.GOOS, os.Getenv("WAYLAND_DISPLAY") != "", func(name string) bool {
		_, err := exec.LookPath(name)
		return err == nil
	})
}

// Write copies text to the system clipboard.
func Write(text string) error {
	t, ok := detect()
	if !ok {
		return ErrUnavailable
	}

	cmd := exec.Command(t.name, t.args...)
	cmd.Stdin = strings.NewReader(text)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", t.name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Available reports whether Write can work on this system.
func Available() bool {
	_, ok := detect()
	return ok
}
