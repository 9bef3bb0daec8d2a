// Package speech reads Chinese text aloud through the platform's
// text-to-speech tool.
package speech

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// ErrUnavailable is returned when no speech tool is installed.
var ErrUnavailable = errors.New("no text-to-speech tool found")

type tool struct {
	name string
	args []string // text is appended
}

// pick chooses a Mandarin-capable speech tool for goos.
func pick(goos string, lookPath func(string) bool) (tool, bool) {
	var candidates []tool
	switch goos {
	case "darwin":
		candidates = []tool{{name: "say", args: []string{"-v", "Tingting"}}}
	case "windows":
		return tool{}, false
	default:
		candidates = []tool{
			{name: "espeak-ng", args: []string{"-v", "cmn"}},
			{name: "espeak", args: []string{"-v", "zh"}},
			{name: "spd-say", args: []string{"-w", "-l", "zh"}},
		}
	}
	for _, c := range candidates {
		if lookPath(c.name) {
			return c, true
		}
	}
	return tool{}, false
}

func detect() (tool, bool) {
	return pick(runtime.GOOS, func(name string) bool {
		_, err := exec.LookPath(name)
		return err == nil
	})
}

func (t tool) command(text string) *exec.Cmd {
	return exec.Command(t.name, append(append([]string(nil), t.args...), text)...)
}

// Speak reads text aloud and returns when done.
func Speak(text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	t, ok := detect()
	if !ok {
		return ErrUnavailable
	}
	if out, err := t.command(text).CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", t.name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Available reports whether Speak can work on this system.
func Available() bool {
	_, ok := detect()
	return ok
}
