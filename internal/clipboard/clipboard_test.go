package clipboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func has(names ...string) func(string) bool {
	return func(name string) bool {
		for _, n := range names {
			if n == name {
				return true
			}
		}
		return false
	}
}

func TestPick(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		goos    string
		wayland bool
		present []string
		want    string
		wantOK  bool
	}{
		{"mac", "darwin", false, []string{"pbcopy"}, "pbcopy", true},
		{"windows", "windows", false, nil, "cmd", true},
		{"x11 prefers xclip", "linux", false, []string{"xclip", "xsel"}, "xclip", true},
		{"x11 falls back to xsel", "linux", false, []string{"xsel"}, "xsel", true},
		{"wayland prefers wl-copy", "linux", true, []string{"wl-copy", "xclip"}, "wl-copy", true},
		{"wayland without wl-copy", "linux", true, []string{"xclip"}, "xclip", true},
		{"bsd with xclip", "freebsd", false, []string{"xclip"}, "xclip", true},
		{"nothing installed", "linux", false, nil, "", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := pick(tt.goos, tt.wayland, has(tt.present...))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got.name)
		})
	}
}
