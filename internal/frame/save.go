package frame

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/f3rmion/hanzicam/internal/hanzi"
)

// Save writes the image that was sent for recognition into dir as
// hanzicam-<unix millis>.<ext>, together with text (if non-empty) in a .txt
// file of the same name. It returns the image path.
func Save(dir string, img hanzi.Image, text string, now time.Time) (string, error) {
	if len(img.Data) == 0 {
		return "", hanzi.ErrInvalidFrame
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}

	base := filepath.Join(dir, fmt.Sprintf("hanzicam-%d", now.UnixMilli()))
	path := base + extension(img.MediaType)
	if err := os.WriteFile(path, img.Data, 0644); err != nil {
		return "", fmt.Errorf("saving frame: %w", err)
	}
	if text != "" {
		if err := os.WriteFile(base+".txt", []byte(text), 0644); err != nil {
			return "", fmt.Errorf("saving annotations: %w", err)
		}
	}
	return path, nil
}

func extension(mediaType string) string {
	switch sub := strings.TrimPrefix(mediaType, "image/"); sub {
	case "jpeg", "":
		return ".jpg"
	default:
		return "." + sub
	}
}
