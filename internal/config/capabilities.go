package config

import (
	"os/exec"

	"docmark/internal/domain"
)

// ProbeCapabilities checks once, at startup, which optional external tools
// are present. The result travels in the options bag passed to every
// conversion; converters never consult the environment themselves.
func ProbeCapabilities() domain.Capabilities {
	return domain.Capabilities{
		ExifTool: toolAvailable("exiftool"),
		FFmpeg:   toolAvailable("ffmpeg"),
	}
}

func toolAvailable(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
