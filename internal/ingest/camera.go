package ingest

import (
	"strings"
)

// CameraConfig describes one configured camera source, parsed from the
// CAMERA_SOURCES environment variable.
type CameraConfig struct {
	Name         string
	Source       string
	PollInterval float64
}

// streamSchemes are the source prefixes that select stream mode; anything
// else is treated as a directory/file-mode path.
var streamSchemes = []string{"rtsp://", "http://", "https://"}

// IsStream reports whether a source should be read via stream mode rather
// than directory/file mode.
func (c CameraConfig) IsStream() bool {
	for _, scheme := range streamSchemes {
		if strings.HasPrefix(c.Source, scheme) {
			return true
		}
	}
	return false
}

// ParseCameraSources parses the comma-separated CAMERA_SOURCES value.
// Each entry is either "name=uri" or a bare "uri" (name then defaults to
// the uri itself).
func ParseCameraSources(raw string, pollInterval float64) []CameraConfig {
	var cams []CameraConfig
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, source, found := strings.Cut(part, "=")
		if !found {
			name, source = part, part
		}
		cams = append(cams, CameraConfig{
			Name:         name,
			Source:       source,
			PollInterval: pollInterval,
		})
	}
	return cams
}
