package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCameraSources_NamedAndBareEntries(t *testing.T) {
	cams := ParseCameraSources("front=rtsp://cam1/stream, /var/frames/back, , side=http://cam3", 2.5)

	assert := assert.New(t)
	if assert.Len(cams, 3) {
		assert.Equal(CameraConfig{Name: "front", Source: "rtsp://cam1/stream", PollInterval: 2.5}, cams[0])
		assert.Equal(CameraConfig{Name: "/var/frames/back", Source: "/var/frames/back", PollInterval: 2.5}, cams[1])
		assert.Equal(CameraConfig{Name: "side", Source: "http://cam3", PollInterval: 2.5}, cams[2])
	}
}

func TestParseCameraSources_Empty(t *testing.T) {
	assert.Empty(t, ParseCameraSources("", 1))
	assert.Empty(t, ParseCameraSources("   ,  ,", 1))
}

func TestCameraConfig_IsStream(t *testing.T) {
	cases := []struct {
		source   string
		isStream bool
	}{
		{"rtsp://cam/1", true},
		{"http://cam/2", true},
		{"https://cam/3", true},
		{"/var/frames/cam4", false},
		{"cam5.local/frames", false},
	}
	for _, c := range cases {
		cfg := CameraConfig{Source: c.source}
		assert.Equal(t, c.isStream, cfg.IsStream(), c.source)
	}
}
