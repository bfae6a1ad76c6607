package go_rpsession

import "testing"

func TestConnectVideoProfilePreset(t *testing.T) {
	tests := []struct {
		name       string
		resolution VideoResolutionPreset
		fps        VideoFPSPreset
		want       ConnectVideoProfile
	}{
		{
			name:       "360p at 30",
			resolution: VIDEO_RESOLUTION_PRESET_360p,
			fps:        VIDEO_FPS_PRESET_30,
			want:       ConnectVideoProfile{Width: 640, Height: 360, Bitrate: 2000, MaxFPS: 30},
		},
		{
			name:       "540p at 60",
			resolution: VIDEO_RESOLUTION_PRESET_540p,
			fps:        VIDEO_FPS_PRESET_60,
			want:       ConnectVideoProfile{Width: 960, Height: 540, Bitrate: 6000, MaxFPS: 60},
		},
		{
			name:       "720p at 60",
			resolution: VIDEO_RESOLUTION_PRESET_720p,
			fps:        VIDEO_FPS_PRESET_60,
			want:       ConnectVideoProfile{Width: 1280, Height: 720, Bitrate: 10000, MaxFPS: 60},
		},
		{
			name:       "1080p at 60",
			resolution: VIDEO_RESOLUTION_PRESET_1080p,
			fps:        VIDEO_FPS_PRESET_60,
			want:       ConnectVideoProfile{Width: 1920, Height: 1080, Bitrate: 15000, MaxFPS: 60},
		},
		{
			name:       "unknown presets zero the fields",
			resolution: VideoResolutionPreset(99),
			fps:        VideoFPSPreset(144),
			want:       ConnectVideoProfile{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var profile ConnectVideoProfile
			ConnectVideoProfilePreset(&profile, tt.resolution, tt.fps)
			if profile != tt.want {
				t.Errorf("profile = %+v, want %+v", profile, tt.want)
			}
		})
	}
}
