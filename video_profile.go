package go_rpsession

// ConnectVideoProfile describes the requested A/V stream parameters.
type ConnectVideoProfile struct {
	Width   uint
	Height  uint
	Bitrate uint
	MaxFPS  uint
}

// VideoResolutionPreset selects one of the fixed resolution/bitrate rows.
type VideoResolutionPreset int

const (
	VIDEO_RESOLUTION_PRESET_360p VideoResolutionPreset = iota + 1
	VIDEO_RESOLUTION_PRESET_540p
	VIDEO_RESOLUTION_PRESET_720p
	VIDEO_RESOLUTION_PRESET_1080p
)

// VideoFPSPreset selects the frame rate cap.
type VideoFPSPreset int

const (
	VIDEO_FPS_PRESET_30 VideoFPSPreset = 30
	VIDEO_FPS_PRESET_60 VideoFPSPreset = 60
)

// ConnectVideoProfilePreset fills profile from the fixed preset table.
// Unknown presets zero the corresponding fields.
func ConnectVideoProfilePreset(profile *ConnectVideoProfile, resolution VideoResolutionPreset, fps VideoFPSPreset) {
	switch resolution {
	case VIDEO_RESOLUTION_PRESET_360p:
		profile.Width = 640
		profile.Height = 360
		profile.Bitrate = 2000
	case VIDEO_RESOLUTION_PRESET_540p:
		profile.Width = 960
		profile.Height = 540
		profile.Bitrate = 6000
	case VIDEO_RESOLUTION_PRESET_720p:
		profile.Width = 1280
		profile.Height = 720
		profile.Bitrate = 10000
	case VIDEO_RESOLUTION_PRESET_1080p:
		profile.Width = 1920
		profile.Height = 1080
		profile.Bitrate = 15000
	default:
		profile.Width = 0
		profile.Height = 0
		profile.Bitrate = 0
	}

	switch fps {
	case VIDEO_FPS_PRESET_30:
		profile.MaxFPS = 30
	case VIDEO_FPS_PRESET_60:
		profile.MaxFPS = 60
	default:
		profile.MaxFPS = 0
	}
}
