package go_rpsession

// Target identifies a console variant and its Remote Play wire protocol
// version. The numeric values order targets by console generation and
// firmware family so that newer targets compare greater.
type Target int

const (
	TARGET_PS4_UNKNOWN Target = 0
	TARGET_PS4_8       Target = 800
	TARGET_PS4_9       Target = 900
	TARGET_PS4_10      Target = 1000
	TARGET_PS5_UNKNOWN Target = 1000000
	TARGET_PS5_1       Target = 1000100
)

// IsPS5 reports whether the target is a PS5 variant.
func (t Target) IsPS5() bool {
	return t >= TARGET_PS5_UNKNOWN
}

// IsUnknown reports whether the target is one of the UNKNOWN sentinels.
func (t Target) IsUnknown() bool {
	return t == TARGET_PS4_UNKNOWN || t == TARGET_PS5_UNKNOWN
}

// VersionString returns the canonical Rp-Version header value for the
// target, or "" for the UNKNOWN sentinels.
func (t Target) VersionString() string {
	switch t {
	case TARGET_PS4_8:
		return "8.0"
	case TARGET_PS4_9:
		return "9.0"
	case TARGET_PS4_10:
		return "10.0"
	case TARGET_PS5_1:
		return "1.0"
	default:
		return ""
	}
}

func (t Target) String() string {
	switch t {
	case TARGET_PS4_8:
		return "PS4 8.0"
	case TARGET_PS4_9:
		return "PS4 9.0"
	case TARGET_PS4_10:
		return "PS4 10.0"
	case TARGET_PS5_1:
		return "PS5 1.0"
	case TARGET_PS5_UNKNOWN:
		return "PS5 unknown"
	default:
		return "PS4 unknown"
	}
}

// VersionParse maps a server-reported RP-Version string to the matching
// target. Unrecognized versions yield the UNKNOWN sentinel of the
// console generation given by isPS5. This mapping and VersionString are
// the only authoritative version registries.
func VersionParse(rpVersion string, isPS5 bool) Target {
	if isPS5 {
		if rpVersion == "1.0" {
			return TARGET_PS5_1
		}
		return TARGET_PS5_UNKNOWN
	}
	switch rpVersion {
	case "8.0":
		return TARGET_PS4_8
	case "9.0":
		return TARGET_PS4_9
	case "10.0":
		return TARGET_PS4_10
	}
	return TARGET_PS4_UNKNOWN
}
