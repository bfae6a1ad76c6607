// ControllerState struct definition
package go_rpsession

// ControllerState is the full input state forwarded to the console by
// the stream connection's feedback sender.
type ControllerState struct {
	Buttons     uint32
	L2State     uint8
	R2State     uint8
	LeftX       int16
	LeftY       int16
	RightX      int16
	RightY      int16
	TouchIDNext uint8
}

// SetIdle resets the state to no buttons pressed and centered sticks.
func (s *ControllerState) SetIdle() {
	*s = ControllerState{}
}

// Equals reports whether two states are identical. The feedback sender
// uses this to suppress redundant outbound frames.
func (s *ControllerState) Equals(other *ControllerState) bool {
	return *s == *other
}
