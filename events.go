package go_rpsession

// EventType discriminates the events delivered to the host application.
type EventType int

const (
	EVENT_LOGIN_PIN_REQUEST EventType = iota
	EVENT_QUIT
	EVENT_RUMBLE
	EVENT_KEYBOARD
)

// Event is a tagged union; Type selects which member is meaningful.
// Rumble and keyboard events originate in the stream connection and the
// ctrl channel and pass through the session unchanged.
type Event struct {
	Type EventType

	LoginPinRequest LoginPinRequestEvent
	Quit            QuitEvent
	Rumble          RumbleEvent
	Keyboard        KeyboardEvent
}

// LoginPinRequestEvent asks the host application for the console login
// PIN. PinIncorrect is false on the first request of a session and true
// on every re-request after a rejected PIN.
type LoginPinRequestEvent struct {
	PinIncorrect bool
}

// QuitEvent is the terminal event of a session. Reason is never
// QUIT_REASON_NONE; ReasonStr carries the server-supplied reason for
// remote disconnects and is empty otherwise.
type QuitEvent struct {
	Reason    QuitReason
	ReasonStr string
}

// RumbleEvent carries controller rumble intensities from the console.
type RumbleEvent struct {
	Left  uint8
	Right uint8
}

// KeyboardEvent reports on-console keyboard state changes.
type KeyboardEvent struct {
	Open bool
	Text string
}
