// Session event callback definition
package go_rpsession

// EventCallback receives session events. It is invoked from the session
// worker goroutine; implementations should hand heavy work off instead
// of blocking the session. After the QUIT event no further callbacks
// are made.
type EventCallback func(event *Event)
