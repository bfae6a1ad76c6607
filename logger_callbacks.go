// LoggerCallbacks struct definition
package go_rpsession

// LoggerCallbacks provides callback functions for logging events
type LoggerCallbacks struct {
	opaque *interface{}
	onLog  func(*Logger, LoggerTags, string)
}
