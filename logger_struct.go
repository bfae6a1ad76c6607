// Logger struct definition
package go_rpsession

// Logger provides logging functionality for the Remote Play session
type Logger struct {
	callbacks *LoggerCallbacks
	logLevel  int
}
