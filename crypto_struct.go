// Crypto struct definition
package go_rpsession

import "io"

// Crypto bundles the random source used for session key material.
type Crypto struct {
	rng io.Reader
}
