// Package tlsconfig loads a static server certificate/key pair for the
// gRPC listener. This is the slice of the teacher's pkg/security that
// survives here: static cert loading, not its CA issuance and mTLS
// node-identity machinery, since this transport has no per-sender
// authentication (spec §7 Non-goals).
package tlsconfig

import (
	"crypto/tls"
	"fmt"
)

// Load reads a certificate/key pair from disk and returns a
// server-side *tls.Config. Both certPath and keyPath must be set.
func Load(certPath, keyPath string) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, fmt.Errorf("loading TLS certificate: %w", err)
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
