// Package logging configures the structured logger shared by the server, the CLI and the pipeline.
package logging

import (
	"encoding/hex"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"
)

// Options controls logger construction.
type Options struct {
	Level  string    // debug, info, warn, error
	Format string    // "json" or "text"
	Out    io.Writer // defaults to os.Stdout
}

// New builds a logrus logger from options.
// Unknown levels fall back to info. Debug level always uses the text formatter.
func New(opts Options) *logrus.Logger {
	log := logrus.New()
	log.Out = opts.Out
	if log.Out == nil {
		log.Out = os.Stdout
	}

	level, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if level >= logrus.DebugLevel || strings.EqualFold(opts.Format, "text") {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	return log
}

// Discard returns a logger that drops everything. Used by tests and library callers
// that do not pass a logger.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.Out = io.Discard
	return log
}

// Fingerprint returns a short, stable identifier for a secret so it can be
// correlated across log lines without being written out.
func Fingerprint(secret string) string {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return "none"
	}
	sum := blake2b.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:8])
}
