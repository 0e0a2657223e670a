package clog

import (
	"os"

	"github.com/apex/log"
)

// Setup points the process-wide apex logger at the given log file, or
// stdout when path is empty, and applies the named level. Unknown levels
// fall back to info rather than failing daemon startup.
func Setup(path, level string) {
	w := os.Stdout

	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			log.Errorf("unable to open log file %s, logging to stdout: %s", path, err)
		} else {
			w = f
		}
	}

	log.SetHandler(NewHandler(w))

	parsed, err := log.ParseLevel(level)
	if err != nil {
		parsed = log.InfoLevel
	}

	log.SetLevel(parsed)
}
