package cliconfig

import (
	"io"

	"github.com/ovasconcelos/discline/pkg/log"
)

// NewLogger returns a console logger for the CLI at the named level.
func NewLogger(w io.Writer, level string) (*log.ZerologAdapter, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return log.NewConsoleLogger(w, lvl), nil
}
