// Package cli implements the jarscan command-line interface.
//
// Commands load JAR and WAR files with package jarscan and print the
// resulting inventory as a table, as JSON, or as OCI descriptors. Settings
// come from an optional config file (see package config) and are
// overridden by flags.
package cli

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"

	"github.com/meigma/jarscan/internal/config"
)

// appName is the command name.
const appName = "jarscan"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out        io.Writer
	configPath string
	config     *config.Config
}

// New creates a CLI that prints results to out and logs to logOut.
func New(out, logOut io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(logOut, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
		out:    out,
		config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// slogger returns the CLI logger as a *slog.Logger for the library.
func (c *CLI) slogger() *slog.Logger {
	return slog.New(c.Logger)
}
