// Package config declares the command-line surface of deckstream.
package config

import "github.com/drazoxXD/steamdeck-Controls/internal/cmd"

// LogConfig holds the shared logging flags.
type LogConfig struct {
	Level   string `help:"Log level (trace, debug, info, warn, error)" default:"info" env:"DECKSTREAM_LOG_LEVEL"`
	File    string `help:"Log file path (logs to stdout/stderr when empty)" env:"DECKSTREAM_LOG_FILE"`
	RawFile string `help:"Raw frame log file path" env:"DECKSTREAM_LOG_RAW_FILE"`
}

// CLI is the root command structure parsed by kong.
type CLI struct {
	Log        LogConfig `embed:"" prefix:"log."`
	ConfigPath string    `name:"config" help:"Path to a configuration file" type:"path"`

	Capture cmd.Capture       `cmd:"" help:"Capture controller input and stream it to a playback host"`
	Play    cmd.Play          `cmd:"" help:"Receive streamed input and replay it on a virtual gamepad"`
	Config  cmd.ConfigCommand `cmd:"" help:"Configuration utilities"`
}
