// Package cli implements the easel command-line interface.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/phanxgames/easel"
)

var (
	version = "dev"
	commit  string
)

// SetVersion sets the version shown by --version.
func SetVersion(v, c string) {
	version = v
	commit = c
}

// CLI holds state shared by all commands.
type CLI struct {
	Out    io.Writer
	Err    io.Writer
	Config easel.Config

	configPath string
	verbose    bool
}

// New returns a CLI writing command output to out and logs to errw.
func New(out, errw io.Writer) *CLI {
	return &CLI{Out: out, Err: errw, Config: easel.DefaultConfig()}
}

// RootCommand builds the command tree.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "easel",
		Short:         "Inspect, hit-test, replay and view easel scenes",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if c.configPath != "" {
				cfg, err := easel.LoadConfig(c.configPath)
				if err != nil {
					return err
				}
				c.Config = cfg
			}
			level := c.Config.LogLevel()
			if c.verbose {
				level = log.DebugLevel
			}
			logger := newLogger(c.Err, level)
			easel.SetLogger(logger.WithPrefix("easel"))
			cmd.SetContext(withLogger(cmd.Context(), logger))
			return nil
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("easel %s %s\n", version, commit))
	root.SetOut(c.Out)
	root.SetErr(c.Err)
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "TOML config file")

	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.hitCommand())
	root.AddCommand(c.replayCommand())
	root.AddCommand(c.runCommand())
	return root
}

// readJSON decodes the JSON file at path into v.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// writeJSON writes v as indented JSON to path.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// loadWorld reads a scene file into a world rendering through backend.
func (c *CLI) loadWorld(path string, backend easel.Backend) (*easel.World, error) {
	var data easel.WorldData
	if err := readJSON(path, &data); err != nil {
		return nil, err
	}
	return easel.WorldFromData(backend, c.Config, data)
}
