package main

import (
	"encoding/json"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/learnfrench/site-serve/extensions/fileserver"
	E "github.com/sagernet/sing/common/exceptions"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newGenerateConfigCommand() *cobra.Command {
	var format string
	command := &cobra.Command{
		Use:   "gencfg",
		Short: "print a configuration file holding the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := fileserver.DefaultSettings()
			if err != nil {
				return err
			}
			return writeSettings(cmd.OutOrStdout(), settings, format)
		},
	}
	command.Flags().StringVarP(&format, "format", "f", "json", "Output format. [possible values: json, toml, yaml]")
	return command
}

func writeSettings(w io.Writer, settings *fileserver.Settings, format string) error {
	switch format {
	case "json":
		content, err := json.MarshalIndent(settings, "", "  ")
		if err != nil {
			return err
		}
		_, err = w.Write(append(content, '\n'))
		return err
	case "toml":
		return toml.NewEncoder(w).Encode(settings)
	case "yaml", "yml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		err := encoder.Encode(settings)
		if err != nil {
			return err
		}
		return encoder.Close()
	default:
		return E.New("unknown config format ", format)
	}
}
