package main

import (
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/learnfrench/site-serve/extensions/fileserver"
	"github.com/learnfrench/site-serve/extensions/log"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type Flags struct {
	Listen         string
	Port           uint16
	Root           string
	LogLevel       string
	MaxConnections int
	Verbose        bool
	ConfigFile     string
}

func main() {
	f := new(Flags)

	command := &cobra.Command{
		Use:   "site-serve",
		Short: "serve the site directory over HTTP",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			run(cmd, f)
		},
	}

	command.Flags().StringVarP(&f.Listen, "listen", "l", "", "Listen address. (default all interfaces)")
	command.Flags().Uint16VarP(&f.Port, "port", "p", 0, "Listen port. (default 8000)")
	command.Flags().StringVarP(&f.Root, "root", "d", "", "Directory to serve. (default the directory containing this executable)")
	command.Flags().IntVar(&f.MaxConnections, "max-connections", 0, "Limit connections served at once, 0 for no limit.")
	command.Flags().StringVar(&f.LogLevel, "log-level", "", "Log level. [possible values: trace, debug, info, warn, error]")
	command.Flags().BoolVarP(&f.Verbose, "verbose", "v", false, "Log every request.")
	command.Flags().StringVarP(&f.ConfigFile, "config", "c", "", "Use a configuration file. (json, toml or yaml)")
	command.AddCommand(newGenerateConfigCommand())
	err := command.Execute()
	if err != nil {
		logrus.Fatal(err)
	}
}

func newSettings(f *Flags) (*fileserver.Settings, error) {
	settings := &fileserver.Settings{
		Listen:         f.Listen,
		Port:           f.Port,
		Root:           f.Root,
		LogLevel:       f.LogLevel,
		MaxConnections: f.MaxConnections,
	}
	if f.Verbose && settings.LogLevel == "" {
		settings.LogLevel = "debug"
	}
	if f.ConfigFile != "" {
		fileSettings, err := fileserver.LoadSettings(f.ConfigFile)
		if err != nil {
			return nil, err
		}
		settings.Merge(fileSettings)
	}
	if settings.Port == 0 || settings.Root == "" || settings.LogLevel == "" {
		defaults, err := fileserver.DefaultSettings()
		if err != nil {
			return nil, err
		}
		settings.Merge(defaults)
	}
	return settings, nil
}

func run(cmd *cobra.Command, f *Flags) {
	settings, err := newSettings(f)
	if err != nil {
		logrus.StandardLogger().Log(logrus.FatalLevel, err, "\n\n")
		cmd.Help()
		os.Exit(1)
	}
	err = log.SetLevel(settings.LogLevel)
	if err != nil {
		logrus.Fatal(err)
	}

	server, err := fileserver.NewServer(settings)
	if err != nil {
		logrus.Fatal(err)
	}

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, os.Interrupt, syscall.SIGTERM)
	err = server.Start()
	if err != nil {
		logrus.Fatal(err)
	}

	var port int
	if addr, loaded := server.Addr().(*net.TCPAddr); loaded {
		port = addr.Port
	}
	printBanner(os.Stdout, port, server.Root())
	<-osSignals

	err = server.Close()
	if err != nil {
		logrus.Warn(err)
	}
	printStopped(os.Stdout)
}
