package fileserver

import (
	"encoding/json"
	"net/netip"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	E "github.com/sagernet/sing/common/exceptions"
	"gopkg.in/yaml.v3"
)

const DefaultPort = 8000

type Settings struct {
	Listen         string `json:"listen" toml:"listen" yaml:"listen"`
	Port           uint16 `json:"port" toml:"port" yaml:"port"`
	Root           string `json:"root" toml:"root" yaml:"root"`
	LogLevel       string `json:"log_level" toml:"log_level" yaml:"log_level"`
	MaxConnections int    `json:"max_connections" toml:"max_connections" yaml:"max_connections"`
}

// DefaultSettings serves the directory holding the running executable on
// DefaultPort, on all interfaces.
func DefaultSettings() (*Settings, error) {
	root, err := executableDir()
	if err != nil {
		return nil, err
	}
	return &Settings{
		Port:     DefaultPort,
		Root:     root,
		LogLevel: "info",
	}, nil
}

func executableDir() (string, error) {
	executable, err := os.Executable()
	if err != nil {
		return "", E.Cause(err, "locate executable")
	}
	executable, err = filepath.EvalSymlinks(executable)
	if err != nil {
		return "", E.Cause(err, "resolve executable")
	}
	return filepath.Dir(executable), nil
}

func LoadSettings(path string) (*Settings, error) {
	s := new(Settings)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, E.Cause(err, "read config file")
		}
		err = json.Unmarshal(content, s)
		if err != nil {
			return nil, E.Cause(err, "decode config file")
		}
	case ".toml":
		_, err := toml.DecodeFile(path, s)
		if err != nil {
			return nil, E.Cause(err, "decode config file")
		}
	case ".yaml", ".yml":
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, E.Cause(err, "read config file")
		}
		err = yaml.Unmarshal(content, s)
		if err != nil {
			return nil, E.Cause(err, "decode config file")
		}
	default:
		return nil, E.New("unsupported config format ", path)
	}
	return s, nil
}

// Merge copies every field of other into s that s leaves unset.
func (s *Settings) Merge(other *Settings) {
	if other == nil {
		return
	}
	if s.Listen == "" {
		s.Listen = other.Listen
	}
	if s.Port == 0 {
		s.Port = other.Port
	}
	if s.Root == "" {
		s.Root = other.Root
	}
	if s.LogLevel == "" {
		s.LogLevel = other.LogLevel
	}
	if s.MaxConnections == 0 {
		s.MaxConnections = other.MaxConnections
	}
}

func (s *Settings) BindAddr() (netip.AddrPort, error) {
	var bindAddr netip.Addr
	if s.Listen != "" {
		addr, err := netip.ParseAddr(s.Listen)
		if err != nil {
			return netip.AddrPort{}, E.Cause(err, "bad listen address")
		}
		bindAddr = addr
	} else {
		bindAddr = netip.IPv6Unspecified()
	}
	return netip.AddrPortFrom(bindAddr, s.Port), nil
}
