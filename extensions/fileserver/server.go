package fileserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/learnfrench/site-serve/extensions/log"
	"github.com/sagernet/sing/common"
	E "github.com/sagernet/sing/common/exceptions"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/netutil"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	settings Settings
	rootPath string
	root     *os.Root
	logger   logrus.FieldLogger

	access   sync.Mutex
	listener net.Listener
	server   *http.Server
	done     chan struct{}
	closed   bool
}

func NewServer(settings *Settings) (*Server, error) {
	if settings.Root == "" {
		return nil, E.New("missing root directory")
	}
	if settings.MaxConnections < 0 {
		return nil, E.New("bad connection limit ", settings.MaxConnections)
	}
	_, err := settings.BindAddr()
	if err != nil {
		return nil, err
	}
	rootPath, err := filepath.Abs(settings.Root)
	if err != nil {
		return nil, E.Cause(err, "resolve root directory")
	}
	info, err := os.Stat(rootPath)
	if err != nil {
		return nil, E.Cause(err, "open root directory")
	}
	if !info.IsDir() {
		return nil, E.New("root is not a directory: ", rootPath)
	}
	root, err := os.OpenRoot(rootPath)
	if err != nil {
		return nil, E.Cause(err, "open root directory")
	}
	return &Server{
		settings: *settings,
		rootPath: rootPath,
		root:     root,
		logger:   log.NewLogger("fileserver"),
	}, nil
}

func (s *Server) Start() error {
	s.access.Lock()
	defer s.access.Unlock()
	if s.closed {
		return E.New("server closed")
	}
	if s.listener != nil {
		return E.New("server already started")
	}
	bind, err := s.settings.BindAddr()
	if err != nil {
		return err
	}
	listener, err := net.Listen("tcp", bind.String())
	if err != nil {
		return newBindError(bind.String(), err)
	}
	if s.settings.MaxConnections > 0 {
		listener = netutil.LimitListener(listener, s.settings.MaxConnections)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler: NewHandler(s.root, s.logger),
	}
	s.done = make(chan struct{})
	go s.serve(s.server, listener, s.done)
	return nil
}

func (s *Server) serve(server *http.Server, listener net.Listener, done chan struct{}) {
	defer close(done)
	err := server.Serve(listener)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("serve: ", err)
	}
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.access.Lock()
	defer s.access.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) Root() string {
	return s.rootPath
}

// Close stops accepting connections and waits a bounded time for in-flight
// requests before dropping what remains. The server lock is not held while
// waiting.
func (s *Server) Close() error {
	s.access.Lock()
	if s.closed {
		s.access.Unlock()
		return nil
	}
	s.closed = true
	server, done := s.server, s.done
	s.access.Unlock()

	var closeErr error
	if server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err := server.Shutdown(ctx)
		cancel()
		if err != nil {
			s.logger.Warn("shutdown: ", err)
			err = server.Close()
			if err != nil {
				closeErr = E.Cause(err, "close server")
			}
		}
		<-done
	}
	rootErr := common.Close(s.root)
	if closeErr != nil {
		return closeErr
	}
	return rootErr
}
