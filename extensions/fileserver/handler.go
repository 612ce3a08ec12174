package fileserver

import (
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/sirupsen/logrus"
)

var indexNames = []string{"index.html", "index.htm"}

// Handler serves GET and HEAD requests from a directory tree. Every lookup
// goes through an os.Root, so neither ".." segments nor symlinks can reach
// files outside of it.
type Handler struct {
	root   *os.Root
	logger logrus.FieldLogger
}

func NewHandler(root *os.Root, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{root: root, logger: logger}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	h.serve(sw, r)
	h.logger.Debug(r.RemoteAddr, " ", r.Method, " ", r.URL.RequestURI(), " ", sw.status)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Unsupported method ('"+r.Method+"')", http.StatusNotImplemented)
		return
	}
	urlPath := r.URL.Path
	if !strings.HasPrefix(urlPath, "/") {
		urlPath = "/" + urlPath
	}
	name := resolveName(urlPath)
	info, err := h.root.Stat(name)
	if err != nil {
		notFound(w)
		return
	}
	if !info.IsDir() {
		if strings.HasSuffix(urlPath, "/") {
			notFound(w)
			return
		}
		h.serveFile(w, r, name)
		return
	}
	if !strings.HasSuffix(urlPath, "/") {
		target := *r.URL
		target.Path = path.Clean(urlPath) + "/"
		target.RawPath = ""
		http.Redirect(w, r, target.String(), http.StatusMovedPermanently)
		return
	}
	for _, index := range indexNames {
		indexName := path.Join(name, index)
		indexInfo, err := h.root.Stat(indexName)
		if err == nil && !indexInfo.IsDir() {
			h.serveFile(w, r, indexName)
			return
		}
	}
	h.serveListing(w, r, name, urlPath)
}

func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, name string) {
	file, err := h.root.Open(name)
	if err != nil {
		notFound(w)
		return
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil || info.IsDir() {
		notFound(w)
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), file)
}

// resolveName maps an absolute URL path to a name relative to the root.
func resolveName(urlPath string) string {
	name := strings.TrimPrefix(path.Clean(urlPath), "/")
	if name == "" {
		return "."
	}
	return name
}

func notFound(w http.ResponseWriter) {
	http.Error(w, "File not found", http.StatusNotFound)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
