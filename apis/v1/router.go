// Package v1 exposes the tool server and its file downloads over HTTP.
package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	logcontext "github.com/va6996/travelingman-mcp/context"
	"github.com/va6996/travelingman-mcp/log"
)

const requestIDHeader = "X-Request-Id"

type errorResponse struct {
	Error string `json:"error"`
}

type server struct {
	outputDir string
}

// NewRouter mounts the MCP endpoint, file downloads and health check.
func NewRouter(mcpServer *mcp.Server, outputDir string) http.Handler {
	s := &server{outputDir: outputDir}

	r := chi.NewRouter()
	r.Use(withRequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	mcpHandler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return mcpServer
	}, &mcp.StreamableHTTPOptions{Stateless: true, JSONResponse: true})
	r.Handle("/mcp", mcpHandler)
	r.Handle("/mcp/", mcpHandler)

	r.Get("/download/{filename}", s.handleDownload)
	r.Get("/health", handleHealth)
	return r
}

// withRequestID tags each request with the caller's id or a fresh one.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = logcontext.NewRequestID()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := logcontext.WithRequestID(r.Context(), id)
		log.Debugf(ctx, "%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Mcp-Session-Id, Mcp-Protocol-Version, "+requestIDHeader)
		w.Header().Set("Access-Control-Expose-Headers", "Mcp-Session-Id, "+requestIDHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name, err := fileNameParam(r)
	if err != nil || !isPlainFileName(name) {
		log.Warnf(ctx, "Rejected download name %q", chi.URLParam(r, "filename"))
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid file name"})
		return
	}

	path := filepath.Join(s.outputDir, name)
	f, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Errorf(ctx, "Opening %s: %v", path, err)
		}
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "File not found"})
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "File not found"})
		return
	}

	log.Infof(ctx, "Serving %s", path)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// fileNameParam returns the decoded filename segment. chi matches on
// RawPath when the request carries one, and only then is the segment still
// escaped.
func fileNameParam(r *http.Request) (string, error) {
	name := chi.URLParam(r, "filename")
	if r.URL.RawPath == "" {
		return name, nil
	}
	return url.PathUnescape(name)
}

// isPlainFileName accepts a single path element only.
func isPlainFileName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
