package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-docx-merger/internal/config"
	"github.com/nerdneilsfield/go-docx-merger/pkg/docx"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Extensions accepted by the extraction endpoint, with their MIME types.
var allowedExtensions = map[string]string{
	".pdf":  "application/pdf",
	".docx": docxContentType,
}

// ObjectStore stores uploaded objects and issues signed download URLs.
type ObjectStore interface {
	Upload(ctx context.Context, object string, data []byte, contentType string) error
	SignURL(ctx context.Context, object string, ttl time.Duration) (string, error)
}

// TextExtractor extracts combined plain text from local document files.
type TextExtractor interface {
	ExtractText(ctx context.Context, paths []string) (string, error)
}

// Server is the HTTP surface of the merge service. All document semantics
// live in pkg/docx; the server only routes bytes, maps errors to status
// codes, and talks to the external collaborators.
type Server struct {
	cfg       config.Config
	store     ObjectStore
	extractor TextExtractor
	merger    *docx.Merger
	logger    *zap.Logger
}

// New creates a server. store and extractor may be nil when only /merge is
// exercised; their endpoints then respond 503.
func New(cfg config.Config, store ObjectStore, extractor TextExtractor, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		cfg:       cfg,
		store:     store,
		extractor: extractor,
		merger:    docx.NewMerger(logger),
		logger:    logger,
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /merge", s.handleMerge)
	mux.HandleFunc("POST /extract", s.handleExtract)
	mux.HandleFunc("POST /upload", s.handleUpload)
	return mux
}

// mergeStatus maps merge-core errors to HTTP status codes: caller mistakes
// are 400, undecodable documents are 422, everything else is 500.
func mergeStatus(err error) int {
	switch {
	case errors.Is(err, docx.ErrInsufficientInputs),
		errors.Is(err, docx.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, docx.ErrCorruptArchive),
		errors.Is(err, docx.ErrMissingDocumentPart),
		errors.Is(err, docx.ErrInvalidDocument):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// limitBody caps the request body at the configured upload size.
func (s *Server) limitBody(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxUploadBytes)
}

// requestTooLarge reports whether the error came from the body cap and, if
// so, writes the 413 response.
func (s *Server) requestTooLarge(w http.ResponseWriter, err error) bool {
	var maxErr *http.MaxBytesError
	if !errors.As(err, &maxErr) {
		return false
	}
	s.writeError(w, http.StatusRequestEntityTooLarge,
		fmt.Sprintf("File too large. Max file size is %d MB", s.cfg.Server.MaxUploadBytes>>20))
	return true
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitizeFilename reduces a client-supplied filename to a single safe
// path element.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	name = path.Base(name)
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	if name == "." || name == ".." || name == "" {
		return "file"
	}
	return name
}
