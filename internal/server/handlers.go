package server

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-docx-merger/pkg/docx"
)

// handleMerge combines the uploaded DOCX files, first file as base, and
// responds with the merged document bytes.
func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	s.limitBody(w, r)

	if err := r.ParseMultipartForm(4 << 20); err != nil {
		if s.requestTooLarge(w, err) {
			return
		}
		s.writeError(w, http.StatusBadRequest, "Invalid multipart request")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		s.writeError(w, http.StatusBadRequest, "No files provided")
		return
	}

	inputs := make([]docx.Input, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "Failed to read uploaded file")
			return
		}

		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "Failed to read uploaded file")
			return
		}

		inputs = append(inputs, docx.Input{Name: header.Filename, Data: data})
	}

	merged, err := s.merger.Merge(inputs)
	if err != nil {
		s.logger.Warn("merge failed", zap.Int("documents", len(inputs)), zap.Error(err))
		s.writeError(w, mergeStatus(err), err.Error())
		return
	}

	s.logger.Info("documents merged",
		zap.Int("documents", len(inputs)),
		zap.Int("size", len(merged)))

	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="merged.docx"`)
	if _, err := w.Write(merged); err != nil {
		s.logger.Warn("failed to write merged document", zap.Error(err))
	}
}

// handleExtract saves the uploaded files into a per-request temp directory
// and hands them to the text extractor.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if s.extractor == nil {
		s.writeError(w, http.StatusServiceUnavailable, "Text extraction is not configured")
		return
	}

	s.limitBody(w, r)

	if err := r.ParseMultipartForm(4 << 20); err != nil {
		if s.requestTooLarge(w, err) {
			return
		}
		s.writeError(w, http.StatusBadRequest, "Invalid multipart request")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		s.writeError(w, http.StatusBadRequest, "No files provided")
		return
	}

	for _, header := range headers {
		ext := strings.ToLower(filepath.Ext(header.Filename))
		if _, ok := allowedExtensions[ext]; !ok {
			s.writeError(w, http.StatusBadRequest, "File type not allowed")
			return
		}
	}

	// Each request gets its own directory so concurrent extractions never
	// touch each other's files.
	tempDir, err := os.MkdirTemp("", "docmerger-extract-*")
	if err != nil {
		s.logger.Error("failed to create temp directory", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Failed to extract text")
		return
	}
	defer func() {
		if err := os.RemoveAll(tempDir); err != nil {
			s.logger.Warn("failed to remove temp directory",
				zap.String("dir", tempDir), zap.Error(err))
		}
	}()

	paths := make([]string, 0, len(headers))
	for _, header := range headers {
		target := filepath.Join(tempDir, sanitizeFilename(header.Filename))
		if err := saveUpload(header, target); err != nil {
			s.logger.Error("failed to save uploaded file",
				zap.String("file", header.Filename), zap.Error(err))
			s.writeError(w, http.StatusInternalServerError, "Failed to extract text")
			return
		}
		paths = append(paths, target)
	}

	text, err := s.extractor.ExtractText(r.Context(), paths)
	if err != nil {
		s.logger.Error("text extraction failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Failed to extract text")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{"extracted_text": text})
}

// handleUpload stores a single file in the object store and responds with
// a signed download URL.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, http.StatusServiceUnavailable, "Object storage is not configured")
		return
	}

	s.limitBody(w, r)

	file, header, err := r.FormFile("file")
	if err != nil {
		if s.requestTooLarge(w, err) {
			return
		}
		s.writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		if s.requestTooLarge(w, err) {
			return
		}
		s.writeError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	objectName := uuid.New().String() + "_" + sanitizeFilename(header.Filename)
	contentType := header.Header.Get("Content-Type")

	if err := s.store.Upload(r.Context(), objectName, data, contentType); err != nil {
		s.logger.Error("upload failed", zap.String("object", objectName), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	ttl := time.Duration(s.cfg.Storage.SignTTLSeconds) * time.Second
	signedURL, err := s.store.SignURL(r.Context(), objectName, ttl)
	if err != nil {
		s.logger.Error("signing failed", zap.String("object", objectName), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "Upload failed")
		return
	}

	s.logger.Info("file uploaded", zap.String("object", objectName), zap.Int("size", len(data)))

	s.writeJSON(w, http.StatusOK, map[string]string{
		"message":  "Upload successful",
		"filename": objectName,
		"url":      signedURL,
	})
}

// saveUpload streams one multipart file to disk.
func saveUpload(header *multipart.FileHeader, target string) error {
	src, err := header.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
