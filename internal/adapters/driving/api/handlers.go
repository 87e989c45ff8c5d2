package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/custodia-labs/acadrag/internal/core/domain"
	"github.com/custodia-labs/acadrag/internal/core/ports/driving"
	"github.com/custodia-labs/acadrag/internal/logger"
)

// UserHeader carries the caller's user id.
const UserHeader = "X-User-ID"

// MaxUploadBytes bounds an uploaded file.
const MaxUploadBytes = 64 << 20

type ctxKey struct{}

// Handler serves the API endpoints.
type Handler struct {
	answer  driving.AnswerService
	docs    driving.DocumentService
	topK    int
	version string
}

// NewHandler creates a new API handler. topK is used when an ask
// request does not set top_k.
func NewHandler(answer driving.AnswerService, docs driving.DocumentService, topK int, version string) *Handler {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	return &Handler{answer: answer, docs: docs, topK: topK, version: version}
}

// UserMiddleware reads the user id from the X-User-ID header.
func UserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(UserHeader)
		if userID == "" {
			writeError(w, http.StatusUnauthorized, UserHeader+" header is required")
			return
		}
		if err := domain.ValidateUserID(userID); err != nil {
			writeError(w, http.StatusBadRequest, "invalid user id")
			return
		}
		ctx := context.WithValue(r.Context(), ctxKey{}, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFrom(r *http.Request) string {
	userID, _ := r.Context().Value(ctxKey{}).(string)
	return userID
}

// Health reports that the server is up.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": h.version})
}

// AskRequest is the body of POST /api/ask.
type AskRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// AskResponse is the reply to POST /api/ask.
type AskResponse struct {
	Answer    string   `json:"answer"`
	Retrieved []string `json:"retrieved"`
	Status    string   `json:"status"`
}

// Ask answers a question from the caller's documents.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	topK := req.TopK
	if topK <= 0 {
		topK = h.topK
	}

	ans, err := h.answer.Ask(r.Context(), domain.AskRequest{
		UserID: userFrom(r),
		Query:  req.Query,
		TopK:   topK,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	retrieved := ans.Retrieved
	if retrieved == nil {
		retrieved = []string{}
	}
	writeJSON(w, http.StatusOK, AskResponse{
		Answer:    ans.Text,
		Retrieved: retrieved,
		Status:    string(ans.Status),
	})
}

// DocumentResponse describes one uploaded document.
type DocumentResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MIMEType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

func toDocumentResponse(d *domain.Document) DocumentResponse {
	return DocumentResponse{
		ID:        d.ID,
		Name:      d.Name,
		MIMEType:  d.MIMEType,
		Size:      d.Size,
		CreatedAt: d.CreatedAt,
	}
}

// ListDocuments lists the caller's documents, oldest first.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docs.List(r.Context(), userFrom(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]DocumentResponse, len(docs))
	for i := range docs {
		out[i] = toDocumentResponse(&docs[i])
	}
	writeJSON(w, http.StatusOK, out)
}

// UploadDocument stores and ingests the multipart "file" field.
func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "empty filename")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading upload: "+err.Error())
		return
	}

	doc, err := h.docs.Upload(r.Context(), userFrom(r), header.Filename, data)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toDocumentResponse(doc))
}

// DeleteDocument removes one of the caller's documents.
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "documentID")
	if err := h.docs.Delete(r.Context(), userFrom(r), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Notes returns the caller's accumulated notes as plain text.
func (h *Handler) Notes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.docs.Notes(r.Context(), userFrom(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, notes) //nolint:errcheck
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnsupportedType):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDimensionMismatch):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEmbeddingUnavailable), errors.Is(err, domain.ErrGeneratorUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("api: %v", err)
	}
	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("api: encoding response: %v", err)
	}
}

// Serve runs the router on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("api: listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve %s: %w", addr, err)
	}
	return nil
}
