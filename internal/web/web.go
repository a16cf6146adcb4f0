// Package web provides the HTTP server, JSON responses and middleware shared by transports.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fd1az/nodepulse/internal/apperror"
	"github.com/fd1az/nodepulse/internal/logger"
)

// Respond writes v as JSON with the given status.
func Respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RespondError writes err as an error body. Errors without a code become 500.
func RespondError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = apperror.New(apperror.CodeInternalError, apperror.WithCause(err))
	}
	Respond(w, appErr.StatusCode, appErr.ToResponse())
}

// MaxBodyBytes bounds request bodies read by Decode.
const MaxBodyBytes = 1 << 20

// Decode reads a JSON body of at most MaxBodyBytes into v.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperror.New(apperror.CodeInvalidInput,
				apperror.WithContext(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)),
				apperror.WithStatusCode(http.StatusRequestEntityTooLarge))
		}
		return apperror.Validation(apperror.CodeInvalidInput, err.Error())
	}
	return nil
}

// CORS allows cross-origin requests from origin and answers preflights.
func CORS(origin string, next http.Handler) http.Handler {
	if origin == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Server serves the API.
type Server struct {
	srv    *http.Server
	logger logger.LoggerInterface
}

// NewServer creates a traced server on port; it is not started.
func NewServer(port int, handler http.Handler, log logger.LoggerInterface) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              ":" + strconv.Itoa(port),
			Handler:           otelhttp.NewHandler(handler, "api"),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: log,
	}
}

// Serve blocks until the server stops. A clean shutdown returns nil.
func (s *Server) Serve() error {
	s.logger.Info(context.Background(), "api listening", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving api: %w", err)
	}
	return nil
}

// Shutdown stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
