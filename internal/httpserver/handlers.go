package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	productdomain "minishop/catalog/internal/domain/product"
	authusecase "minishop/catalog/internal/usecase/auth"
	productusecase "minishop/catalog/internal/usecase/product"
)

const maxBodyBytes = 1 << 20

func (s *Server) registerRoutes() {
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /docs", s.handleDocs)
	s.router.HandleFunc("GET /openapi/{document}", s.handleOpenAPI)
	if s.authService != nil {
		s.router.HandleFunc("POST /auth/token", s.handleIssueToken)
		s.router.HandleFunc("POST /auth/renew", s.handleRenewToken)
	}
	s.router.HandleFunc("/", s.dispatch)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.productService.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", "err", err, "request_id", RequestIDFromContext(r.Context()))
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListProductsV1(w http.ResponseWriter, r *http.Request, _ apiRequest) {
	q := r.URL.Query()
	input := productusecase.ListInput{
		Page:     productusecase.DefaultPage,
		PageSize: productusecase.DefaultPageSize,
		Search:   q.Get("search"),
	}

	invalid := map[string][]string{}
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			invalid["page"] = []string{"must be an integer"}
		}
		input.Page = n
	}
	if raw := q.Get("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			invalid["pageSize"] = []string{"must be an integer"}
		}
		input.PageSize = n
	}
	if len(invalid) > 0 {
		writeValidationProblem(w, r, invalid)
		return
	}

	result, err := s.productService.List(r.Context(), input)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCreateProductV1(w http.ResponseWriter, r *http.Request, req apiRequest) {
	var payload productusecase.CreateInput
	if err := decodeJSONBody(w, r, &payload); err != nil {
		if errors.Is(err, io.EOF) {
			writeProblem(w, r, http.StatusBadRequest, "request body required")
		} else {
			writeProblem(w, r, http.StatusBadRequest, "invalid JSON payload")
		}
		return
	}

	item, err := s.productService.Create(r.Context(), payload)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", req.prefix+"/products/"+strconv.FormatInt(item.ID, 10))
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleGetProductV1(w http.ResponseWriter, r *http.Request, req apiRequest) {
	item, err := s.productService.Get(r.Context(), req.id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteProductV1(w http.ResponseWriter, r *http.Request, req apiRequest) {
	if err := s.productService.Delete(r.Context(), req.id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListProductsV2(w http.ResponseWriter, r *http.Request, _ apiRequest) {
	items, err := s.productService.ListV2(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *productdomain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeValidationProblem(w, r, verr.Fields)
	case errors.Is(err, productdomain.ErrDuplicateSKU):
		writeValidationProblem(w, r, map[string][]string{"sku": {err.Error()}})
	case errors.Is(err, productdomain.ErrNotFound):
		writeNotFound(w)
	default:
		s.logger.Error("store operation failed",
			"err", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", RequestIDFromContext(r.Context()),
		)
		writeProblem(w, r, http.StatusInternalServerError, "")
	}
}

func (s *Server) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Key string `json:"key"`
	}
	if err := decodeJSONBody(w, r, &payload); err != nil {
		writeProblem(w, r, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	token, err := s.authService.Login(r.Context(), payload.Key)
	if err != nil {
		switch {
		case errors.Is(err, authusecase.ErrInvalidCredentials):
			writeProblem(w, r, http.StatusUnauthorized, "invalid operator key")
		default:
			writeProblem(w, r, http.StatusBadRequest, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleRenewToken(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		var payload struct {
			Token string `json:"token"`
		}
		if err := decodeJSONBody(w, r, &payload); err != nil {
			if errors.Is(err, io.EOF) {
				writeProblem(w, r, http.StatusBadRequest, "token required")
			} else {
				writeProblem(w, r, http.StatusBadRequest, "invalid JSON payload")
			}
			return
		}
		token = strings.TrimSpace(payload.Token)
	}
	if token == "" {
		writeProblem(w, r, http.StatusBadRequest, "token required")
		return
	}

	renewed, err := s.authService.RenewToken(r.Context(), token)
	if err != nil {
		writeProblem(w, r, http.StatusUnauthorized, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": renewed})
}

// authorize enforces the operator token on write routes. It writes the
// rejection itself and returns false when the request must stop.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request) bool {
	if s.authService == nil {
		return true
	}
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeProblem(w, r, http.StatusUnauthorized, "authorization token required")
		return false
	}
	if err := s.authService.VerifyToken(r.Context(), token); err != nil {
		w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
		writeProblem(w, r, http.StatusUnauthorized, "invalid or expired token")
		return false
	}
	return true
}

var errTrailingData = errors.New("unexpected data after JSON value")

// decodeJSONBody reads exactly one JSON value from the request body.
// An empty body yields io.EOF.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errTrailingData
	}
	return nil
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
