package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/eugenenazirov/envguard/internal/envguard"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler exposes a read-only HTTP view of a guarded environment. Values are
// only ever returned for shared variables.
type Handler struct {
	env *envguard.Container

	clock func() time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler serving env.
func NewHandler(env *envguard.Container, opts ...HandlerOption) *Handler {
	h := &Handler{
		env: env,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
		Variables: len(h.env.Keys()),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleListVariables(w http.ResponseWriter, r *http.Request) {
	_ = r
	keys := h.env.Keys()
	vars := make([]variableResponse, 0, len(keys))
	for _, key := range keys {
		item := variableResponse{Key: key, Shared: h.env.IsShared(key)}
		if item.Shared {
			value, err := h.env.String(key)
			if err != nil {
				writeInternalError(w, err)
				return
			}
			item.Value = &value
		}
		vars = append(vars, item)
	}
	writeJSON(w, http.StatusOK, listResponse{Variables: vars})
}

func (h *Handler) handleGetVariable(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	value, err := h.env.String(key)
	if err != nil {
		if errors.Is(err, envguard.ErrUndefinedKey) {
			writeError(w, http.StatusNotFound, "Unknown variable", err.Error(), "declare the variable in the manifest")
			return
		}
		writeInternalError(w, err)
		return
	}

	if !h.env.IsShared(key) {
		writeError(w, http.StatusForbidden, "Variable not shared", fmt.Sprintf("environment variable %q is not shared", key))
		return
	}

	writeJSON(w, http.StatusOK, variableResponse{Key: key, Shared: true, Value: &value})
}

func (h *Handler) handleSetVariable(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	var body struct {
		Value any `json:"value"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	writeMutationError(w, h.env.Set(key, body.Value))
}

func (h *Handler) handleDeleteVariable(w http.ResponseWriter, r *http.Request) {
	writeMutationError(w, h.env.Delete(r.PathValue("key")))
}

func writeMutationError(w http.ResponseWriter, err error) {
	if err == nil || !errors.Is(err, envguard.ErrImmutable) {
		writeInternalError(w, fmt.Errorf("unexpected mutation result: %v", err))
		return
	}
	w.Header().Set("Allow", http.MethodGet)
	writeError(w, http.StatusMethodNotAllowed, "Immutable variable", err.Error())
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type variableResponse struct {
	Key    string  `json:"key"`
	Shared bool    `json:"shared"`
	Value  *string `json:"value,omitempty"`
}

type listResponse struct {
	Variables []variableResponse `json:"variables"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Variables int       `json:"variables"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
