package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/lifecycle"
)

type contextKey int

const authUserKey contextKey = iota

// AuthUser is the authenticated caller, as resolved by basic auth.
type AuthUser struct {
	Name string
	Role lifecycle.Role
}

func authUserFrom(ctx context.Context) AuthUser {
	user, _ := ctx.Value(authUserKey).(AuthUser)
	return user
}

func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		role, err := s.userRepo.ValidateUser(r.Context(), username, password)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		user := AuthUser{Name: username, Role: lifecycle.Role(role)}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), authUserKey, user)))
	})
}

func (s *Server) requireStaff(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if authUserFrom(r.Context()).Role != lifecycle.RoleStaff {
			respondError(w, http.StatusForbidden, "staff role required")
			return
		}
		next(w, r)
	}
}

func (s *Server) auditLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entry := AuditLogEntry{
			Timestamp: time.Now(),
			Method:    r.Method,
			Path:      r.URL.Path,
			Handler:   handlerName(r.URL.Path, r.Method),
		}

		if username, _, ok := r.BasicAuth(); ok {
			entry.Actor = username
		}
		entry.OwnerID = ownerIDFromPath(r.URL.Path)

		if r.Body != nil {
			requestBody, _ := io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(requestBody))
			entry.Request = string(requestBody)

			if entry.OwnerID != "" && strings.HasSuffix(r.URL.Path, "/transition") {
				var transitionRequest struct {
					State string `json:"state"`
				}
				if err := json.Unmarshal(requestBody, &transitionRequest); err == nil {
					if current, err := s.lifecycles.CurrentState(r.Context(), entry.OwnerID); err == nil {
						entry.OldState = string(current)
						entry.NewState = transitionRequest.State
					}
				}
			}
		}

		wrw := newResponseWriterWrapper(w)
		next.ServeHTTP(wrw, r)

		entry.StatusCode = wrw.GetStatusCode()
		entry.Response = string(wrw.GetBody())

		s.AuditManager.LogEntry(r.Context(), entry)
	})
}

// ownerIDFromPath pulls the path segment after /orders/ or /returns/.
func ownerIDFromPath(path string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if (part == "orders" || part == "returns") && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}

func handlerName(path string, method string) string {
	switch {
	case strings.HasSuffix(path, "/transition"):
		return "handleTransition"
	case strings.HasSuffix(path, "/confirm-delivery"):
		return "handleConfirmDelivery"
	case strings.HasSuffix(path, "/history"):
		return "handleOrderHistory"
	case strings.HasSuffix(path, "/options"):
		return "handleOrderOptions"
	case strings.HasSuffix(path, "/resolve"):
		return "handleResolve"
	case strings.HasSuffix(path, "/repair"):
		return "handleRepair"
	case strings.HasSuffix(path, "/approve"):
		return "handleApproveReturn"
	case strings.HasSuffix(path, "/reject"):
		return "handleRejectReturn"
	case strings.HasSuffix(path, "/dispatch"):
		return "handleDispatchReturn"
	case strings.HasSuffix(path, "/receive"):
		return "handleReceiveReturn"
	case strings.HasSuffix(path, "/refund"):
		return "handleRefundReturn"
	case strings.HasSuffix(path, "/fail"):
		return "handleFailReturn"
	case path == "/orders" && method == http.MethodPost:
		return "handleCreateOrder"
	case strings.HasPrefix(path, "/orders/") && method == http.MethodGet:
		return "handleGetOrder"
	case path == "/returns" && method == http.MethodPost:
		return "handleCreateReturn"
	case path == "/returns" && method == http.MethodGet:
		return "handleListReturns"
	case strings.HasPrefix(path, "/returns/") && method == http.MethodGet:
		return "handleGetReturn"
	}
	return "unknown"
}

type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
	buffer     bytes.Buffer
}

func newResponseWriterWrapper(w http.ResponseWriter) *responseWriterWrapper {
	return &responseWriterWrapper{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseWriterWrapper) Write(b []byte) (int, error) {
	w.buffer.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseWriterWrapper) GetStatusCode() int {
	return w.statusCode
}

func (w *responseWriterWrapper) GetBody() []byte {
	return w.buffer.Bytes()
}
