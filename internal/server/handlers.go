package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/lifecycle"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/repository"
	"gitlab.ozon.dev/pupkingeorgij/lifecycle/internal/workflow"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps the workflow error taxonomy onto HTTP statuses.
// Invalid transitions carry the accepted targets so a stale client can
// resync without another round trip.
func respondDomainError(w http.ResponseWriter, err error) {
	var (
		invalid      *workflow.InvalidTransitionError
		unauthorized *workflow.UnauthorizedError
		notEligible  *workflow.NotEligibleError
		collab       *workflow.CollaboratorFailureError
	)

	switch {
	case errors.As(err, &invalid):
		respondJSON(w, http.StatusConflict, map[string]interface{}{
			"error":      invalid.Error(),
			"legal_next": invalid.LegalNext,
		})
	case errors.As(err, &unauthorized):
		respondError(w, http.StatusForbidden, unauthorized.Error())
	case errors.As(err, &notEligible):
		respondError(w, http.StatusUnprocessableEntity, notEligible.Error())
	case errors.As(err, &collab):
		respondError(w, http.StatusBadGateway, collab.Error())
	case errors.Is(err, workflow.ErrNotFound):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, repository.ErrDuplicateReturn):
		respondError(w, http.StatusConflict, "return request already exists for this order")
	default:
		respondError(w, http.StatusInternalServerError, "Error: "+err.Error())
	}
}

func transitionResponse(res *workflow.TransitionResult) map[string]interface{} {
	return map[string]interface{}{
		"order_id":  res.OrderID,
		"old_state": res.OldState,
		"new_state": res.NewState,
		"applied":   res.Applied,
	}
}

func returnResponse(res *workflow.ReturnResult) map[string]interface{} {
	return map[string]interface{}{
		"return_id":   res.ReturnID,
		"order_id":    res.OrderID,
		"old_status":  res.OldStatus,
		"new_status":  res.NewStatus,
		"order_state": res.OrderState,
	}
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var orderRequest struct {
		ID         string `json:"id"`
		CustomerID string `json:"customer_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&orderRequest); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if orderRequest.ID == "" || orderRequest.CustomerID == "" {
		respondError(w, http.StatusBadRequest, "Missing id or customer_id")
		return
	}

	actor := authUserFrom(r.Context()).Name
	if err := s.lifecycles.CreateOrder(r.Context(), orderRequest.ID, orderRequest.CustomerID, actor); err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{
		"message": "Order created successfully",
		"id":      orderRequest.ID,
	})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	order, err := s.orders.GetByID(r.Context(), orderID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}

func (s *Server) handleListCustomerOrders(w http.ResponseWriter, r *http.Request) {
	customerID := r.URL.Query().Get("customer_id")

	user := authUserFrom(r.Context())
	if user.Role != lifecycle.RoleStaff && user.Name != customerID {
		respondError(w, http.StatusForbidden, "Forbidden")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	orders, err := s.orders.GetByCustomerID(r.Context(), customerID, limit)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, orders)
}

func (s *Server) handleTransition(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	var transitionRequest struct {
		State string `json:"state"`
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&transitionRequest); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if transitionRequest.State == "" {
		respondError(w, http.StatusBadRequest, "Missing state")
		return
	}

	user := authUserFrom(r.Context())
	next := lifecycle.State(transitionRequest.State)

	// Staff may drive any order; customers only their own, and only to
	// the targets the projector would offer them.
	if user.Role != lifecycle.RoleStaff {
		order, err := s.orders.GetByID(r.Context(), orderID)
		if err != nil {
			respondDomainError(w, err)
			return
		}
		if order.CustomerID != user.Name {
			respondDomainError(w, &workflow.UnauthorizedError{
				Actor:   user.Name,
				OwnerID: orderID,
				Reason:  "order belongs to another customer",
			})
			return
		}
		if !lifecycle.CustomerMayTarget(next) {
			respondDomainError(w, &workflow.UnauthorizedError{
				Actor:   user.Name,
				OwnerID: orderID,
				Reason:  "target state is staff-only",
			})
			return
		}
	}

	res, err := s.lifecycles.RequestTransition(r.Context(), orderID, next,
		user.Name, transitionRequest.Notes)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, transitionResponse(res))
}

func (s *Server) handleConfirmDelivery(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	var confirmRequest struct {
		Notes string `json:"notes"`
	}
	// Body is optional here.
	_ = json.NewDecoder(r.Body).Decode(&confirmRequest)

	customer := authUserFrom(r.Context()).Name
	res, err := s.lifecycles.ConfirmDeliveryByCustomer(r.Context(), orderID, customer, confirmRequest.Notes)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, transitionResponse(res))
}

func (s *Server) handleOrderHistory(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	entries, err := s.lifecycles.Timeline(r.Context(), orderID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, entries)
}

func (s *Server) handleOrderOptions(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	current, err := s.lifecycles.CurrentState(r.Context(), orderID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	role := authUserFrom(r.Context()).Role
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"order_id": orderID,
		"state":    current,
		"options":  s.projector.Options(current, role),
	})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	var resolveRequest struct {
		State      string `json:"state"`
		ObservedAt string `json:"observed_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&resolveRequest); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	observedAt, err := time.Parse(time.RFC3339, resolveRequest.ObservedAt)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid observed_at, expected RFC3339")
		return
	}

	actor := authUserFrom(r.Context()).Name
	state, err := s.conflicts.Resolve(r.Context(), orderID,
		lifecycle.State(resolveRequest.State), observedAt, actor)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"order_id": orderID,
		"state":    state,
	})
}

func (s *Server) handleRepair(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	report, err := s.conflicts.Repair(r.Context(), orderID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleCreateReturn(w http.ResponseWriter, r *http.Request) {
	var returnRequest struct {
		OrderID string `json:"order_id"`
		Reason  string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&returnRequest); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if returnRequest.OrderID == "" || returnRequest.Reason == "" {
		respondError(w, http.StatusBadRequest, "Missing order_id or reason")
		return
	}

	customer := authUserFrom(r.Context()).Name
	ret, err := s.returns.CreateRequest(r.Context(), returnRequest.OrderID, customer, returnRequest.Reason)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, ret)
}

func (s *Server) handleListReturns(w http.ResponseWriter, r *http.Request) {
	page := 1
	limit := 10

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		var err error
		page, err = strconv.Atoi(pageStr)
		if err != nil || page <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid value for 'page' parameter")
			return
		}
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			respondError(w, http.StatusBadRequest, "Invalid value for 'limit' parameter")
			return
		}
	}

	returns, err := s.returns.List(r.Context(), page, limit)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, returns)
}

func (s *Server) handleGetReturn(w http.ResponseWriter, r *http.Request) {
	returnID := mux.Vars(r)["id"]

	ret, err := s.returns.GetByID(r.Context(), returnID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	user := authUserFrom(r.Context())
	if user.Role != lifecycle.RoleStaff && ret.CustomerID != user.Name {
		respondError(w, http.StatusForbidden, "not your return request")
		return
	}

	respondJSON(w, http.StatusOK, ret)
}

func (s *Server) handleApproveReturn(w http.ResponseWriter, r *http.Request) {
	returnID := mux.Vars(r)["id"]

	res, err := s.returns.Approve(r.Context(), returnID, authUserFrom(r.Context()).Name)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, returnResponse(res))
}

func (s *Server) handleRejectReturn(w http.ResponseWriter, r *http.Request) {
	returnID := mux.Vars(r)["id"]

	var rejectRequest struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&rejectRequest); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if rejectRequest.Reason == "" {
		respondError(w, http.StatusBadRequest, "Missing reason")
		return
	}

	res, err := s.returns.Reject(r.Context(), returnID, authUserFrom(r.Context()).Name, rejectRequest.Reason)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, returnResponse(res))
}

func (s *Server) handleDispatchReturn(w http.ResponseWriter, r *http.Request) {
	returnID := mux.Vars(r)["id"]

	res, err := s.returns.ConfirmShipmentDispatched(r.Context(), returnID, authUserFrom(r.Context()).Name)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, returnResponse(res))
}

func (s *Server) handleReceiveReturn(w http.ResponseWriter, r *http.Request) {
	returnID := mux.Vars(r)["id"]

	res, err := s.returns.ConfirmReceiptAtWarehouse(r.Context(), returnID, authUserFrom(r.Context()).Name)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, returnResponse(res))
}

func (s *Server) handleRefundReturn(w http.ResponseWriter, r *http.Request) {
	returnID := mux.Vars(r)["id"]

	res, err := s.returns.CompleteRefund(r.Context(), returnID, authUserFrom(r.Context()).Name)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, returnResponse(res))
}

func (s *Server) handleFailReturn(w http.ResponseWriter, r *http.Request) {
	returnID := mux.Vars(r)["id"]

	var failRequest struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&failRequest); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := s.returns.MarkFailed(r.Context(), returnID, authUserFrom(r.Context()).Name, failRequest.Reason)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, returnResponse(res))
}
