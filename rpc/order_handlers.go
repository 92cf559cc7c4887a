package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"

	"escrowd/escrow"
)

const (
	codeOrderInvalidParams  = -32021
	codeOrderNotFound       = -32022
	codeOrderForbidden      = -32023
	codeOrderInvalidState   = -32024
	codeOrderInternal       = -32025
	codeOrderAmountMismatch = -32026
)

type orderCreateParams struct {
	Caller      string `json:"caller"`
	Seller      string `json:"seller"`
	OrderAmount string `json:"orderAmount"`
	Quantity    uint64 `json:"quantity"`
}

type orderActorParams struct {
	ID     uint64 `json:"id"`
	Caller string `json:"caller"`
}

type orderConfirmParams struct {
	ID           uint64 `json:"id"`
	Caller       string `json:"caller"`
	DeliveryDays uint64 `json:"deliveryDays"`
}

type orderFundParams struct {
	ID     uint64 `json:"id"`
	Caller string `json:"caller"`
	Value  string `json:"value"`
}

type orderIDParams struct {
	ID uint64 `json:"id"`
}

type orderCreateResult struct {
	OrderID uint64 `json:"orderId"`
}

type accrueResult struct {
	OrderID        uint64 `json:"orderId"`
	PenaltyCharged string `json:"penaltyCharged"`
}

type buyerViewJSON struct {
	OrderID          uint64 `json:"orderId"`
	Seller           string `json:"seller"`
	OrderAmount      string `json:"orderAmount"`
	Quantity         uint64 `json:"quantity"`
	Status           string `json:"status"`
	CreatedAt        int64  `json:"createdAt"`
	DeliveryDeadline int64  `json:"deliveryDeadline"`
	EscrowBalance    string `json:"escrowBalance"`
	PenaltyTotal     string `json:"penaltyTotal"`
	RefundBalance    string `json:"refundBalance"`
}

type sellerViewJSON struct {
	OrderID          uint64 `json:"orderId"`
	Buyer            string `json:"buyer"`
	OrderAmount      string `json:"orderAmount"`
	Quantity         uint64 `json:"quantity"`
	Status           string `json:"status"`
	CreatedAt        int64  `json:"createdAt"`
	DeliveryDeadline int64  `json:"deliveryDeadline"`
	EscrowBalance    string `json:"escrowBalance"`
	FinalAmount      string `json:"finalAmount"`
}

func decodeSingleParam(req *RPCRequest, out interface{}) error {
	if len(req.Params) != 1 {
		return fmt.Errorf("exactly one parameter object expected")
	}
	return json.Unmarshal(req.Params[0], out)
}

func parsePositiveBigInt(raw string) (*big.Int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("amount required")
	}
	value, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", raw)
	}
	if value.Sign() <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	return value, nil
}

// writeOrderError maps domain failures onto the JSON-RPC error block. The
// message carries the exact contract reason string; data carries the taxonomy
// label.
func writeOrderError(w http.ResponseWriter, id interface{}, err error) {
	var domainErr *escrow.Error
	if errors.As(err, &domainErr) {
		status := http.StatusBadRequest
		code := codeOrderInvalidParams
		label := "invalid_argument"
		switch {
		case errors.Is(domainErr, escrow.ErrOrderNotFound):
			status, code, label = http.StatusNotFound, codeOrderNotFound, "not_found"
		case domainErr.Code == escrow.CodeUnauthorized:
			status, code, label = http.StatusForbidden, codeOrderForbidden, "unauthorized"
		case domainErr.Code == escrow.CodeInvalidState:
			status, code, label = http.StatusConflict, codeOrderInvalidState, "invalid_state"
		case domainErr.Code == escrow.CodeAmountMismatch:
			status, code, label = http.StatusBadRequest, codeOrderAmountMismatch, "amount_mismatch"
		}
		writeError(w, status, id, code, domainErr.Reason, label)
		return
	}
	writeError(w, http.StatusInternalServerError, id, codeOrderInternal, "internal_error", err.Error())
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params orderCreateParams
	if err := decodeSingleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeOrderInvalidParams, "invalid_params", err.Error())
		return
	}
	amount, err := parsePositiveBigInt(params.OrderAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeOrderInvalidParams, "invalid_params", err.Error())
		return
	}
	id, err := s.engine.CreateOrder(params.Caller, params.Seller, amount, params.Quantity)
	s.observe("escrow_createOrder", err)
	if err != nil {
		writeOrderError(w, req.ID, err)
		return
	}
	if s.metrics != nil {
		s.metrics.OpenOrders.Inc()
	}
	writeResult(w, req.ID, orderCreateResult{OrderID: id})
}

func (s *Server) handleConfirmOrder(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params orderConfirmParams
	if err := decodeSingleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeOrderInvalidParams, "invalid_params", err.Error())
		return
	}
	err := s.engine.ConfirmOrder(params.ID, params.Caller, params.DeliveryDays)
	s.observe("escrow_confirmOrder", err)
	if err != nil {
		writeOrderError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleFundOrder(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params orderFundParams
	if err := decodeSingleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeOrderInvalidParams, "invalid_params", err.Error())
		return
	}
	value, err := parsePositiveBigInt(params.Value)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeOrderInvalidParams, "invalid_params", err.Error())
		return
	}
	err = s.engine.FundOrder(params.ID, params.Caller, value)
	s.observe("escrow_fundOrder", err)
	if err != nil {
		writeOrderError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleDeliverOrder(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params orderActorParams
	if err := decodeSingleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeOrderInvalidParams, "invalid_params", err.Error())
		return
	}
	err := s.engine.DeliverOrder(params.ID, params.Caller)
	s.observe("escrow_deliverOrder", err)
	if err != nil {
		writeOrderError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleConfirmReceipt(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params orderActorParams
	if err := decodeSingleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeOrderInvalidParams, "invalid_params", err.Error())
		return
	}
	penalty, err := s.engine.ConfirmReceipt(params.ID, params.Caller)
	s.observe("escrow_confirmReceipt", err)
	if err != nil {
		writeOrderError(w, req.ID, err)
		return
	}
	if s.metrics != nil {
		s.metrics.OpenOrders.Dec()
		if penalty.Sign() > 0 {
			charged, _ := new(big.Float).SetInt(penalty).Float64()
			s.metrics.PenaltyCharged.Add(charged)
		}
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleCancelOrder(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	if authErr := s.requireAuth(r); authErr != nil {
		writeError(w, http.StatusUnauthorized, req.ID, authErr.Code, authErr.Message, authErr.Data)
		return
	}
	var params orderActorParams
	if err := decodeSingleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeOrderInvalidParams, "invalid_params", err.Error())
		return
	}
	err := s.engine.CancelOrder(params.ID, params.Caller)
	s.observe("escrow_cancelOrder", err)
	if err != nil {
		writeOrderError(w, req.ID, err)
		return
	}
	if s.metrics != nil {
		s.metrics.OpenOrders.Dec()
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleAccruePenalty(w http.ResponseWriter, r *http.Request, req *RPCRequest) {
	var params orderIDParams
	if err := decodeSingleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeOrderInvalidParams, "invalid_params", err.Error())
		return
	}
	penalty, err := s.engine.AccruePenalty(params.ID)
	s.observe("escrow_accruePenalty", err)
	if err != nil {
		writeOrderError(w, req.ID, err)
		return
	}
	if s.metrics != nil && penalty.Sign() > 0 {
		charged, _ := new(big.Float).SetInt(penalty).Float64()
		s.metrics.PenaltyCharged.Add(charged)
	}
	writeResult(w, req.ID, accrueResult{OrderID: params.ID, PenaltyCharged: penalty.String()})
}

func (s *Server) handleGetBuyerDetails(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params orderActorParams
	if err := decodeSingleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeOrderInvalidParams, "invalid_params", err.Error())
		return
	}
	view, err := s.engine.GetBuyerDetails(params.ID, params.Caller)
	if err != nil {
		writeOrderError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, buyerViewJSON{
		OrderID:          view.ID,
		Seller:           view.Seller,
		OrderAmount:      view.OrderAmount.String(),
		Quantity:         view.Quantity,
		Status:           view.Status.String(),
		CreatedAt:        view.CreatedAt,
		DeliveryDeadline: view.DeliveryDeadline,
		EscrowBalance:    view.EscrowBalance.String(),
		PenaltyTotal:     view.PenaltyTotal.String(),
		RefundBalance:    view.RefundBalance.String(),
	})
}

func (s *Server) handleGetSellerDetails(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params orderActorParams
	if err := decodeSingleParam(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeOrderInvalidParams, "invalid_params", err.Error())
		return
	}
	view, err := s.engine.GetSellerDetails(params.ID, params.Caller)
	if err != nil {
		writeOrderError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, sellerViewJSON{
		OrderID:          view.ID,
		Buyer:            view.Buyer,
		OrderAmount:      view.OrderAmount.String(),
		Quantity:         view.Quantity,
		Status:           view.Status.String(),
		CreatedAt:        view.CreatedAt,
		DeliveryDeadline: view.DeliveryDeadline,
		EscrowBalance:    view.EscrowBalance.String(),
		FinalAmount:      view.FinalAmount.String(),
	})
}
