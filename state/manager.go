package state

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/big"
	"sync"

	"escrowd/escrow"
	"escrowd/storage"
)

var (
	orderKeyPrefix = []byte("escrow/order/")
	orderSeqKey    = []byte("escrow/order-seq")
)

// Manager adapts a key-value Database to the state interface the escrow
// engine expects: one record per order plus the global next-id counter. Each
// engine action runs serialized, so the manager only guards the counter.
type Manager struct {
	mu sync.Mutex
	db storage.Database
}

// NewManager wraps the supplied database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

// storedOrder is the persisted wire form of an order. Money fields are decimal
// strings so records stay readable and unbounded.
type storedOrder struct {
	ID                uint64 `json:"id"`
	Buyer             string `json:"buyer"`
	Seller            string `json:"seller"`
	OrderAmount       string `json:"orderAmount"`
	Quantity          uint64 `json:"quantity"`
	EscrowBalance     string `json:"escrowBalance"`
	Status            uint8  `json:"status"`
	CreatedAt         int64  `json:"createdAt"`
	DeliveryDeadline  int64  `json:"deliveryDeadline"`
	PenaltyIntervals  uint64 `json:"penaltyIntervals"`
	BuyerPenaltyTotal string `json:"buyerPenaltyTotal"`
	BuyerRefund       string `json:"buyerRefund"`
	SellerFinalAmount string `json:"sellerFinalAmount"`
}

func orderKey(id uint64) []byte {
	key := make([]byte, len(orderKeyPrefix)+8)
	copy(key, orderKeyPrefix)
	binary.BigEndian.PutUint64(key[len(orderKeyPrefix):], id)
	return key
}

// OrderPut sanitizes and persists the order record.
func (m *Manager) OrderPut(order *escrow.Order) error {
	if m == nil || m.db == nil {
		return fmt.Errorf("state manager: database not configured")
	}
	sanitized, err := escrow.SanitizeOrder(order)
	if err != nil {
		return err
	}
	stored := storedOrder{
		ID:                sanitized.ID,
		Buyer:             sanitized.Buyer,
		Seller:            sanitized.Seller,
		OrderAmount:       sanitized.OrderAmount.String(),
		Quantity:          sanitized.Quantity,
		EscrowBalance:     sanitized.EscrowBalance.String(),
		Status:            uint8(sanitized.Status),
		CreatedAt:         sanitized.CreatedAt,
		DeliveryDeadline:  sanitized.DeliveryDeadline,
		PenaltyIntervals:  sanitized.PenaltyIntervals,
		BuyerPenaltyTotal: sanitized.BuyerPenaltyTotal.String(),
		BuyerRefund:       sanitized.BuyerRefund.String(),
		SellerFinalAmount: sanitized.SellerFinalAmount.String(),
	}
	raw, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	return m.db.Put(orderKey(sanitized.ID), raw)
}

// OrderGet loads the order record for the identifier. The returned order is a
// fresh instance; mutating it does not affect the stored copy.
func (m *Manager) OrderGet(id uint64) (*escrow.Order, bool) {
	if m == nil || m.db == nil {
		return nil, false
	}
	raw, err := m.db.Get(orderKey(id))
	if err != nil {
		return nil, false
	}
	var stored storedOrder
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, false
	}
	order := &escrow.Order{
		ID:               stored.ID,
		Buyer:            stored.Buyer,
		Seller:           stored.Seller,
		Quantity:         stored.Quantity,
		Status:           escrow.OrderStatus(stored.Status),
		CreatedAt:        stored.CreatedAt,
		DeliveryDeadline: stored.DeliveryDeadline,
		PenaltyIntervals: stored.PenaltyIntervals,
	}
	var ok bool
	if order.OrderAmount, ok = parseAmount(stored.OrderAmount); !ok {
		return nil, false
	}
	if order.EscrowBalance, ok = parseAmount(stored.EscrowBalance); !ok {
		return nil, false
	}
	if order.BuyerPenaltyTotal, ok = parseAmount(stored.BuyerPenaltyTotal); !ok {
		return nil, false
	}
	if order.BuyerRefund, ok = parseAmount(stored.BuyerRefund); !ok {
		return nil, false
	}
	if order.SellerFinalAmount, ok = parseAmount(stored.SellerFinalAmount); !ok {
		return nil, false
	}
	return order, true
}

// NextOrderID allocates the next identifier. Identifiers are strictly
// increasing and start at 1.
func (m *Manager) NextOrderID() (uint64, error) {
	if m == nil || m.db == nil {
		return 0, fmt.Errorf("state manager: database not configured")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var last uint64
	if has, err := m.db.Has(orderSeqKey); err != nil {
		return 0, err
	} else if has {
		raw, err := m.db.Get(orderSeqKey)
		if err != nil {
			return 0, err
		}
		if len(raw) != 8 {
			return 0, fmt.Errorf("state manager: corrupt order sequence")
		}
		last = binary.BigEndian.Uint64(raw)
	}
	next := last + 1
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, next)
	if err := m.db.Put(orderSeqKey, buf); err != nil {
		return 0, err
	}
	return next, nil
}

func parseAmount(s string) (*big.Int, bool) {
	if s == "" {
		return big.NewInt(0), true
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, false
	}
	return v, true
}
