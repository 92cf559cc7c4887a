package state

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"escrowd/escrow"
	"escrowd/storage"
)

var (
	payoutKeyPrefix = []byte("escrow/payout/")
	payoutSeqKey    = []byte("escrow/payout-seq")
)

// Payout is one outbound transfer instruction produced by the engine. The
// journal is the boundary to the external payment rail: a downstream worker
// drains it and performs the actual value movement.
type Payout struct {
	Seq       uint64 `json:"seq"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
	CreatedAt int64  `json:"createdAt"`
}

// PayoutJournal implements the engine's settlement capability by appending
// durable payout records to the key-value store.
type PayoutJournal struct {
	mu    sync.Mutex
	db    storage.Database
	nowFn func() int64
}

// NewPayoutJournal wraps the supplied database.
func NewPayoutJournal(db storage.Database) *PayoutJournal {
	return &PayoutJournal{db: db, nowFn: func() int64 { return time.Now().Unix() }}
}

// SetNowFunc overrides the journal timestamp source, primarily for tests.
func (j *PayoutJournal) SetNowFunc(now func() int64) {
	if now == nil {
		j.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	j.nowFn = now
}

// Transfer appends one payout record per payment, all under a single lock and
// a single sequence advance, so a multi-payment settlement lands in the
// journal as one unit. The sequence key is written last and is the commit
// point: records beyond the persisted sequence are never drained and are
// overwritten by the next batch. Zero amounts are dropped; a negative or nil
// amount rejects the whole batch before anything is written.
func (j *PayoutJournal) Transfer(payments ...escrow.Payment) error {
	if j == nil || j.db == nil {
		return fmt.Errorf("payout journal: database not configured")
	}
	pending := make([]escrow.Payment, 0, len(payments))
	for _, p := range payments {
		if p.Amount == nil || p.Amount.Sign() < 0 {
			return fmt.Errorf("payout journal: invalid transfer amount")
		}
		if p.Amount.Sign() == 0 {
			continue
		}
		pending = append(pending, p)
	}
	if len(pending) == 0 {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	var last uint64
	if has, err := j.db.Has(payoutSeqKey); err != nil {
		return err
	} else if has {
		raw, err := j.db.Get(payoutSeqKey)
		if err != nil {
			return err
		}
		if len(raw) != 8 {
			return fmt.Errorf("payout journal: corrupt sequence")
		}
		last = binary.BigEndian.Uint64(raw)
	}
	now := j.nowFn()
	for i, p := range pending {
		record := Payout{
			Seq:       last + uint64(i) + 1,
			Recipient: p.Recipient,
			Amount:    p.Amount.String(),
			CreatedAt: now,
		}
		raw, err := json.Marshal(record)
		if err != nil {
			return err
		}
		if err := j.db.Put(payoutKey(record.Seq), raw); err != nil {
			return err
		}
	}
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, last+uint64(len(pending)))
	return j.db.Put(payoutSeqKey, buf)
}

func payoutKey(seq uint64) []byte {
	key := make([]byte, len(payoutKeyPrefix)+8)
	copy(key, payoutKeyPrefix)
	binary.BigEndian.PutUint64(key[len(payoutKeyPrefix):], seq)
	return key
}

// PayoutGet loads one journal entry by sequence number.
func (j *PayoutJournal) PayoutGet(seq uint64) (*Payout, bool) {
	if j == nil || j.db == nil {
		return nil, false
	}
	raw, err := j.db.Get(payoutKey(seq))
	if err != nil {
		return nil, false
	}
	var record Payout
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, false
	}
	return &record, true
}
