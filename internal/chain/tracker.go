package chain

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ActionTracker records which entity-scoped actions are currently in
// flight so a second submission for the same entity is refused while the
// first is unresolved. Settled outcomes are retained briefly so pollers
// can observe the terminal state before it is dropped.
type ActionTracker struct {
	mu        sync.Mutex
	actions   map[string]*actionState
	retention time.Duration

	// timeAfterFunc is swapped in tests.
	timeAfterFunc func(d time.Duration, f func()) *time.Timer
}

type actionState struct {
	Status    TxStatus
	TxHash    string
	Err       string
	StartedAt time.Time
	SettledAt time.Time
}

// ActionView is the externally visible state of one tracked action.
type ActionView struct {
	ID        string    `json:"id"`
	Status    TxStatus  `json:"status"`
	TxHash    string    `json:"tx_hash,omitempty"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

func NewActionTracker(retention time.Duration) *ActionTracker {
	return &ActionTracker{
		actions:       make(map[string]*actionState),
		retention:     retention,
		timeAfterFunc: time.AfterFunc,
	}
}

// Begin claims the action id. It returns false when the id is already in
// flight, in which case the caller must refuse the duplicate rather than
// queue it.
func (t *ActionTracker) Begin(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if st, ok := t.actions[id]; ok {
		if st.Status == TxSubmitting || st.Status == TxConfirming {
			return false
		}
		// Settled entry still within retention; a new attempt replaces it.
	}
	t.actions[id] = &actionState{Status: TxSubmitting, StartedAt: time.Now()}
	return true
}

// Update moves an in-flight action to Confirming with its tx hash.
func (t *ActionTracker) Update(id string, status TxStatus, txHash string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.actions[id]
	if !ok || st.Status == TxSuccess || st.Status == TxError {
		return
	}
	st.Status = status
	if txHash != "" {
		st.TxHash = txHash
	}
}

// Settle records the terminal outcome and schedules the entry for removal
// after the retention window.
func (t *ActionTracker) Settle(id string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.actions[id]
	if !ok || st.Status == TxSuccess || st.Status == TxError {
		return
	}
	st.SettledAt = time.Now()
	if err != nil {
		st.Status = TxError
		st.Err = err.Error()
	} else {
		st.Status = TxSuccess
	}
	settled := st
	t.timeAfterFunc(t.retention, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		// Only drop the entry we settled; Begin may have replaced it.
		if cur, ok := t.actions[id]; ok && cur == settled {
			delete(t.actions, id)
		}
	})
}

// InFlight reports whether the id has an unresolved action.
func (t *ActionTracker) InFlight(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.actions[id]
	return ok && (st.Status == TxSubmitting || st.Status == TxConfirming)
}

// Get returns the visible state of one action, if tracked.
func (t *ActionTracker) Get(id string) (ActionView, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.actions[id]
	if !ok {
		return ActionView{}, false
	}
	return ActionView{ID: id, Status: st.Status, TxHash: st.TxHash, Error: st.Err, StartedAt: st.StartedAt}, true
}

// Snapshot lists every tracked action, in-flight and recently settled.
func (t *ActionTracker) Snapshot() []ActionView {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]ActionView, 0, len(t.actions))
	for id, st := range t.actions {
		out = append(out, ActionView{ID: id, Status: st.Status, TxHash: st.TxHash, Error: st.Err, StartedAt: st.StartedAt})
	}
	return out
}

// Track wires a TxHandle into the tracker: the action moves to Confirming
// when the transaction is broadcast and settles when the handle does, so
// pollers see every lifecycle phase. Returns false without consuming the
// handle when the id is already in flight.
func (t *ActionTracker) Track(id string, h *TxHandle) bool {
	if !t.Begin(id) {
		return false
	}
	go func() {
		select {
		case <-h.Broadcast():
			t.Update(id, TxConfirming, h.Hash().Hex())
			<-h.Done()
		case <-h.Done():
			// Failed before broadcast, or settled while both channels
			// were ready and the race went to Done.
		}
		_, err := h.Status()
		if hash := h.Hash(); hash != (common.Hash{}) {
			t.Update(id, TxConfirming, hash.Hex())
		}
		t.Settle(id, err)
	}()
	return true
}
