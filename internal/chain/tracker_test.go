package chain

import (
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

func TestTrackerRefusesDuplicateInFlight(t *testing.T) {
	tr := NewActionTracker(time.Minute)

	if !tr.Begin("escrow:1:confirm") {
		t.Fatal("first Begin should claim the id")
	}
	if tr.Begin("escrow:1:confirm") {
		t.Fatal("second Begin for an in-flight id must be refused")
	}
	// A different entity is independent.
	if !tr.Begin("escrow:2:confirm") {
		t.Fatal("unrelated id should not be blocked")
	}
}

func TestTrackerSettledEntryAllowsRetry(t *testing.T) {
	tr := NewActionTracker(time.Minute)

	tr.Begin("donation:5:approve")
	tr.Settle("donation:5:approve", errors.New("reverted"))

	if tr.InFlight("donation:5:approve") {
		t.Fatal("settled action must not report in flight")
	}
	if !tr.Begin("donation:5:approve") {
		t.Fatal("settled id should accept a new attempt within retention")
	}
}

func TestTrackerRetainsTerminalStateBriefly(t *testing.T) {
	tr := NewActionTracker(time.Minute)
	var fired func()
	tr.timeAfterFunc = func(d time.Duration, f func()) *time.Timer {
		fired = f
		return time.NewTimer(time.Hour)
	}

	tr.Begin("product:3:purchase")
	tr.Update("product:3:purchase", TxConfirming, "0xdead")
	tr.Settle("product:3:purchase", nil)

	v, ok := tr.Get("product:3:purchase")
	if !ok {
		t.Fatal("settled action must remain visible during retention")
	}
	if v.Status != TxSuccess || v.TxHash != "0xdead" {
		t.Fatalf("got %+v, want success with hash", v)
	}

	fired()
	if _, ok := tr.Get("product:3:purchase"); ok {
		t.Fatal("entry must be dropped after retention elapses")
	}
}

func TestTrackerRetentionDoesNotDropReplacement(t *testing.T) {
	tr := NewActionTracker(time.Minute)
	var fired func()
	tr.timeAfterFunc = func(d time.Duration, f func()) *time.Timer {
		if fired == nil {
			fired = f
		}
		return time.NewTimer(time.Hour)
	}

	tr.Begin("escrow:8:cancel")
	tr.Settle("escrow:8:cancel", nil)
	// Retry starts before the first entry's retention fires.
	tr.Begin("escrow:8:cancel")

	fired()
	if !tr.InFlight("escrow:8:cancel") {
		t.Fatal("expired retention of the old entry must not evict the retry")
	}
}

func TestTrackerSettleIsTerminal(t *testing.T) {
	tr := NewActionTracker(time.Minute)
	tr.Begin("center:1:update")
	tr.Settle("center:1:update", nil)
	tr.Settle("center:1:update", errors.New("late"))
	tr.Update("center:1:update", TxConfirming, "0xffff")

	v, _ := tr.Get("center:1:update")
	if v.Status != TxSuccess || v.Error != "" {
		t.Fatalf("terminal state must not change, got %+v", v)
	}
}

func TestTrackerReportsConfirmingBeforeSettlement(t *testing.T) {
	tr := NewActionTracker(time.Minute)
	h := newTxHandle()

	if !tr.Track("escrow:9:confirm", h) {
		t.Fatal("Track should claim the id")
	}

	// Broadcast happens; the receipt is still a long way off. Pollers
	// must see the confirming phase and the hash during that window.
	h.confirming(common.HexToHash("0xabc"))

	deadline := time.Now().Add(time.Second)
	for {
		v, ok := tr.Get("escrow:9:confirm")
		if ok && v.Status == TxConfirming && v.TxHash != "" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("tracker never observed the confirming phase, got %+v", v)
		}
		time.Sleep(time.Millisecond)
	}

	h.settle(nil)
	deadline = time.Now().Add(time.Second)
	for tr.InFlight("escrow:9:confirm") {
		if time.Now().After(deadline) {
			t.Fatal("tracked action did not settle with its handle")
		}
		time.Sleep(time.Millisecond)
	}
	v, _ := tr.Get("escrow:9:confirm")
	if v.Status != TxSuccess || v.TxHash == "" {
		t.Fatalf("terminal view must keep the hash, got %+v", v)
	}
}

func TestTrackerTrackFollowsHandle(t *testing.T) {
	tr := NewActionTracker(time.Minute)
	h := newTxHandle()

	if !tr.Track("token:buy", h) {
		t.Fatal("Track should claim the id")
	}
	if tr.Track("token:buy", newTxHandle()) {
		t.Fatal("second Track for the same id must be refused")
	}

	h.settle(nil)
	deadline := time.Now().Add(time.Second)
	for tr.InFlight("token:buy") {
		if time.Now().After(deadline) {
			t.Fatal("tracked action did not settle with its handle")
		}
		time.Sleep(time.Millisecond)
	}
	v, _ := tr.Get("token:buy")
	if v.Status != TxSuccess {
		t.Fatalf("status = %q, want %q", v.Status, TxSuccess)
	}
}
