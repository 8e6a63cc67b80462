package chain

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// Well-known hardhat development key, never used on a real network.
const testOperatorKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

type fakeBackend struct {
	mu sync.Mutex

	sendErr     error
	receipt     *types.Receipt
	receiptErr  error
	receiptLagN int // polls to report "not found" before serving the receipt

	sent []*types.Transaction
}

func (f *fakeBackend) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return 7, nil
}

func (f *fakeBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (f *fakeBackend) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return 100_000, nil
}

func (f *fakeBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, tx)
	return nil
}

func (f *fakeBackend) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.receiptLagN > 0 {
		f.receiptLagN--
		return nil, ethereum.NotFound
	}
	if f.receiptErr != nil {
		return nil, f.receiptErr
	}
	if f.receipt == nil {
		return nil, ethereum.NotFound
	}
	return f.receipt, nil
}

func (f *fakeBackend) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	return nil, nil
}

func (f *fakeBackend) BlockNumber(ctx context.Context) (uint64, error) {
	return 0, nil
}

func testContracts(t *testing.T) *Contracts {
	t.Helper()
	c, err := NewContracts(
		"0x1000000000000000000000000000000000000001",
		"0x1000000000000000000000000000000000000002",
		"0x1000000000000000000000000000000000000003",
		"0x1000000000000000000000000000000000000004",
	)
	if err != nil {
		t.Fatalf("NewContracts: %v", err)
	}
	return c
}

func testWriter(t *testing.T, backend Backend, confirmTimeout time.Duration) *Writer {
	t.Helper()
	w, err := NewWriter(backend, testContracts(t), testOperatorKey, 31337, confirmTimeout, 5*time.Millisecond, zap.NewNop())
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	return w
}

func TestWriterConfirmsSuccessfulTx(t *testing.T) {
	backend := &fakeBackend{
		receipt:     &types.Receipt{Status: types.ReceiptStatusSuccessful},
		receiptLagN: 2,
	}
	w := testWriter(t, backend, time.Second)

	h := w.ConfirmEscrowBuyer(context.Background(), 42)
	if status, _ := h.Status(); status != TxConfirming {
		t.Fatalf("after broadcast status = %q, want %q", status, TxConfirming)
	}
	if h.Hash() == (common.Hash{}) {
		t.Fatal("broadcast handle should carry a tx hash")
	}

	if err := h.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if status, _ := h.Status(); status != TxSuccess {
		t.Fatalf("settled status = %q, want %q", status, TxSuccess)
	}
	if len(backend.sent) != 1 {
		t.Fatalf("expected exactly one broadcast, got %d", len(backend.sent))
	}
}

func TestWriterBroadcastFailureSettlesError(t *testing.T) {
	backend := &fakeBackend{sendErr: errors.New("nonce too low")}
	w := testWriter(t, backend, time.Second)

	h := w.CancelEscrow(context.Background(), 1)
	if err := h.Wait(context.Background()); err == nil {
		t.Fatal("expected broadcast error")
	}
	if status, _ := h.Status(); status != TxError {
		t.Fatalf("status = %q, want %q", status, TxError)
	}
	if h.Hash() != (common.Hash{}) {
		t.Fatal("failed broadcast should not report a tx hash")
	}
}

func TestWriterRevertSettlesError(t *testing.T) {
	backend := &fakeBackend{receipt: &types.Receipt{Status: types.ReceiptStatusFailed}}
	w := testWriter(t, backend, time.Second)

	h := w.RejectEscrow(context.Background(), 9, "counterfeit item")
	err := h.Wait(context.Background())
	if err == nil {
		t.Fatal("reverted tx must settle with an error")
	}
	if status, _ := h.Status(); status != TxError {
		t.Fatalf("status = %q, want %q", status, TxError)
	}
}

func TestWriterConfirmationTimeout(t *testing.T) {
	// Receipt never appears.
	backend := &fakeBackend{}
	w := testWriter(t, backend, 30*time.Millisecond)

	h := w.ConfirmEscrowSeller(context.Background(), 3)
	err := h.Wait(context.Background())
	if !errors.Is(err, ErrConfirmTimeout) {
		t.Fatalf("expected ErrConfirmTimeout, got %v", err)
	}
}

func TestTxHandleSettlesExactlyOnce(t *testing.T) {
	h := newTxHandle()
	h.confirming(common.HexToHash("0xabc"))
	h.settle(nil)
	h.settle(errors.New("late error must not flip a settled handle"))

	status, err := h.Status()
	if status != TxSuccess || err != nil {
		t.Fatalf("got (%q, %v), want (%q, nil)", status, err, TxSuccess)
	}
}

func TestWriterPayableCallCarriesValue(t *testing.T) {
	backend := &fakeBackend{receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful}}
	w := testWriter(t, backend, time.Second)

	wei := big.NewInt(1_500_000)
	h := w.BuyTokens(context.Background(), wei)
	if err := h.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if len(backend.sent) != 1 {
		t.Fatalf("expected one tx, got %d", len(backend.sent))
	}
	if backend.sent[0].Value().Cmp(wei) != 0 {
		t.Fatalf("tx value = %s, want %s", backend.sent[0].Value(), wei)
	}
	if *backend.sent[0].To() != w.contracts.Token {
		t.Fatalf("tx to = %s, want token contract", backend.sent[0].To())
	}
}
