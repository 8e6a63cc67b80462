package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// TxStatus is the lifecycle position of a relayed transaction.
type TxStatus string

const (
	TxSubmitting TxStatus = "submitting" // building, signing, broadcasting
	TxConfirming TxStatus = "confirming" // broadcast, waiting for a receipt
	TxSuccess    TxStatus = "success"
	TxError      TxStatus = "error"
)

var ErrConfirmTimeout = errors.New("transaction confirmation timed out")

// TxHandle tracks one relayed write from broadcast to its terminal state.
// A handle settles exactly once: success and error are mutually exclusive
// and final.
type TxHandle struct {
	mu        sync.Mutex
	status    TxStatus
	txHash    common.Hash
	err       error
	broadcast chan struct{}
	done      chan struct{}
}

func newTxHandle() *TxHandle {
	return &TxHandle{
		status:    TxSubmitting,
		broadcast: make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Status returns the current lifecycle position and, once terminal, the
// settlement error if any.
func (h *TxHandle) Status() (TxStatus, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status, h.err
}

// Hash returns the transaction hash, zero until broadcast.
func (h *TxHandle) Hash() common.Hash {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.txHash
}

// Broadcast closes once the transaction is on the wire and the handle has
// moved to Confirming; the hash is set by then. It never closes for
// writes that fail before broadcast.
func (h *TxHandle) Broadcast() <-chan struct{} { return h.broadcast }

// Done closes when the handle reaches a terminal state.
func (h *TxHandle) Done() <-chan struct{} { return h.done }

// Wait blocks until the handle settles or ctx is cancelled.
func (h *TxHandle) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		_, err := h.Status()
		return err
	}
}

func (h *TxHandle) confirming(hash common.Hash) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status != TxSubmitting {
		return
	}
	h.status = TxConfirming
	h.txHash = hash
	close(h.broadcast)
}

func (h *TxHandle) settle(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status == TxSuccess || h.status == TxError {
		return
	}
	if err != nil {
		h.status = TxError
		h.err = err
	} else {
		h.status = TxSuccess
	}
	close(h.done)
}

// Writer relays state-changing calls through the operator key and watches
// each transaction to a terminal state.
type Writer struct {
	backend   Backend
	contracts *Contracts
	key       *ecdsa.PrivateKey
	from      common.Address
	chainID   *big.Int
	signer    types.Signer

	confirmTimeout time.Duration
	pollRate       time.Duration

	nonceMu sync.Mutex // serializes nonce fetch + broadcast
	log     *zap.Logger
}

func NewWriter(backend Backend, contracts *Contracts, operatorKeyHex string, chainID uint64, confirmTimeout, pollRate time.Duration, log *zap.Logger) (*Writer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(operatorKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse operator key: %w", err)
	}
	id := new(big.Int).SetUint64(chainID)
	return &Writer{
		backend:        backend,
		contracts:      contracts,
		key:            key,
		from:           crypto.PubkeyToAddress(key.PublicKey),
		chainID:        id,
		signer:         types.LatestSignerForChainID(id),
		confirmTimeout: confirmTimeout,
		pollRate:       pollRate,
		log:            log,
	}, nil
}

// Operator returns the relayer address.
func (w *Writer) Operator() common.Address { return w.from }

// submit builds, signs, and broadcasts one contract call, then watches it
// in the background. The returned handle is already Submitting; callers
// observe the rest of the lifecycle through it.
func (w *Writer) submit(ctx context.Context, to common.Address, contractABI *abi.ABI, method string, value *big.Int, args ...interface{}) *TxHandle {
	h := newTxHandle()

	data, err := contractABI.Pack(method, args...)
	if err != nil {
		h.settle(fmt.Errorf("pack %s: %w", method, err))
		return h
	}

	w.nonceMu.Lock()
	tx, err := w.buildAndSend(ctx, to, data, value)
	w.nonceMu.Unlock()
	if err != nil {
		h.settle(fmt.Errorf("%s: %w", method, err))
		return h
	}

	h.confirming(tx.Hash())
	w.log.Info("tx broadcast",
		zap.String("method", method),
		zap.String("hash", tx.Hash().Hex()))

	go w.watch(h, method, tx.Hash())
	return h
}

func (w *Writer) buildAndSend(ctx context.Context, to common.Address, data []byte, value *big.Int) (*types.Transaction, error) {
	if value == nil {
		value = new(big.Int)
	}
	nonce, err := w.backend.PendingNonceAt(ctx, w.from)
	if err != nil {
		return nil, fmt.Errorf("fetch nonce: %w", err)
	}
	gasPrice, err := w.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggest gas price: %w", err)
	}
	gasLimit, err := w.backend.EstimateGas(ctx, ethereum.CallMsg{
		From: w.from, To: &to, Value: value, Data: data,
	})
	if err != nil {
		return nil, fmt.Errorf("estimate gas: %w", err)
	}
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})
	signed, err := types.SignTx(tx, w.signer, w.key)
	if err != nil {
		return nil, fmt.Errorf("sign tx: %w", err)
	}
	if err := w.backend.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("broadcast tx: %w", err)
	}
	return signed, nil
}

// watch polls for the receipt until the transaction settles or the
// confirmation window elapses.
func (w *Writer) watch(h *TxHandle, method string, hash common.Hash) {
	ctx, cancel := context.WithTimeout(context.Background(), w.confirmTimeout)
	defer cancel()

	ticker := time.NewTicker(w.pollRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Warn("tx confirmation timed out",
				zap.String("method", method),
				zap.String("hash", hash.Hex()))
			h.settle(fmt.Errorf("%s (%s): %w", method, hash.Hex(), ErrConfirmTimeout))
			return
		case <-ticker.C:
			receipt, err := w.backend.TransactionReceipt(ctx, hash)
			if err != nil {
				// Not mined yet; keep polling.
				continue
			}
			if receipt.Status == types.ReceiptStatusSuccessful {
				w.log.Info("tx confirmed", zap.String("method", method), zap.String("hash", hash.Hex()))
				h.settle(nil)
			} else {
				w.log.Warn("tx reverted", zap.String("method", method), zap.String("hash", hash.Hex()))
				h.settle(fmt.Errorf("%s reverted on chain (%s)", method, hash.Hex()))
			}
			return
		}
	}
}

// Token writes.

func (w *Writer) BuyTokens(ctx context.Context, weiAmount *big.Int) *TxHandle {
	return w.submit(ctx, w.contracts.Token, &w.contracts.TokenABI, "buyTokens", weiAmount)
}

func (w *Writer) ApproveTokens(ctx context.Context, spender common.Address, amount *big.Int) *TxHandle {
	return w.submit(ctx, w.contracts.Token, &w.contracts.TokenABI, "approve", nil, spender, amount)
}

func (w *Writer) TransferTokens(ctx context.Context, to common.Address, amount *big.Int) *TxHandle {
	return w.submit(ctx, w.contracts.Token, &w.contracts.TokenABI, "transfer", nil, to, amount)
}

func (w *Writer) BurnTokens(ctx context.Context, amount *big.Int) *TxHandle {
	return w.submit(ctx, w.contracts.Token, &w.contracts.TokenABI, "burn", nil, amount)
}

func (w *Writer) MintTokens(ctx context.Context, to common.Address, amount *big.Int) *TxHandle {
	return w.submit(ctx, w.contracts.Token, &w.contracts.TokenABI, "mint", nil, to, amount)
}

func (w *Writer) SetTokenCap(ctx context.Context, cap *big.Int) *TxHandle {
	return w.submit(ctx, w.contracts.Token, &w.contracts.TokenABI, "setCap", nil, cap)
}

func (w *Writer) SetTokenRate(ctx context.Context, tokensPerEth *big.Int) *TxHandle {
	return w.submit(ctx, w.contracts.Token, &w.contracts.TokenABI, "setTokenPrice", nil, tokensPerEth)
}

// Marketplace writes.

func (w *Writer) CreateProduct(ctx context.Context, tokenPrice, ethPrice *big.Int, quantity uint64, name, description, size, condition, brand, categories, gender, image string, forExchange bool, exchangePref string) *TxHandle {
	return w.submit(ctx, w.contracts.Market, &w.contracts.MarketABI, "createProduct", nil,
		tokenPrice, ethPrice, new(big.Int).SetUint64(quantity),
		name, description, size, condition, brand, categories, gender, image,
		forExchange, exchangePref)
}

func (w *Writer) PurchaseWithToken(ctx context.Context, productID, quantity uint64) *TxHandle {
	return w.submit(ctx, w.contracts.Market, &w.contracts.MarketABI, "purchaseProductWithToken", nil,
		new(big.Int).SetUint64(productID), new(big.Int).SetUint64(quantity))
}

func (w *Writer) PurchaseWithEth(ctx context.Context, productID, quantity uint64, weiAmount *big.Int) *TxHandle {
	return w.submit(ctx, w.contracts.Market, &w.contracts.MarketABI, "purchaseProductWithEth", weiAmount,
		new(big.Int).SetUint64(productID), new(big.Int).SetUint64(quantity))
}

func (w *Writer) UpdateProduct(ctx context.Context, productID uint64, tokenPrice, ethPrice *big.Int, name, description, image string) *TxHandle {
	return w.submit(ctx, w.contracts.Market, &w.contracts.MarketABI, "updateProduct", nil,
		new(big.Int).SetUint64(productID), tokenPrice, ethPrice, name, description, image)
}

func (w *Writer) UpdateProductQuantity(ctx context.Context, productID, quantity uint64) *TxHandle {
	return w.submit(ctx, w.contracts.Market, &w.contracts.MarketABI, "updateProductQuantity", nil,
		new(big.Int).SetUint64(productID), new(big.Int).SetUint64(quantity))
}

func (w *Writer) DeleteProduct(ctx context.Context, productID uint64) *TxHandle {
	return w.submit(ctx, w.contracts.Market, &w.contracts.MarketABI, "deleteProduct", nil,
		new(big.Int).SetUint64(productID))
}

func (w *Writer) ConfirmEscrowBuyer(ctx context.Context, escrowID uint64) *TxHandle {
	return w.submit(ctx, w.contracts.Market, &w.contracts.MarketABI, "confirmEscrowBuyer", nil,
		new(big.Int).SetUint64(escrowID))
}

func (w *Writer) ConfirmEscrowSeller(ctx context.Context, escrowID uint64) *TxHandle {
	return w.submit(ctx, w.contracts.Market, &w.contracts.MarketABI, "confirmEscrowSeller", nil,
		new(big.Int).SetUint64(escrowID))
}

func (w *Writer) CancelEscrow(ctx context.Context, escrowID uint64) *TxHandle {
	return w.submit(ctx, w.contracts.Market, &w.contracts.MarketABI, "cancelEscrow", nil,
		new(big.Int).SetUint64(escrowID))
}

func (w *Writer) RejectEscrow(ctx context.Context, escrowID uint64, reason string) *TxHandle {
	return w.submit(ctx, w.contracts.Market, &w.contracts.MarketABI, "rejectEscrow", nil,
		new(big.Int).SetUint64(escrowID), reason)
}

func (w *Writer) RefundExpiredEscrow(ctx context.Context, escrowID uint64) *TxHandle {
	return w.submit(ctx, w.contracts.Market, &w.contracts.MarketABI, "refundExpiredEscrow", nil,
		new(big.Int).SetUint64(escrowID))
}

func (w *Writer) CreateExchangeOffer(ctx context.Context, offeredID, wantedID uint64, tokenTopUp *big.Int) *TxHandle {
	if tokenTopUp == nil {
		tokenTopUp = new(big.Int)
	}
	return w.submit(ctx, w.contracts.Market, &w.contracts.MarketABI, "createExchangeOffer", nil,
		new(big.Int).SetUint64(offeredID), new(big.Int).SetUint64(wantedID), tokenTopUp)
}

func (w *Writer) AcceptExchangeOffer(ctx context.Context, offerID uint64) *TxHandle {
	return w.submit(ctx, w.contracts.Market, &w.contracts.MarketABI, "acceptExchangeOffer", nil,
		new(big.Int).SetUint64(offerID))
}

func (w *Writer) CancelExchangeOffer(ctx context.Context, offerID uint64) *TxHandle {
	return w.submit(ctx, w.contracts.Market, &w.contracts.MarketABI, "cancelExchangeOffer", nil,
		new(big.Int).SetUint64(offerID))
}

// Donation writes.

func (w *Writer) RegisterCenter(ctx context.Context, name, description, location string, acceptsTokens, acceptsRecycling, isDonation bool, website string) *TxHandle {
	return w.submit(ctx, w.contracts.Donation, &w.contracts.DonationABI, "registerCenter", nil,
		name, description, location, acceptsTokens, acceptsRecycling, isDonation, website)
}

func (w *Writer) UpdateCenter(ctx context.Context, centerID uint64, isActive, acceptsTokens, acceptsRecycling bool, website string) *TxHandle {
	return w.submit(ctx, w.contracts.Donation, &w.contracts.DonationABI, "updateCenter", nil,
		new(big.Int).SetUint64(centerID), isActive, acceptsTokens, acceptsRecycling, website)
}

func (w *Writer) SubmitDonation(ctx context.Context, centerID, itemCount uint64, itemType, description string) *TxHandle {
	return w.submit(ctx, w.contracts.Donation, &w.contracts.DonationABI, "submitDonation", nil,
		new(big.Int).SetUint64(centerID), new(big.Int).SetUint64(itemCount), itemType, description)
}

func (w *Writer) SubmitRecycling(ctx context.Context, centerID uint64, weightKG *big.Int, description string) *TxHandle {
	return w.submit(ctx, w.contracts.Donation, &w.contracts.DonationABI, "submitRecycling", nil,
		new(big.Int).SetUint64(centerID), weightKG, description)
}

func (w *Writer) DonateTokens(ctx context.Context, centerID uint64, amount *big.Int) *TxHandle {
	return w.submit(ctx, w.contracts.Donation, &w.contracts.DonationABI, "donateTokens", nil,
		new(big.Int).SetUint64(centerID), amount)
}

func (w *Writer) ApproveDonation(ctx context.Context, donationID uint64) *TxHandle {
	return w.submit(ctx, w.contracts.Donation, &w.contracts.DonationABI, "approveDonation", nil,
		new(big.Int).SetUint64(donationID))
}

func (w *Writer) RejectDonation(ctx context.Context, donationID uint64) *TxHandle {
	return w.submit(ctx, w.contracts.Donation, &w.contracts.DonationABI, "rejectDonation", nil,
		new(big.Int).SetUint64(donationID))
}

func (w *Writer) ApproveCreator(ctx context.Context, creator common.Address) *TxHandle {
	return w.submit(ctx, w.contracts.Donation, &w.contracts.DonationABI, "approveCreator", nil, creator)
}

func (w *Writer) RevokeCreator(ctx context.Context, creator common.Address) *TxHandle {
	return w.submit(ctx, w.contracts.Donation, &w.contracts.DonationABI, "revokeCreator", nil, creator)
}

// Profile writes.

func (w *Writer) SetProfile(ctx context.Context, displayName, avatarURI string) *TxHandle {
	return w.submit(ctx, w.contracts.Profile, &w.contracts.ProfileABI, "setUserProfile", nil,
		displayName, avatarURI)
}

func (w *Writer) SetAesthetics(ctx context.Context, theme string, reducedMotion bool) *TxHandle {
	return w.submit(ctx, w.contracts.Profile, &w.contracts.ProfileABI, "setUserAesthetics", nil,
		theme, reducedMotion)
}
