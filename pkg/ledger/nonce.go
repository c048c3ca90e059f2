package ledger

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// TransactionStatus represents the status of a settlement transaction
type TransactionStatus int

const (
	// TxPending indicates transaction is pending
	TxPending TransactionStatus = iota
	// TxConfirmed indicates transaction is confirmed
	TxConfirmed
	// TxFailed indicates transaction has failed
	TxFailed
	// TxTimedOut indicates transaction has timed out
	TxTimedOut
)

// TransactionRecord tracks details about a settlement transaction
type TransactionRecord struct {
	Hash      common.Hash
	Nonce     uint64
	CreatedAt time.Time
	UpdatedAt time.Time
	Status    TransactionStatus
}

// NonceManager handles nonce allocation and tracking for the solver account.
// The settler signs with a single key on a single chain, so one counter and
// one pending set cover every settlement transaction.
type NonceManager struct {
	// Current nonce counter
	currentNonce uint64
	// Map of pending transactions by nonce
	pendingTxs map[uint64]*TransactionRecord
	// Last time nonce was synchronized with the blockchain
	lastSync time.Time
	// Transaction timeout duration
	txTimeout time.Duration

	mu sync.Mutex
}

// NewNonceManager creates a new nonce manager
func NewNonceManager() *NonceManager {
	return &NonceManager{
		pendingTxs: make(map[uint64]*TransactionRecord),
		txTimeout:  5 * time.Minute, // Default timeout of 5 minutes
	}
}

// SetTransactionTimeout sets the timeout for transactions
func (nm *NonceManager) SetTransactionTimeout(timeout time.Duration) {
	nm.mu.Lock()
	defer nm.mu.Unlock()
	nm.txTimeout = timeout
}

// GetNonce reserves and returns the next available nonce
func (nm *NonceManager) GetNonce(ctx context.Context, client *ethclient.Client, address common.Address) (uint64, error) {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	// If nonce hasn't been initialized or it's been more than 5 minutes since last sync
	if nm.lastSync.IsZero() || time.Since(nm.lastSync) > 5*time.Minute {
		// Fetch the current nonce from the blockchain
		nonce, err := client.PendingNonceAt(ctx, address)
		if err != nil {
			return 0, fmt.Errorf("failed to get pending nonce: %v", err)
		}

		// If our tracked nonce is behind, update it
		if nonce > nm.currentNonce {
			log.Printf("Updating nonce: %d -> %d", nm.currentNonce, nonce)
			nm.currentNonce = nonce
		}
		nm.lastSync = time.Now()
	}

	// Allocate the nonce
	nonce := nm.currentNonce
	nm.currentNonce++

	return nonce, nil
}

// TrackTransaction records a new transaction
func (nm *NonceManager) TrackTransaction(txHash common.Hash, nonce uint64) {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	now := time.Now()
	nm.pendingTxs[nonce] = &TransactionRecord{
		Hash:      txHash,
		Nonce:     nonce,
		CreatedAt: now,
		UpdatedAt: now,
		Status:    TxPending,
	}

	log.Printf("Tracking settlement transaction with nonce %d: %s", nonce, txHash.Hex())
}

// MarkTransactionConfirmed marks a transaction as confirmed
func (nm *NonceManager) MarkTransactionConfirmed(nonce uint64) bool {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	tx, exists := nm.pendingTxs[nonce]
	if !exists {
		log.Printf("Warning: No pending transaction found for nonce %d", nonce)
		return false
	}

	tx.Status = TxConfirmed
	tx.UpdatedAt = time.Now()

	delete(nm.pendingTxs, nonce)
	return true
}

// MarkTransactionFailed marks a transaction as failed. If it held the lowest
// pending nonce, that nonce is rewound so the next transaction reuses it.
func (nm *NonceManager) MarkTransactionFailed(nonce uint64) {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	tx, exists := nm.pendingTxs[nonce]
	if !exists {
		log.Printf("Warning: No pending transaction found for nonce %d", nonce)
		return
	}

	tx.Status = TxFailed
	tx.UpdatedAt = time.Now()
	log.Printf("Settlement transaction failed for nonce %d: %s", nonce, tx.Hash.Hex())

	// If this was the lowest pending nonce, we can reuse it since the
	// transaction failed and we have no lower nonces pending
	if nonce == nm.lowestPendingNonce() {
		nm.currentNonce = nonce
		log.Printf("Reusing nonce %d after transaction failure", nonce)
	}

	delete(nm.pendingTxs, nonce)
}

// ReleaseNonce returns a reserved nonce that was never broadcast. Without this
// a failed submit would leave a gap and stall every later settlement.
func (nm *NonceManager) ReleaseNonce(nonce uint64) {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	if _, exists := nm.pendingTxs[nonce]; exists {
		return
	}
	if nm.currentNonce == nonce+1 {
		nm.currentNonce = nonce
		log.Printf("Released unused nonce %d", nonce)
	}
}

// FindTimeoutTransactions checks for timed out transactions
func (nm *NonceManager) FindTimeoutTransactions() []uint64 {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	now := time.Now()
	var timedOutNonces []uint64

	for nonce, tx := range nm.pendingTxs {
		if tx.Status == TxPending && now.Sub(tx.CreatedAt) > nm.txTimeout {
			tx.Status = TxTimedOut
			tx.UpdatedAt = now
			log.Printf("Settlement transaction timed out for nonce %d: %s", nonce, tx.Hash.Hex())
			timedOutNonces = append(timedOutNonces, nonce)
		}
	}

	return timedOutNonces
}

// ReuseNonce allows a specific nonce to be reused
func (nm *NonceManager) ReuseNonce(nonce uint64) {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	// Only reuse if it's the lowest pending nonce
	if nonce == nm.lowestPendingNonce() {
		if nm.currentNonce > nonce {
			nm.currentNonce = nonce
			log.Printf("Nonce %d set for reuse", nonce)
		}
	} else {
		log.Printf("Cannot reuse nonce %d - not the lowest pending (%d)", nonce, nm.lowestPendingNonce())
	}

	delete(nm.pendingTxs, nonce)
}

// SyncWithBlockchain synchronizes nonce state with the blockchain
func (nm *NonceManager) SyncWithBlockchain(ctx context.Context, client *ethclient.Client, address common.Address) error {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	// Fetch the current nonce from the blockchain
	nonce, err := client.PendingNonceAt(ctx, address)
	if err != nil {
		return fmt.Errorf("failed to get pending nonce: %v", err)
	}

	log.Printf("Blockchain nonce: %d, our nonce: %d", nonce, nm.currentNonce)

	// Update our nonce if needed
	if nonce > nm.currentNonce {
		log.Printf("Updating nonce: %d -> %d", nm.currentNonce, nonce)
		nm.currentNonce = nonce
	}

	nm.lastSync = time.Now()
	return nil
}

// PendingCount returns the number of pending settlement transactions
func (nm *NonceManager) PendingCount() int {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	return len(nm.pendingTxs)
}

// lowestPendingNonce finds the lowest nonce that is still pending.
// Callers must hold nm.mu.
func (nm *NonceManager) lowestPendingNonce() uint64 {
	var lowestNonce uint64
	foundFirst := false

	for nonce := range nm.pendingTxs {
		if !foundFirst || nonce < lowestNonce {
			lowestNonce = nonce
			foundFirst = true
		}
	}

	return lowestNonce
}
