package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/foresight-hq/foresight-settler/pkg/config"
	"github.com/foresight-hq/foresight-settler/pkg/contracts"
	"github.com/foresight-hq/foresight-settler/pkg/logger"
	"github.com/foresight-hq/foresight-settler/pkg/metrics"
	"github.com/foresight-hq/foresight-settler/pkg/models"
)

const (
	// callTimeout bounds every read against the intent book
	callTimeout = 10 * time.Second

	// txWaitTimeout bounds the wait for a settlement transaction receipt.
	// A transaction that misses the window stays tracked as pending and is
	// picked up by the recovery pass.
	txWaitTimeout = 10 * time.Second
)

// ErrIntentNotFound is returned when the intent book has no record for an intent ID
var ErrIntentNotFound = errors.New("intent not found")

// Client talks to the intent book contract on the settlement chain. It owns
// the RPC connection, the signing key and the nonce state for the solver
// account.
type Client struct {
	chainID      int
	client       *ethclient.Client
	contract     *contracts.IntentBook
	auth         *bind.TransactOpts
	solver       common.Address
	nonceManager *NonceManager
	logger       logger.Logger
}

// NewClient connects to the settlement chain and binds the intent book contract
func NewClient(chainConfig config.ChainConfig, privateKey string, solverAddress string, log logger.Logger) (*Client, error) {
	client, err := ethclient.Dial(chainConfig.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to client: %v", err)
	}

	auth, err := createAuthenticator(client, privateKey)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to create authenticator: %v", err)
	}

	contract, err := contracts.NewIntentBook(common.HexToAddress(chainConfig.IntentBookAddress), client)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize contract: %v", err)
	}

	// The solver identity defaults to the signing key's address
	solver := common.HexToAddress(solverAddress)
	if solver == (common.Address{}) {
		solver = auth.From
	}

	log.InfoWithComp(logger.Ledger, "Connected to chain %d (%s), intent book %s, solver %s",
		chainConfig.ChainID, config.GetChainName(chainConfig.ChainID), chainConfig.IntentBookAddress, solver.Hex())

	return &Client{
		chainID:      chainConfig.ChainID,
		client:       client,
		contract:     contract,
		auth:         auth,
		solver:       solver,
		nonceManager: NewNonceManager(),
		logger:       log,
	}, nil
}

// createAuthenticator builds the transaction signer for the solver key
func createAuthenticator(client *ethclient.Client, privateKeyHex string) (*bind.TransactOpts, error) {
	// Parse private key
	privateKey, err := crypto.HexToECDSA(privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %v", err)
	}

	// Get chain ID
	chainID, err := client.ChainID(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %v", err)
	}

	// Create transaction signer
	auth, err := bind.NewKeyedTransactorWithChainID(privateKey, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %v", err)
	}

	return auth, nil
}

// Solver returns the solver address this client polls and settles for
func (c *Client) Solver() common.Address {
	return c.solver
}

// ChainID returns the settlement chain ID
func (c *Client) ChainID() int {
	return c.chainID
}

// PendingTransactions returns the number of in-flight settlement transactions
func (c *Client) PendingTransactions() int {
	return c.nonceManager.PendingCount()
}

// PendingIntentIDs returns the intent IDs the book currently holds open for this solver
func (c *Client) PendingIntentIDs(ctx context.Context) ([]string, error) {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	ids, err := c.contract.PendingIntents(&bind.CallOpts{Context: callCtx}, c.solver)
	if err != nil {
		metrics.LedgerErrors.WithLabelValues("pending_intents").Inc()
		return nil, fmt.Errorf("failed to fetch pending intents: %v", err)
	}

	intentIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		intentIDs = append(intentIDs, common.Hash(id).Hex())
	}
	return intentIDs, nil
}

// GetIntent fetches a single intent record from the book. Returns
// ErrIntentNotFound when the book has no record for the ID, which happens
// when the intent was settled or cancelled between the listing and this read.
func (c *Client) GetIntent(ctx context.Context, intentID string) (*models.Intent, error) {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	raw, err := c.contract.GetIntent(&bind.CallOpts{Context: callCtx}, common.HexToHash(intentID))
	if err != nil {
		metrics.LedgerErrors.WithLabelValues("get_intent").Inc()
		return nil, fmt.Errorf("failed to fetch intent %s: %v", intentID, err)
	}
	if !raw.Exists {
		return nil, ErrIntentNotFound
	}

	intent := &models.Intent{
		ID:          common.HexToHash(intentID).Hex(),
		User:        raw.User.Hex(),
		MarketID:    common.Hash(raw.MarketId).Hex(),
		ConditionID: common.Hash(raw.ConditionId).Hex(),
		Kind:        models.IntentKind(raw.Kind),
		Outcome:     raw.Outcome,
		Amount:      raw.Amount.String(),
		MaxPrice:    raw.MaxPrice,
		MinPrice:    raw.MinPrice,
		Style:       models.OrderStyle(raw.OrderStyle),
	}
	if raw.Deadline > 0 {
		intent.Deadline = time.Unix(int64(raw.Deadline), 0)
	}
	return intent, nil
}

// IsSolverRegistered reports whether the solver account is registered with the intent book
func (c *Client) IsSolverRegistered(ctx context.Context) (bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	registered, err := c.contract.IsSolverRegistered(&bind.CallOpts{Context: callCtx}, c.solver)
	if err != nil {
		metrics.LedgerErrors.WithLabelValues("solver_registered").Inc()
		return false, fmt.Errorf("failed to check solver registration: %v", err)
	}
	return registered, nil
}

// NotifyCompletion reports the outcome of an intent back to the book via a
// settleIntent transaction and waits for the receipt.
func (c *Client) NotifyCompletion(ctx context.Context, completion models.Completion) error {
	intentID := common.HexToHash(completion.IntentID)

	outputAmount := big.NewInt(0)
	if completion.OutputAmount != "" {
		var ok bool
		outputAmount, ok = new(big.Int).SetString(completion.OutputAmount, 10)
		if !ok {
			return fmt.Errorf("invalid output amount for intent %s: %s", completion.IntentID, completion.OutputAmount)
		}
	}

	feeAmount := big.NewInt(0)
	if completion.FeeAmount != "" {
		var ok bool
		feeAmount, ok = new(big.Int).SetString(completion.FeeAmount, 10)
		if !ok {
			return fmt.Errorf("invalid fee amount for intent %s: %s", completion.IntentID, completion.FeeAmount)
		}
	}

	// Reserve a nonce for the settlement transaction
	nonce, err := c.nonceManager.GetNonce(ctx, c.client, c.auth.From)
	if err != nil {
		metrics.LedgerErrors.WithLabelValues("settle").Inc()
		return fmt.Errorf("failed to get nonce: %v", err)
	}

	txOpts := *c.auth
	txOpts.Nonce = big.NewInt(int64(nonce))
	txOpts.Context = ctx

	tx, err := c.contract.SettleIntent(&txOpts, intentID, completion.Success, outputAmount, feeAmount, completion.Details)
	if err != nil {
		// The transaction never reached the mempool, hand the nonce back
		c.nonceManager.ReleaseNonce(nonce)
		metrics.LedgerErrors.WithLabelValues("settle").Inc()
		return fmt.Errorf("failed to submit settlement for intent %s: %v", completion.IntentID, err)
	}

	c.nonceManager.TrackTransaction(tx.Hash(), nonce)

	c.logger.InfoWithComp(logger.Ledger, "Settlement transaction sent for intent %s: %s (nonce: %d)",
		completion.IntentID, tx.Hash().Hex(), nonce)

	// Wait for the transaction to be mined
	waitCtx, cancel := context.WithTimeout(ctx, txWaitTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, c.client, tx)
	if err != nil {
		// The transaction may still mine, leave it tracked for the recovery pass
		metrics.LedgerErrors.WithLabelValues("settle").Inc()
		return fmt.Errorf("failed to wait for settlement of intent %s: %v", completion.IntentID, err)
	}

	if receipt.Status == 0 {
		c.nonceManager.MarkTransactionFailed(nonce)
		metrics.LedgerErrors.WithLabelValues("settle").Inc()
		return fmt.Errorf("settlement transaction reverted for intent %s: %s", completion.IntentID, tx.Hash().Hex())
	}

	c.nonceManager.MarkTransactionConfirmed(nonce)
	c.logger.InfoWithComp(logger.Ledger, "Settlement confirmed for intent %s in block %d (success: %t)",
		completion.IntentID, receipt.BlockNumber.Uint64(), completion.Success)

	return nil
}

// ChainHead returns the latest block number and updates the chain head gauge
func (c *Client) ChainHead(ctx context.Context) (uint64, error) {
	callCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	head, err := c.client.BlockNumber(callCtx)
	if err != nil {
		metrics.LedgerErrors.WithLabelValues("chain_head").Inc()
		return 0, fmt.Errorf("failed to get block number: %v", err)
	}

	metrics.ChainHead.Set(float64(head))
	return head, nil
}

// RecoverStuckTransactions syncs nonce state with the chain and releases
// nonces held by transactions that never confirmed
func (c *Client) RecoverStuckTransactions(ctx context.Context) {
	syncCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	// First sync nonce state with the blockchain
	if err := c.nonceManager.SyncWithBlockchain(syncCtx, c.client, c.auth.From); err != nil {
		c.logger.ErrorWithComp(logger.Ledger, "Failed to sync nonce state during recovery: %v", err)
		return
	}

	// Find timed out transactions
	timedOutNonces := c.nonceManager.FindTimeoutTransactions()
	if len(timedOutNonces) == 0 {
		return
	}

	c.logger.NoticeWithComp(logger.Ledger, "Found %d timed out settlement transactions", len(timedOutNonces))

	for _, nonce := range timedOutNonces {
		c.nonceManager.ReuseNonce(nonce)
	}

	// After recovery, sync nonce state again
	resyncCtx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	if err := c.nonceManager.SyncWithBlockchain(resyncCtx, c.client, c.auth.From); err != nil {
		c.logger.ErrorWithComp(logger.Ledger, "Failed to re-sync nonce state after recovery: %v", err)
	}
}

// Close tears down the RPC connection
func (c *Client) Close() {
	c.client.Close()
}
