package settlement

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/nemointern/darkpool-svc/internal/data"
	"gitlab.com/distributed_lab/logan/v3"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

const settleBatchABI = `[{"inputs":[{"internalType":"uint256","name":"batchId","type":"uint256"},{"internalType":"uint256[]","name":"buyOrderIds","type":"uint256[]"},{"internalType":"uint256[]","name":"sellOrderIds","type":"uint256[]"},{"internalType":"uint256[]","name":"matchedAmounts","type":"uint256[]"},{"internalType":"uint256[]","name":"executionPrices","type":"uint256[]"}],"name":"settleBatch","outputs":[],"stateMutability":"nonpayable","type":"function"}]`

// EVMSettler submits settleBatch transactions to the dark pool contract.
type EVMSettler struct {
	log      *logan.Entry
	contract *bind.BoundContract
	signer   *bind.TransactOpts
	timeout  time.Duration

	// transactions must be serialized so nonces are assigned in order
	mu sync.Mutex
}

func NewEVMSettler(
	log *logan.Entry,
	client *ethclient.Client,
	contractAddress common.Address,
	key *ecdsa.PrivateKey,
	chainID *big.Int,
	timeout time.Duration,
) (*EVMSettler, error) {
	parsed, err := abi.JSON(strings.NewReader(settleBatchABI))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse settlement ABI")
	}

	signer, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create transactor")
	}

	return &EVMSettler{
		log:      log,
		contract: bind.NewBoundContract(contractAddress, parsed, client, client, client),
		signer:   signer,
		timeout:  timeout,
	}, nil
}

func (s *EVMSettler) Settle(ctx context.Context, res data.BatchResult) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buyIDs := make([]*big.Int, 0, len(res.Matches))
	sellIDs := make([]*big.Int, 0, len(res.Matches))
	amounts := make([]*big.Int, 0, len(res.Matches))
	prices := make([]*big.Int, 0, len(res.Matches))
	for _, m := range res.Matches {
		buyIDs = append(buyIDs, big.NewInt(m.BuyOrderID))
		sellIDs = append(sellIDs, big.NewInt(m.SellOrderID))
		amounts = append(amounts, m.MatchedAmount)
		prices = append(prices, m.ExecutionPrice)
	}

	child, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := *s.signer
	opts.Context = child

	tx, err := s.contract.Transact(&opts, "settleBatch",
		big.NewInt(res.BatchID), buyIDs, sellIDs, amounts, prices)
	if err != nil {
		return "", errors.Wrap(err, "failed to submit settleBatch transaction", logan.F{
			"batch_id": res.BatchID,
		})
	}

	s.log.WithFields(logan.F{"batch_id": res.BatchID, "tx": tx.Hash().Hex()}).
		Info("submitted batch settlement")
	return tx.Hash().Hex(), nil
}
