package config

import (
	"crypto/ecdsa"
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"gitlab.com/distributed_lab/figure/v3"
	"gitlab.com/distributed_lab/kit/kv"
	"gitlab.com/distributed_lab/logan/v3/errors"
)

type Ledger struct {
	Client          *ethclient.Client
	ContractAddress common.Address
	Key             *ecdsa.PrivateKey
	ChainID         *big.Int
	RequestTimeout  time.Duration
}

const defaultRequestTimeout = 10 * time.Second
const maxChainID int64 = math.MaxUint64/2 - 36

func (c *config) Ledger() Ledger {
	return c.ledgerOnce.Do(func() interface{} {
		var cfg struct {
			RPC            string         `fig:"rpc,required"`
			Contract       common.Address `fig:"contract,required"`
			ChainID        int64          `fig:"chain_id,required"`
			SignerKey      string         `fig:"signer_key,required"`
			RequestTimeout time.Duration  `fig:"request_timeout"`
		}

		err := figure.Out(&cfg).
			With(figure.EthereumHooks).
			From(kv.MustGetStringMap(c.getter, "ledger")).
			Please()
		if err != nil {
			panic(errors.Wrap(err, "failed to figure out ledger"))
		}

		if cfg.ChainID > maxChainID || cfg.ChainID <= 0 {
			panic("chain_id value out of range due to EIP 2294")
		}
		cli, err := ethclient.Dial(cfg.RPC)
		if err != nil {
			panic(errors.Wrap(err, "failed to connect to RPC provider"))
		}
		key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.SignerKey, "0x"))
		if err != nil {
			panic(errors.Wrap(err, "failed to parse settlement signer key"))
		}

		if cfg.RequestTimeout == 0 {
			cfg.RequestTimeout = defaultRequestTimeout
		}

		return Ledger{
			Client:          cli,
			ContractAddress: cfg.Contract,
			Key:             key,
			ChainID:         big.NewInt(cfg.ChainID),
			RequestTimeout:  cfg.RequestTimeout,
		}
	}).(Ledger)
}
