// Package commitment builds and verifies the hash binding an order's hidden
// parameters. The packing must stay byte-for-byte identical to the on-ledger
// verifier: 32-byte big-endian amount, 32-byte big-endian price, 32-byte
// keccak256 of the raw salt bytes, 1-byte side (0 = BUY, 1 = SELL), hashed
// with keccak256.
package commitment

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/nemointern/darkpool-svc/internal/data"
)

const packedLen = 32 + 32 + 32 + 1

func Commit(amount, price *big.Int, salt string, side data.OrderSide) common.Hash {
	if amount == nil {
		amount = new(big.Int)
	}
	if price == nil {
		price = new(big.Int)
	}

	buf := make([]byte, 0, packedLen)
	buf = append(buf, common.LeftPadBytes(amount.Bytes(), 32)...)
	buf = append(buf, common.LeftPadBytes(price.Bytes(), 32)...)
	buf = append(buf, crypto.Keccak256([]byte(salt))...)
	buf = append(buf, byte(side))

	return crypto.Keccak256Hash(buf)
}

func Verify(hash common.Hash, amount, price *big.Int, salt string, side data.OrderSide) bool {
	return Commit(amount, price, salt, side) == hash
}
