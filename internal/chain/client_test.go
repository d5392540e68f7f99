package chain

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/Mohsinsiddi/springbridge/internal/contract"
	"github.com/Mohsinsiddi/springbridge/internal/logger"
	"github.com/Mohsinsiddi/springbridge/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const devKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func offlineClient() *Client {
	return &Client{
		name:     "mainnet",
		chainID:  big.NewInt(1337),
		signers:  make(map[common.Address]TransactSigner),
		timeouts: Timeouts{Confirm: time.Second, Deploy: time.Second},
		logger:   logger.Named("chain"),
	}
}

func TestTransactOptsRequiresSigner(t *testing.T) {
	c := offlineClient()
	_, err := c.transactOpts(context.Background(), common.HexToAddress("0x01"))
	assert.ErrorIs(t, err, ErrNoSigner)
}

func TestTransactOptsUsesRegisteredSigner(t *testing.T) {
	c := offlineClient()
	s, err := wallet.Resolve(wallet.NewInMemoryKeystore(), devKey)
	require.NoError(t, err)

	addr := c.AddSigner(s)
	assert.Equal(t, s.Address(), addr)

	ctx := context.Background()
	opts, err := c.transactOpts(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, addr, opts.From)
	assert.Equal(t, ctx, opts.Context)
	assert.Equal(t, uint64(1337), c.ChainID())
}

func TestDeployRejectsABIOnlyArtifact(t *testing.T) {
	c := offlineClient()
	_, err := c.Deploy(context.Background(), common.Address{}, contract.Mapper())
	assert.ErrorIs(t, err, contract.ErrNoBytecode)
}

func TestTransactUnknownMethod(t *testing.T) {
	c := offlineClient()
	_, err := c.Transact(context.Background(), common.Address{}, common.Address{}, contract.Mapper(), "nope")
	assert.ErrorContains(t, err, `no method "nope"`)

	_, err = c.Call(context.Background(), common.Address{}, contract.Mapper(), "nope")
	assert.ErrorContains(t, err, `no method "nope"`)
}

func TestCallArgumentMismatch(t *testing.T) {
	c := offlineClient()
	_, err := c.Call(context.Background(), common.Address{}, contract.Mapper(), contract.MethodMappedAccount)
	assert.ErrorContains(t, err, "argument count mismatch")
}

func TestWaitForRPCTimesOut(t *testing.T) {
	start := time.Now()
	err := WaitForRPC(context.Background(), "http://127.0.0.1:1", 200*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timed out waiting for RPC")
	assert.Less(t, time.Since(start), 5*time.Second)
}
