package chain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainx-org/ChainX-sub003/config"
)

func TestLoadGenesisFromTestRoot(t *testing.T) {
	cfg, err := config.ResetTestRoot(t.TempDir(), t.Name())
	require.NoError(t, err)

	g, err := LoadGenesis(cfg.GenesisFile())
	require.NoError(t, err)
	require.Len(t, g.Pairs, 1)
	assert.Equal(t, btcUSDT, g.Pairs[0].Pair)
	assert.True(t, g.Pairs[0].Online)
	require.Len(t, g.Balances, 2)
	assert.EqualValues(t, "alice", g.Balances[0].Account)
	assert.EqualValues(t, 1_000_000, g.Balances[0].Amount)
	assert.Equal(t, DefaultFeeAccount, g.feeAccount())
}

func TestGenesisValidateBasic(t *testing.T) {
	testCases := map[string]struct {
		modify  func(*Genesis)
		wantErr bool
	}{
		"valid":          {modify: func(*Genesis) {}},
		"no pairs":       {modify: func(g *Genesis) { g.Pairs = nil }, wantErr: true},
		"duplicate pair": {modify: func(g *Genesis) { g.Pairs = append(g.Pairs, g.Pairs[0]) }, wantErr: true},
		"bad pair":       {modify: func(g *Genesis) { g.Pairs[0].Pair.Quote = "BTC" }, wantErr: true},
		"no account":     {modify: func(g *Genesis) { g.Balances[0].Account = "" }, wantErr: true},
		"no token":       {modify: func(g *Genesis) { g.Balances[0].Token = "" }, wantErr: true},
		"zero amount":    {modify: func(g *Genesis) { g.Balances[0].Amount = 0 }, wantErr: true},
	}

	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			g := testGenesis()
			tc.modify(g)
			if tc.wantErr {
				assert.Error(t, g.ValidateBasic())
			} else {
				assert.NoError(t, g.ValidateBasic())
			}
		})
	}
}

func TestLoadScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocks.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[blocks]]
[[blocks.txs]]
type = "put_order"
account = "bob"
pair = "BTC/USDT"
side = "sell"
amount = 10
price = 100

[[blocks.txs]]
type = "set_match_fee"
fee = 7

[[blocks]]

[[blocks]]
[[blocks.txs]]
type = "cancel_order"
account = "bob"
pair = "BTC/USDT"
index = 0
`), 0644))

	s, err := LoadScript(path)
	require.NoError(t, err)
	require.Len(t, s.Blocks, 3)
	assert.Equal(t, []Tx{
		putOrder("bob", "sell", 10, 100),
		{Type: TxSetMatchFee, Fee: 7},
	}, s.Blocks[0].Txs)
	assert.Empty(t, s.Blocks[1].Txs)
	assert.Equal(t, []Tx{cancelOrder("bob", 0)}, s.Blocks[2].Txs)
}
