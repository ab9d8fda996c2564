package chain

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/chainx-org/ChainX-sub003/types"
)

// DefaultFeeAccount receives trading fees when the genesis names none.
const DefaultFeeAccount types.AccountID = "fee"

// Genesis is the state the chain starts from.
type Genesis struct {
	MatchFee   uint64           `toml:"match-fee"`
	FeeAccount types.AccountID  `toml:"fee-account"`
	Pairs      []GenesisPair    `toml:"pairs"`
	Balances   []GenesisBalance `toml:"balances"`
}

type GenesisPair struct {
	Pair      types.Pair `toml:"pair"`
	Precision uint32     `toml:"precision"`
	Online    bool       `toml:"online"`
}

type GenesisBalance struct {
	Account types.AccountID `toml:"account"`
	Token   types.Token     `toml:"token"`
	Amount  uint64          `toml:"amount"`
}

// LoadGenesis reads a genesis TOML file.
func LoadGenesis(path string) (*Genesis, error) {
	var g Genesis
	if _, err := toml.DecodeFile(path, &g); err != nil {
		return nil, fmt.Errorf("reading genesis %s: %w", path, err)
	}
	if err := g.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("invalid genesis %s: %w", path, err)
	}
	return &g, nil
}

// ValidateBasic performs stateless validation of the genesis.
func (g *Genesis) ValidateBasic() error {
	seen := make(map[types.Pair]bool, len(g.Pairs))
	for i, p := range g.Pairs {
		if err := p.Pair.ValidateBasic(); err != nil {
			return fmt.Errorf("pairs[%d]: %w", i, err)
		}
		if seen[p.Pair] {
			return fmt.Errorf("pairs[%d]: duplicate pair %s", i, p.Pair)
		}
		seen[p.Pair] = true
	}
	for i, b := range g.Balances {
		switch {
		case b.Account == "":
			return fmt.Errorf("balances[%d]: empty account", i)
		case b.Token == "":
			return fmt.Errorf("balances[%d]: empty token", i)
		case b.Amount == 0:
			return fmt.Errorf("balances[%d]: zero amount", i)
		}
	}
	if len(g.Pairs) == 0 {
		return errors.New("no pairs")
	}
	return nil
}

func (g *Genesis) feeAccount() types.AccountID {
	if g.FeeAccount == "" {
		return DefaultFeeAccount
	}
	return g.FeeAccount
}
