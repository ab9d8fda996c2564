package types

// AccountID identifies an account on the exchange.
type AccountID string

func (a AccountID) String() string { return string(a) }

// Token identifies an asset held in the assets ledger.
type Token string

func (t Token) String() string { return string(t) }
