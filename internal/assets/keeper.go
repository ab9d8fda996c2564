// Package assets is the balance ledger of the exchange. Every account holds,
// per token, a free balance it can spend and a locked balance reserved by
// open orders.
package assets

import (
	"errors"
	"fmt"

	"github.com/chainx-org/ChainX-sub003/internal/kv"
	libmath "github.com/chainx-org/ChainX-sub003/libs/math"
	"github.com/chainx-org/ChainX-sub003/types"
)

var (
	ErrInsufficientBalance = errors.New("insufficient free balance")
	ErrInsufficientLocked  = errors.New("insufficient locked balance")
	ErrZeroAmount          = errors.New("amount must be positive")
)

// Balance of one account in one token.
type Balance struct {
	Free   uint64 `json:"free"`
	Locked uint64 `json:"locked"`
}

// Total returns Free + Locked.
func (b Balance) Total() (uint64, error) {
	return libmath.SafeAddUint64(b.Free, b.Locked)
}

// BalanceKey addresses a Balance.
type BalanceKey struct {
	Account types.AccountID
	Token   types.Token
}

func encodeBalanceKey(k BalanceKey) []interface{} {
	return []interface{}{string(k.Account), string(k.Token)}
}

// Keeper reads and writes balances in a store.
type Keeper struct {
	balances    kv.Map[BalanceKey, Balance]
	totalIssued kv.Map[types.Token, uint64]
}

// NewKeeper binds the ledger to store.
func NewKeeper(store kv.Store) *Keeper {
	return &Keeper{
		balances: kv.NewMap[BalanceKey, Balance](store, "assets/balance", encodeBalanceKey),
		totalIssued: kv.NewMap[types.Token, uint64](store, "assets/issued", func(t types.Token) []interface{} {
			return []interface{}{string(t)}
		}),
	}
}

// Balance returns the balance of account in token; a missing entry is zero.
func (k *Keeper) Balance(account types.AccountID, token types.Token) (Balance, error) {
	return k.balances.GetOrDefault(BalanceKey{Account: account, Token: token})
}

// TotalIssued returns the amount of token issued so far.
func (k *Keeper) TotalIssued(token types.Token) (uint64, error) {
	return k.totalIssued.GetOrDefault(token)
}

func (k *Keeper) setBalance(account types.AccountID, token types.Token, b Balance) error {
	key := BalanceKey{Account: account, Token: token}
	if b.Free == 0 && b.Locked == 0 {
		return k.balances.Delete(key)
	}
	return k.balances.Set(key, b)
}

// Issue credits amount of newly created token to account's free balance.
func (k *Keeper) Issue(account types.AccountID, token types.Token, amount uint64) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	total, err := k.totalIssued.GetOrDefault(token)
	if err != nil {
		return err
	}
	if total, err = libmath.SafeAddUint64(total, amount); err != nil {
		return fmt.Errorf("issuing %d %s: %w", amount, token, err)
	}
	b, err := k.Balance(account, token)
	if err != nil {
		return err
	}
	if b.Free, err = libmath.SafeAddUint64(b.Free, amount); err != nil {
		return fmt.Errorf("issuing %d %s: %w", amount, token, err)
	}
	if err := k.totalIssued.Set(token, total); err != nil {
		return err
	}
	return k.setBalance(account, token, b)
}

// Lock moves amount from account's free to its locked balance.
func (k *Keeper) Lock(account types.AccountID, token types.Token, amount uint64) error {
	b, err := k.Balance(account, token)
	if err != nil {
		return err
	}
	if b.Free < amount {
		return fmt.Errorf("%w: %s has %d %s, locking %d", ErrInsufficientBalance, account, b.Free, token, amount)
	}
	b.Free -= amount
	if b.Locked, err = libmath.SafeAddUint64(b.Locked, amount); err != nil {
		return err
	}
	return k.setBalance(account, token, b)
}

// Unlock moves amount from account's locked back to its free balance.
func (k *Keeper) Unlock(account types.AccountID, token types.Token, amount uint64) error {
	b, err := k.Balance(account, token)
	if err != nil {
		return err
	}
	if b.Locked < amount {
		return fmt.Errorf("%w: %s has %d %s locked, unlocking %d", ErrInsufficientLocked, account, b.Locked, token, amount)
	}
	b.Locked -= amount
	if b.Free, err = libmath.SafeAddUint64(b.Free, amount); err != nil {
		return err
	}
	return k.setBalance(account, token, b)
}

// MoveLocked moves amount from the locked balance of from to the free
// balance of to.
func (k *Keeper) MoveLocked(from, to types.AccountID, token types.Token, amount uint64) error {
	src, err := k.Balance(from, token)
	if err != nil {
		return err
	}
	if src.Locked < amount {
		return fmt.Errorf("%w: %s has %d %s locked, moving %d", ErrInsufficientLocked, from, src.Locked, token, amount)
	}
	src.Locked -= amount
	if err := k.setBalance(from, token, src); err != nil {
		return err
	}

	dst, err := k.Balance(to, token)
	if err != nil {
		return err
	}
	if dst.Free, err = libmath.SafeAddUint64(dst.Free, amount); err != nil {
		return err
	}
	return k.setBalance(to, token, dst)
}

// Move transfers amount between free balances.
func (k *Keeper) Move(from, to types.AccountID, token types.Token, amount uint64) error {
	src, err := k.Balance(from, token)
	if err != nil {
		return err
	}
	if src.Free < amount {
		return fmt.Errorf("%w: %s has %d %s, moving %d", ErrInsufficientBalance, from, src.Free, token, amount)
	}
	src.Free -= amount
	if err := k.setBalance(from, token, src); err != nil {
		return err
	}

	dst, err := k.Balance(to, token)
	if err != nil {
		return err
	}
	if dst.Free, err = libmath.SafeAddUint64(dst.Free, amount); err != nil {
		return err
	}
	return k.setBalance(to, token, dst)
}
