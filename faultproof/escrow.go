package faultproof

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// TransferFunc is the host's value transfer primitive, used only inside
// credit claims. A nil error means the value reached the recipient.
type TransferFunc func(recipient common.Address, amount *big.Int) error

// escrowLedger tracks bond value owed to participants. It carries its own
// lock, separate from the engine's, because withdrawals run the external
// transfer outside any lock: a reentrant claim attempted from within a
// transfer must observe the already-zeroed balance rather than deadlock.
type escrowLedger struct {
	mutex   sync.Mutex
	credits map[common.Address]*big.Int
}

func newEscrowLedger() *escrowLedger {
	return &escrowLedger{credits: make(map[common.Address]*big.Int)}
}

// credit adds amount to the recipient's balance. Credits accumulate.
func (l *escrowLedger) credit(recipient common.Address, amount *big.Int) {
	if amount == nil || amount.Sign() == 0 {
		return
	}
	l.mutex.Lock()
	defer l.mutex.Unlock()
	cur, ok := l.credits[recipient]
	if !ok {
		cur = new(big.Int)
		l.credits[recipient] = cur
	}
	cur.Add(cur, amount)
}

// balance returns a copy of the recipient's owed value.
func (l *escrowLedger) balance(recipient common.Address) *big.Int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	cur, ok := l.credits[recipient]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(cur)
}

// withdraw zeroes the recipient's balance, then runs the transfer. If the
// transfer fails the withdrawn amount is credited back, so a failed payout
// never burns value. Credits that arrived while the transfer was in flight
// are preserved.
func (l *escrowLedger) withdraw(recipient common.Address, transfer TransferFunc) (*big.Int, error) {
	l.mutex.Lock()
	bal, ok := l.credits[recipient]
	if !ok || bal.Sign() == 0 {
		l.mutex.Unlock()
		return nil, ErrNoCredit
	}
	delete(l.credits, recipient)
	l.mutex.Unlock()

	if err := transfer(recipient, new(big.Int).Set(bal)); err != nil {
		l.credit(recipient, bal)
		return nil, errors.Wrapf(ErrTransferFailed, "recipient %v amount %v: %v", recipient, bal, err)
	}
	return bal, nil
}
