package l2state

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/0xFacet/facet-op-succinct/util/stopwaiter"
)

// HeadTracker follows the L1 chain head and serves block hashes at a
// fixed offset behind it, binding proofs to recent L1 state.
type HeadTracker struct {
	stopwaiter.StopWaiter

	client       *ethclient.Client
	pollInterval time.Duration

	mutex  sync.RWMutex
	head   uint64
	hashes *lru.Cache[uint64, common.Hash]
}

func NewHeadTracker(client *ethclient.Client, pollInterval time.Duration, historySize int) (*HeadTracker, error) {
	hashes, err := lru.New[uint64, common.Hash](historySize)
	if err != nil {
		return nil, err
	}
	return &HeadTracker{
		client:       client,
		pollInterval: pollInterval,
		hashes:       hashes,
	}, nil
}

func (t *HeadTracker) Start(ctxIn context.Context) {
	t.StopWaiter.Start(ctxIn, t)
	t.CallIteratively(t.poll)
}

func (t *HeadTracker) poll(ctx context.Context) time.Duration {
	header, err := t.client.HeaderByNumber(ctx, nil)
	if err != nil {
		log.Warn("error polling l1 head", "err", err)
		return t.pollInterval
	}
	num := header.Number.Uint64()
	t.hashes.Add(num, header.Hash())
	if num > 0 {
		t.hashes.Add(num-1, header.ParentHash)
	}
	t.mutex.Lock()
	if num > t.head {
		t.head = num
	}
	t.mutex.Unlock()
	return t.pollInterval
}

// Head returns the highest L1 block number observed so far.
func (t *HeadTracker) Head() uint64 {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.head
}

// ReferenceAt returns the hash of the block offset behind the tracked
// head, fetching it on a cache miss. Returns the zero hash when the
// head is unknown or the lookup fails.
func (t *HeadTracker) ReferenceAt(offset uint64) common.Hash {
	head := t.Head()
	if head < offset {
		return common.Hash{}
	}
	target := head - offset
	if hash, ok := t.hashes.Get(target); ok {
		return hash
	}
	ctx, cancel := context.WithTimeout(t.GetContext(), 5*time.Second)
	defer cancel()
	header, err := t.client.HeaderByNumber(ctx, new(big.Int).SetUint64(target))
	if err != nil {
		log.Warn("error fetching l1 reference block", "number", target, "err", err)
		return common.Hash{}
	}
	t.hashes.Add(target, header.Hash())
	return header.Hash()
}
