package l2state

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/ethclient/gethclient"
	"github.com/ethereum/go-ethereum/rpc"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

// EthProvider computes output roots from a live L2 node over RPC.
// Computed roots are immutable for a finalized chain, so they are cached.
type EthProvider struct {
	client *ethclient.Client
	geth   *gethclient.Client
	roots  *lru.Cache[uint64, common.Hash]
}

func NewEthProvider(rpcClient *rpc.Client, cacheSize int) (*EthProvider, error) {
	roots, err := lru.New[uint64, common.Hash](cacheSize)
	if err != nil {
		return nil, err
	}
	return &EthProvider{
		client: ethclient.NewClient(rpcClient),
		geth:   gethclient.New(rpcClient),
		roots:  roots,
	}, nil
}

func DialEthProvider(ctx context.Context, url string, cacheSize int) (*EthProvider, error) {
	rpcClient, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing l2 rpc %s", url)
	}
	return NewEthProvider(rpcClient, cacheSize)
}

func (p *EthProvider) OutputRootAt(ctx context.Context, l2BlockNumber uint64) (common.Hash, error) {
	if root, ok := p.roots.Get(l2BlockNumber); ok {
		return root, nil
	}
	num := new(big.Int).SetUint64(l2BlockNumber)
	header, err := p.client.HeaderByNumber(ctx, num)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			latest, latestErr := p.client.BlockNumber(ctx)
			if latestErr != nil {
				return common.Hash{}, errors.Wrap(latestErr, "getting latest l2 height")
			}
			if l2BlockNumber > latest {
				return common.Hash{}, errors.Wrapf(ErrFutureBlock, "height %d, tip %d", l2BlockNumber, latest)
			}
			// A missing block below the tip means the node pruned or
			// never had it, not that the claim is early.
			return common.Hash{}, errors.Errorf("l2 block %d not found below tip %d", l2BlockNumber, latest)
		}
		return common.Hash{}, errors.Wrapf(err, "getting l2 header %d", l2BlockNumber)
	}
	proof, err := p.geth.GetProof(ctx, MessagePasserAddress, nil, num)
	if err != nil {
		return common.Hash{}, errors.Wrapf(err, "getting message passer storage root at %d", l2BlockNumber)
	}
	root := ComputeOutputRoot(header.Root, proof.StorageHash, header.Hash())
	p.roots.Add(l2BlockNumber, root)
	return root, nil
}

func (p *EthProvider) LatestHeight(ctx context.Context) (uint64, error) {
	return p.client.BlockNumber(ctx)
}

func (p *EthProvider) FinalizedHeight(ctx context.Context) (uint64, error) {
	header, err := p.client.HeaderByNumber(ctx, big.NewInt(rpc.FinalizedBlockNumber.Int64()))
	if err != nil {
		return 0, errors.Wrap(err, "getting finalized l2 header")
	}
	return header.Number.Uint64(), nil
}
