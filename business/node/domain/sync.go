package domain

import "math/big"

// SyncState classifies a node's synchronization.
type SyncState string

const (
	SyncStateSynced  SyncState = "synced"
	SyncStateSyncing SyncState = "syncing"
	SyncStateError   SyncState = "error"
)

// JSON-RPC methods issued against nodes.
const (
	MethodChainID     = "eth_chainId"
	MethodPeerCount   = "net_peerCount"
	MethodGasPrice    = "eth_gasPrice"
	MethodBlockNumber = "eth_blockNumber"
	MethodSyncing     = "eth_syncing"
	MethodListening   = "net_listening"
)

// SyncProgress is the eth_syncing payload of a syncing node.
type SyncProgress struct {
	StartingBlock *big.Int
	CurrentBlock  *big.Int
	HighestBlock  *big.Int
}

// Done reports whether the node has caught up with the highest known block.
func (p *SyncProgress) Done() bool {
	if p == nil {
		return true
	}
	if p.CurrentBlock == nil || p.HighestBlock == nil {
		return false
	}
	return p.CurrentBlock.Cmp(p.HighestBlock) >= 0
}
