// Package domain contains the core domain types for the node health context.
package domain

import (
	"math/big"
	"sort"
	"strconv"

	"github.com/fd1az/nodepulse/internal/apperror"
)

// ChainEndpoint describes a known chain and its public fallback RPC endpoint.
type ChainEndpoint struct {
	ChainID        uint64
	Name           string
	FallbackRPCURL string
	Testnet        bool
}

// ChainRegistry is an immutable lookup table of known chains.
type ChainRegistry struct {
	chains map[uint64]ChainEndpoint
}

// NewChainRegistry builds a registry. Later entries replace earlier ones with the same id.
func NewChainRegistry(endpoints ...ChainEndpoint) *ChainRegistry {
	chains := make(map[uint64]ChainEndpoint, len(endpoints))
	for _, ep := range endpoints {
		chains[ep.ChainID] = ep
	}
	return &ChainRegistry{chains: chains}
}

// DefaultChains returns the well-known chains.
func DefaultChains() []ChainEndpoint {
	return []ChainEndpoint{
		{ChainID: 1, Name: "Ethereum", FallbackRPCURL: "https://eth.llamarpc.com"},
		{ChainID: 100, Name: "Gnosis", FallbackRPCURL: "https://rpc.gnosischain.com"},
		{ChainID: 10200, Name: "Chiado", FallbackRPCURL: "https://rpc.chiadochain.net", Testnet: true},
		{ChainID: 17000, Name: "Holesky", FallbackRPCURL: "https://ethereum-holesky-rpc.publicnode.com", Testnet: true},
		{ChainID: 167000, Name: "Taiko Alethia", FallbackRPCURL: "https://rpc.taiko.xyz"},
	}
}

// DefaultChainRegistry returns a registry with the well-known chains plus overrides.
func DefaultChainRegistry(overrides ...ChainEndpoint) *ChainRegistry {
	return NewChainRegistry(append(DefaultChains(), overrides...)...)
}

// Lookup returns the endpoint registered for chainID.
func (r *ChainRegistry) Lookup(chainID *big.Int) (ChainEndpoint, bool) {
	if chainID == nil || !chainID.IsUint64() {
		return ChainEndpoint{}, false
	}
	ep, ok := r.chains[chainID.Uint64()]
	return ep, ok
}

// LookupErr is Lookup returning a CHAIN_NOT_FOUND error for unknown ids.
func (r *ChainRegistry) LookupErr(chainID *big.Int) (ChainEndpoint, error) {
	ep, ok := r.Lookup(chainID)
	if !ok {
		id := "<nil>"
		if chainID != nil {
			id = chainID.String()
		}
		return ChainEndpoint{}, apperror.New(apperror.CodeChainNotFound, apperror.WithContext("chain id "+id))
	}
	return ep, nil
}

// All returns every registered endpoint ordered by chain id.
func (r *ChainRegistry) All() []ChainEndpoint {
	out := make([]ChainEndpoint, 0, len(r.chains))
	for _, ep := range r.chains {
		out = append(out, ep)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChainID < out[j].ChainID })
	return out
}

// String returns "Name (id)".
func (c ChainEndpoint) String() string {
	return c.Name + " (" + strconv.FormatUint(c.ChainID, 10) + ")"
}
