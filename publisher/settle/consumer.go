package settle

import (
	"bytes"
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/proofgrid/publisher-api/publisher/model"

	"golang.org/x/xerrors"
)

// Consumer is the capability surface of a settling contract: one
// state-mutating call carrying the proof artifact, one pure read of
// the resulting state, and the postcondition tying them together.
// Implemented per contract shape and selected at configuration time.
type Consumer interface {
	Settle(opts *bind.TransactOpts, artifact model.ProofArtifact) (*types.Transaction, error)
	ReadState(ctx context.Context, addr common.Address) ([]byte, error)
	// Verify checks that the state after settlement reflects the
	// artifact, given the state read before broadcast
	Verify(before, after []byte, artifact model.ProofArtifact) error
}

const evenNumberABIJSON = `[
	{
		"name": "set",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "x", "type": "uint256"},
			{"name": "seal", "type": "bytes"}
		],
		"outputs": []
	},
	{
		"name": "get",
		"type": "function",
		"stateMutability": "view",
		"inputs": [],
		"outputs": [{"name": "", "type": "uint256"}]
	}
]`

const counterABIJSON = `[
	{
		"name": "increment",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "seal", "type": "bytes"},
			{"name": "programId", "type": "bytes32"},
			{"name": "journalDigest", "type": "bytes32"}
		],
		"outputs": []
	},
	{
		"name": "getCount",
		"type": "function",
		"stateMutability": "view",
		"inputs": [{"name": "who", "type": "address"}],
		"outputs": [{"name": "", "type": "uint256"}]
	}
]`

func mustParseABI(src string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(src))
	if err != nil {
		panic("settle: bad abi: " + err.Error())
	}
	return parsed
}

var (
	evenNumberABI = mustParseABI(evenNumberABIJSON)
	counterABI    = mustParseABI(counterABIJSON)
)

// EvenNumber settles by storing the journal value itself,
// set(value, seal) / get()
type EvenNumber struct {
	contract *bind.BoundContract
}

var _ Consumer = (*EvenNumber)(nil)

func NewEvenNumber(addr common.Address, backend bind.ContractBackend) *EvenNumber {
	return &EvenNumber{
		contract: bind.NewBoundContract(addr, evenNumberABI, backend, backend, backend),
	}
}

func (e *EvenNumber) Settle(opts *bind.TransactOpts, artifact model.ProofArtifact) (*types.Transaction, error) {
	// the journal is one abi-encoded uint256 word
	value := new(big.Int).SetBytes(artifact.Journal)
	return e.contract.Transact(opts, "set", value, artifact.Seal)
}

func (e *EvenNumber) ReadState(ctx context.Context, _ common.Address) ([]byte, error) {
	var out []interface{}
	err := e.contract.Call(&bind.CallOpts{Context: ctx}, &out, "get")
	if err != nil {
		return nil, err
	}
	return common.LeftPadBytes(out[0].(*big.Int).Bytes(), 32), nil
}

func (e *EvenNumber) Verify(_, after []byte, artifact model.ProofArtifact) error {
	want := common.LeftPadBytes(new(big.Int).SetBytes(artifact.Journal).Bytes(), 32)
	if !bytes.Equal(after, want) {
		return xerrors.Errorf("stored value %x does not match journal value %x", after, want)
	}
	return nil
}

// Counter settles by bumping a per-caller counter,
// increment(seal, programId, journalDigest) / getCount(addr)
type Counter struct {
	contract *bind.BoundContract
}

var _ Consumer = (*Counter)(nil)

func NewCounter(addr common.Address, backend bind.ContractBackend) *Counter {
	return &Counter{
		contract: bind.NewBoundContract(addr, counterABI, backend, backend, backend),
	}
}

func (c *Counter) Settle(opts *bind.TransactOpts, artifact model.ProofArtifact) (*types.Transaction, error) {
	return c.contract.Transact(opts, "increment", artifact.Seal, artifact.ProgramID, artifact.JournalDigest)
}

func (c *Counter) ReadState(ctx context.Context, addr common.Address) ([]byte, error) {
	var out []interface{}
	err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, "getCount", addr)
	if err != nil {
		return nil, err
	}
	return common.LeftPadBytes(out[0].(*big.Int).Bytes(), 32), nil
}

func (c *Counter) Verify(before, after []byte, _ model.ProofArtifact) error {
	want := new(big.Int).Add(new(big.Int).SetBytes(before), big.NewInt(1))
	got := new(big.Int).SetBytes(after)
	if got.Cmp(want) != 0 {
		return xerrors.Errorf("count %s, want %s", got, want)
	}
	return nil
}
