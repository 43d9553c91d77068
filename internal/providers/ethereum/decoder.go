package ethereum

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

const mintABIJSON = `[{"inputs":[{"name":"to","type":"address"},{"name":"productName","type":"string"},{"name":"artisanName","type":"string"},{"name":"certificateNumber","type":"string"},{"name":"massGrams","type":"uint256"}],"name":"mint","outputs":[{"name":"tokenId","type":"uint256"}],"stateMutability":"nonpayable","type":"function"}]`

var (
	// mintABI is the tokenization contract's mint(address,string,string,string,uint256)
	mintABI = mustParseABI(mintABIJSON)

	// ERC721 Transfer(address indexed from, address indexed to, uint256 indexed tokenId)
	transferEventSignature = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

	// ERC1155 TransferSingle(address indexed operator, address indexed from, address indexed to, uint256 id, uint256 value)
	transferSingleEventSignature = crypto.Keccak256Hash([]byte("TransferSingle(address,address,address,uint256,uint256)"))

	zeroTopic = common.Hash{}
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("invalid ABI: %v", err))
	}
	return parsed
}

// packMint encodes the calldata of a mint call
func packMint(to common.Address, productName, artisanName, certificateNumber string, massGrams uint64) ([]byte, error) {
	return mintABI.Pack("mint", to, productName, artisanName, certificateNumber, new(big.Int).SetUint64(massGrams))
}

var errNotMintCall = errors.New("calldata is not a mint call")

// unpackMint decodes the arguments of mint calldata
func unpackMint(data []byte) (to common.Address, productName, artisanName, certificateNumber string, massGrams *big.Int, err error) {
	method := mintABI.Methods["mint"]
	if len(data) < 4 || !bytes.Equal(data[:4], method.ID) {
		return to, "", "", "", nil, errNotMintCall
	}

	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return to, "", "", "", nil, fmt.Errorf("failed to unpack mint call: %w", err)
	}
	if len(args) != 5 {
		return to, "", "", "", nil, errNotMintCall
	}

	var ok [5]bool
	to, ok[0] = args[0].(common.Address)
	productName, ok[1] = args[1].(string)
	artisanName, ok[2] = args[2].(string)
	certificateNumber, ok[3] = args[3].(string)
	massGrams, ok[4] = args[4].(*big.Int)
	for _, v := range ok {
		if !v {
			return common.Address{}, "", "", "", nil, errNotMintCall
		}
	}
	return to, productName, artisanName, certificateNumber, massGrams, nil
}

// LogDecoder recognizes the mint event of one token standard
type LogDecoder interface {
	// Signature is the topic0 of the event the decoder handles
	Signature() common.Hash
	// DecodeMint returns the token id when the log is a mint emitted by contract
	DecodeMint(log *types.Log, contract common.Address) (*big.Int, bool)
}

// LogDecoderRegistry holds decoders keyed by event signature
type LogDecoderRegistry struct {
	decoders map[common.Hash]LogDecoder
}

// NewLogDecoderRegistry creates a registry with the given decoders
func NewLogDecoderRegistry(decoders ...LogDecoder) *LogDecoderRegistry {
	r := &LogDecoderRegistry{decoders: make(map[common.Hash]LogDecoder, len(decoders))}
	for _, d := range decoders {
		r.decoders[d.Signature()] = d
	}
	return r
}

// DefaultLogDecoderRegistry recognizes ERC721 and ERC1155 mints
func DefaultLogDecoderRegistry() *LogDecoderRegistry {
	return NewLogDecoderRegistry(erc721MintDecoder{}, erc1155MintDecoder{})
}

// FindMintedTokenID scans the logs in order and returns the first decoded token id
func (r *LogDecoderRegistry) FindMintedTokenID(logs []*types.Log, contract common.Address) (*big.Int, bool) {
	for _, log := range logs {
		if log == nil || len(log.Topics) == 0 {
			continue
		}
		d, ok := r.decoders[log.Topics[0]]
		if !ok {
			continue
		}
		if tokenID, ok := d.DecodeMint(log, contract); ok {
			return tokenID, true
		}
	}
	return nil, false
}

type erc721MintDecoder struct{}

func (erc721MintDecoder) Signature() common.Hash {
	return transferEventSignature
}

func (erc721MintDecoder) DecodeMint(log *types.Log, contract common.Address) (*big.Int, bool) {
	// ERC20 transfers share the signature but carry 3 topics
	if len(log.Topics) != 4 || log.Address != contract {
		return nil, false
	}
	if log.Topics[1] != zeroTopic {
		return nil, false
	}
	return new(big.Int).SetBytes(log.Topics[3].Bytes()), true
}

type erc1155MintDecoder struct{}

func (erc1155MintDecoder) Signature() common.Hash {
	return transferSingleEventSignature
}

func (erc1155MintDecoder) DecodeMint(log *types.Log, contract common.Address) (*big.Int, bool) {
	if len(log.Topics) != 4 || log.Address != contract || len(log.Data) < 64 {
		return nil, false
	}
	if log.Topics[2] != zeroTopic {
		return nil, false
	}
	return new(big.Int).SetBytes(log.Data[0:32]), true
}
