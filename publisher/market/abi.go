package market

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// hand-written abi for the proof market contract, kept to the three
// entrypoints the publisher needs
const marketABIJSON = `[
	{
		"name": "submitRequest",
		"type": "function",
		"stateMutability": "payable",
		"inputs": [
			{
				"name": "request",
				"type": "tuple",
				"components": [
					{"name": "id", "type": "uint256"},
					{"name": "requester", "type": "address"},
					{"name": "programId", "type": "bytes32"},
					{"name": "predicateType", "type": "uint8"},
					{"name": "predicateData", "type": "bytes"},
					{"name": "imageUrl", "type": "string"},
					{"name": "inputType", "type": "uint8"},
					{"name": "inputData", "type": "bytes"},
					{"name": "minPrice", "type": "uint256"},
					{"name": "maxPrice", "type": "uint256"},
					{"name": "biddingStart", "type": "uint64"},
					{"name": "rampUpPeriod", "type": "uint32"},
					{"name": "timeout", "type": "uint32"},
					{"name": "lockinStake", "type": "uint256"}
				]
			}
		],
		"outputs": []
	},
	{
		"name": "requestStatus",
		"type": "function",
		"stateMutability": "view",
		"inputs": [{"name": "id", "type": "uint256"}],
		"outputs": [{"name": "status", "type": "uint8"}]
	},
	{
		"name": "getFulfillment",
		"type": "function",
		"stateMutability": "view",
		"inputs": [{"name": "id", "type": "uint256"}],
		"outputs": [
			{"name": "journal", "type": "bytes"},
			{"name": "seal", "type": "bytes"}
		]
	}
]`

var marketABI abi.ABI

func init() {
	parsed, err := abi.JSON(strings.NewReader(marketABIJSON))
	if err != nil {
		panic("market: bad abi: " + err.Error())
	}
	marketABI = parsed
}
