package minting

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/vicuna-trace/ledger/internal/domain"
)

// EventFor returns the tokenization event announcing res, nil when the result needs none.
// Successful mints are announced as tokenized; a token that exists on-chain without being
// reflected by this attempt in the store is announced as divergent.
func EventFor(res *Result, network domain.NetworkID, contract common.Address, now time.Time) *domain.TokenizationEvent {
	var eventType domain.TokenizationEventType
	switch {
	case res.Outcome.Succeeded():
		eventType = domain.TokenizationEventTokenized
	case res.Outcome == OutcomeConfirmedButNotPersisted:
		eventType = domain.TokenizationEventDivergent
	case res.Outcome == OutcomeAlreadyTokenized && res.TxHash != "":
		eventType = domain.TokenizationEventDivergent
	default:
		return nil
	}

	event := &domain.TokenizationEvent{
		Type:            eventType,
		AttemptID:       res.AttemptID,
		ProductID:       res.ProductID,
		Network:         network.CAIP2(),
		ContractAddress: contract.Hex(),
		TransactionHash: res.TxHash,
		TokenID:         res.TokenIDString(),
		Timestamp:       now,
	}
	if res.Err != nil {
		event.Reason = res.Err.Error()
	}
	return event
}
