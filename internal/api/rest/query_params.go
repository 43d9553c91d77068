package rest

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vicuna-trace/ledger/internal/store/schema"
)

const MAX_PAGE_SIZE = 100

// ListMintAttemptsQueryParams holds query parameters for GET /mint-attempts
type ListMintAttemptsQueryParams struct {
	// Filters
	ProductID *int64   `form:"product_id"`
	States    []string `form:"state"`

	// Pagination
	Limit int `form:"limit,default=20"`
}

// ParseListMintAttemptsQuery parses query parameters for GET /mint-attempts
func ParseListMintAttemptsQuery(c *gin.Context) (*ListMintAttemptsQueryParams, error) {
	var params ListMintAttemptsQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	// Accept both repeated and comma separated values
	var states []string
	for _, s := range params.States {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				states = append(states, part)
			}
		}
	}
	params.States = states

	// Cap limit
	if params.Limit > MAX_PAGE_SIZE {
		params.Limit = MAX_PAGE_SIZE
	}

	return &params, nil
}

// Validate validates the query parameters
func (p *ListMintAttemptsQueryParams) Validate() error {
	if p.Limit < 1 {
		return fmt.Errorf("limit must be at least 1")
	}
	if p.ProductID != nil && *p.ProductID <= 0 {
		return fmt.Errorf("invalid product_id: %d", *p.ProductID)
	}
	for _, s := range p.States {
		if !schema.IsValidMintAttemptState(schema.MintAttemptState(s)) {
			return fmt.Errorf("invalid state: %s", s)
		}
	}
	return nil
}

// AttemptStates returns the requested states
func (p *ListMintAttemptsQueryParams) AttemptStates() []schema.MintAttemptState {
	if len(p.States) == 0 {
		return nil
	}
	states := make([]schema.MintAttemptState, 0, len(p.States))
	for _, s := range p.States {
		states = append(states, schema.MintAttemptState(s))
	}
	return states
}
