package rest

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vicuna-trace/ledger/internal/api/shared/dto"
	"github.com/vicuna-trace/ledger/internal/api/shared/executor"
)

// Handler defines the interface for REST API handlers
// This interface allows for easy mocking and testing
//
//go:generate mockgen -source=handler.go -destination=../../mocks/api_handler.go -package=mocks -mock_names=Handler=MockAPIHandler
type Handler interface {
	// GetProvenance resolves the certification chain and mint attributes of a product
	// GET /api/v1/products/:id/provenance
	GetProvenance(c *gin.Context)

	// MintProduct mints the provenance token of a product (requires authentication)
	// POST /api/v1/products/:id/mint
	MintProduct(c *gin.Context)

	// RecheckProduct settles a submitted transaction for a product without resubmitting (requires authentication)
	// POST /api/v1/products/:id/recheck
	RecheckProduct(c *gin.Context)

	// ListMintAttempts lists recorded mint attempts
	// GET /api/v1/mint-attempts?product_id=<id>&state=<state1>,<state2>&limit=<limit>
	ListMintAttempts(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	executor executor.Executor
}

// NewHandler creates a new REST API handler using the shared executor
func NewHandler(exec executor.Executor) Handler {
	return &handler{executor: exec}
}

func parseProductID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(c, "Invalid product id")
		return 0, false
	}
	return id, true
}

// GetProvenance resolves the certification chain of a product
func (h *handler) GetProvenance(c *gin.Context) {
	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	resp, err := h.executor.GetProvenance(c.Request.Context(), productID)
	if err != nil {
		respondInternalError(c, err, "Failed to resolve provenance")
		return
	}
	if resp == nil {
		respondNotFound(c, "Product not found")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// MintProduct runs a mint attempt and reports its outcome
func (h *handler) MintProduct(c *gin.Context) {
	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	var req dto.MintRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
			return
		}
	}

	recipient, timeout, err := req.Validate()
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	resp, err := h.executor.MintProduct(c.Request.Context(), productID, recipient, timeout)
	if err != nil {
		respondInternalError(c, err, "Failed to mint product")
		return
	}

	respondOutcome(c, resp)
}

// RecheckProduct settles a previously submitted transaction
func (h *handler) RecheckProduct(c *gin.Context) {
	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	var req dto.RecheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, fmt.Sprintf("Invalid request body: %v", err))
		return
	}

	txHash, err := req.Validate()
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	resp, err := h.executor.RecheckProduct(c.Request.Context(), productID, txHash)
	if err != nil {
		respondInternalError(c, err, "Failed to re-check transaction")
		return
	}

	respondOutcome(c, resp)
}

// ListMintAttempts lists recorded mint attempts
func (h *handler) ListMintAttempts(c *gin.Context) {
	queryParams, err := ParseListMintAttemptsQuery(c)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	if err := queryParams.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	resp, err := h.executor.ListMintAttempts(c.Request.Context(), queryParams.ProductID, queryParams.AttemptStates(), queryParams.Limit)
	if err != nil {
		respondInternalError(c, err, "Failed to list mint attempts")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "vicuna-ledger-api",
	})
}
