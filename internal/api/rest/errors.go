package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vicuna-trace/ledger/internal/api/shared/dto"
	apierrors "github.com/vicuna-trace/ledger/internal/api/shared/errors"
	"github.com/vicuna-trace/ledger/internal/logger"
	"github.com/vicuna-trace/ledger/internal/minting"
)

// outcomeStatus maps each mint outcome to its HTTP status and error code.
// Successful outcomes carry no error code.
var outcomeStatus = map[minting.Outcome]struct {
	status int
	code   apierrors.ErrorCode
}{
	minting.OutcomeDone:                     {http.StatusOK, ""},
	minting.OutcomeDoneWithoutTokenID:       {http.StatusOK, ""},
	minting.OutcomeConfirmationTimedOut:     {http.StatusAccepted, apierrors.ErrCodeConfirmationTimedOut},
	minting.OutcomeConfirmedButNotPersisted: {http.StatusAccepted, apierrors.ErrCodeConfirmedNotPersisted},
	minting.OutcomeAlreadyTokenized:         {http.StatusConflict, apierrors.ErrCodeAlreadyTokenized},
	minting.OutcomeValidationFailed:         {http.StatusUnprocessableEntity, apierrors.ErrCodeValidationFailed},
	minting.OutcomeUserRejected:             {http.StatusForbidden, apierrors.ErrCodeUserRejected},
	minting.OutcomeWalletUnavailable:        {http.StatusServiceUnavailable, apierrors.ErrCodeWalletUnavailable},
	minting.OutcomeWrongNetwork:             {http.StatusBadGateway, apierrors.ErrCodeWrongNetwork},
	minting.OutcomeChainRejected:            {http.StatusBadGateway, apierrors.ErrCodeChainRejected},
	minting.OutcomeFailed:                   {http.StatusInternalServerError, apierrors.ErrCodeInternalError},
}

// mintErrorResponse is the body of a mint or re-check that did not tokenize the product
type mintErrorResponse struct {
	*apierrors.APIError
	Result *dto.MintResponse `json:"result"`
}

// respondOutcome responds with the mint result, as an API error when the product was not tokenized
func respondOutcome(c *gin.Context, resp *dto.MintResponse) {
	mapping, ok := outcomeStatus[minting.Outcome(resp.Outcome)]
	if !ok {
		mapping = outcomeStatus[minting.OutcomeFailed]
	}

	if mapping.code == "" {
		c.JSON(mapping.status, resp)
		return
	}

	status := mapping.status
	code := mapping.code
	if resp.ProductNotFound {
		status = http.StatusNotFound
		code = apierrors.ErrCodeNotFound
	}

	details := []string{}
	if resp.Error != nil {
		details = append(details, *resp.Error)
	}
	c.JSON(status, mintErrorResponse{
		APIError: apierrors.New(code, resp.Message, details...),
		Result:   resp,
	})
}

// respondBadRequest responds with a bad request error
func respondBadRequest(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, apierrors.NewBadRequestError(message, details...))
}

// respondNotFound responds with a not found error
func respondNotFound(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusNotFound, apierrors.NewNotFoundError(message, details...))
}

// respondValidationError responds with a validation error
func respondValidationError(c *gin.Context, message string) {
	c.JSON(http.StatusUnprocessableEntity, apierrors.NewValidationError(message))
}

// respondInternalError responds with an internal server error, keeping the code of an APIError
func respondInternalError(c *gin.Context, err error, message string) {
	logger.ErrorCtx(c.Request.Context(), err, zap.String("path", c.Request.URL.Path))

	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		c.JSON(http.StatusInternalServerError, apierrors.New(apiErr.Code, message, apiErr.Message))
		return
	}
	c.JSON(http.StatusInternalServerError, apierrors.NewInternalError(message))
}
