package mazeapi

import (
	"errors"
	"net/http"

	dmn "github.com/beka-birhanu/vinom-zkmaze/domain"
	"github.com/beka-birhanu/vinom-zkmaze/infrastruture/zkvm"
	"github.com/beka-birhanu/vinom-zkmaze/maze"
	"github.com/beka-birhanu/vinom-zkmaze/service"
)

// errorStatus maps pipeline errors to HTTP statuses. Retryable backend failures map to
// the 5xx gateway statuses.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrMoveSequenceTooLong),
		errors.Is(err, service.ErrMissingArtifact),
		errors.Is(err, service.ErrMissingGrid),
		errors.Is(err, service.ErrInvalidArtifact),
		errors.Is(err, maze.ErrDimensionOverflow),
		errors.Is(err, maze.ErrEmptyGrid),
		errors.Is(err, maze.ErrRaggedGrid),
		errors.Is(err, zkvm.ErrInvalidProfile),
		errors.Is(err, ErrReceiptEncoding),
		errors.Is(err, ErrCellValue),
		errors.Is(err, ErrMoveValue):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidReceipt),
		errors.Is(err, zkvm.ErrMalformedReceipt):
		return http.StatusUnprocessableEntity
	case errors.Is(err, dmn.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, dmn.ErrNoCredits):
		return http.StatusPaymentRequired
	case errors.Is(err, service.ErrPoolBusy):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrProveTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, service.ErrBackendProve),
		errors.Is(err, service.ErrBackendVerify):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
