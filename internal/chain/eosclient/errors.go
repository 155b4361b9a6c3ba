package eosclient

import (
	"errors"
	"net/http"
	"strings"

	eos "github.com/eoscanada/eos-go"
	"github.com/fioprotocol/fio-provisioner/internal/chain"
)

// translate converts eos-go API errors into *chain.Error and returns other errors unchanged.
func translate(err error) error {
	var apiErr eos.APIError
	if errors.As(err, &apiErr) {
		return toChainError(apiErr)
	}
	var apiErrPtr *eos.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return toChainError(*apiErrPtr)
	}
	return err
}

func toChainError(apiErr eos.APIError) *chain.Error {
	out := &chain.Error{
		HTTPCode: apiErr.Code,
		Code:     apiErr.ErrorStruct.Code,
		Name:     apiErr.ErrorStruct.Name,
		Message:  apiErr.ErrorStruct.What,
	}
	if out.Message == "" {
		out.Message = apiErr.Message
	}
	for _, d := range apiErr.ErrorStruct.Details {
		out.Details = append(out.Details, d.Message)
	}
	return out
}

func isNotFound(e *chain.Error) bool {
	if e.HTTPCode == http.StatusNotFound {
		return true
	}
	for _, d := range e.Details {
		if strings.HasPrefix(d, "unknown key") {
			return true
		}
	}
	return false
}
