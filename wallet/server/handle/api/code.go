package api

import (
	"errors"

	"github.com/inscription-c/custody/errs"
)

type Code = int

// common
const (
	CodeSuccess        Code = 0
	CodeError500       Code = 500
	CodeParamsInvalid  Code = 10000
	CodeMethodNotExist Code = 10001
	CodeDbError        Code = 10002
	CodeKeyNameInvalid Code = 10003
)

// key service
const (
	CodeMalformedInput     Code = 20000
	CodeNotInitialized     Code = 20001
	CodeAlreadyInitialized Code = 20002
	CodeInitializing       Code = 20003
	CodeExternalCallFailed Code = 20004
)

var codeErrors = map[Code]error{
	CodeMalformedInput:     errs.ErrMalformedInput,
	CodeNotInitialized:     errs.ErrNotInitialized,
	CodeAlreadyInitialized: errs.ErrAlreadyInitialized,
	CodeInitializing:       errs.ErrAlreadyInitializing,
	CodeExternalCallFailed: errs.ErrExternalCallFailed,
}

// CodeOf maps a key service error to its response code.
func CodeOf(err error) Code {
	for code, target := range codeErrors {
		if errors.Is(err, target) {
			return code
		}
	}
	return CodeError500
}

// ErrorOf maps a response code back to the sentinel error, or nil for
// codes without one.
func ErrorOf(code Code) error {
	return codeErrors[code]
}
