package domain

import "errors"

var (
	ErrMalformedRequest  = errors.New("malformed reload request")
	ErrUnsupportedTarget = errors.New("unsupported reload target")
	ErrClassUnregister   = errors.New("unregister extension class")
	ErrModuleEviction    = errors.New("evict cached module")
	ErrImportFailure     = errors.New("import module")
	ErrBindFailure       = errors.New("bind listener")
	ErrHostUnresponsive  = errors.New("host stopped responding")
)
