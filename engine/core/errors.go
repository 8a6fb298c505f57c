package core

import (
	"errors"
)

var (
	ErrNotFound          = errors.New("asset not found")
	ErrUnsupportedFormat = errors.New("no loader claims the file format")
	ErrIO                = errors.New("asset file could not be opened or read")
	ErrWriteFailed       = errors.New("no writer succeeded")
	ErrNoWriter          = errors.New("no writer registered for asset type and extension")
	ErrInvalidAsset      = errors.New("invalid asset")
	ErrInvalidGPUObject  = errors.New("invalid gpu object")
	ErrHierarchyTooDeep  = errors.New("asset hierarchy too deep, possible reference cycle")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrNoWorkers         = errors.New("attempting to create worker pool with less than 1 worker")
	ErrNegativeQueueSize = errors.New("attempting to create worker pool with a negative queue size")
	ErrGPUResourceLimit  = errors.New("gpu resource limit reached")
	ErrUnknown           = errors.New("unknown")
)
