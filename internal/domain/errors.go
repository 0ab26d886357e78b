package domain

import "errors"

// ErrInvalidCandidate indicates that a candidate violates the ingestion contract.
var ErrInvalidCandidate = errors.New("invalid candidate")

// ErrUnresolvedPlaceholder indicates that a candidate parameter still holds a
// template placeholder instead of a numeric value.
var ErrUnresolvedPlaceholder = errors.New("unresolved template placeholder")

// ErrInvalidOptions indicates that the pipeline options are invalid.
var ErrInvalidOptions = errors.New("invalid pipeline options")

// ErrInvalidRequest indicates that a pipeline request contains invalid data.
var ErrInvalidRequest = errors.New("invalid pipeline request")

// ErrUnknownStatus indicates a final status outside the closed Status enum.
var ErrUnknownStatus = errors.New("unknown final status")

// ErrBatchMismatch indicates that a stage returned a different number of
// reports than the records it was given.
var ErrBatchMismatch = errors.New("stage report count does not match batch size")
