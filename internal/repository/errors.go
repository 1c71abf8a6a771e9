package repository

import "errors"

var (
	// ErrEntityNotFound means the published dataset has no record for the CIK
	ErrEntityNotFound = errors.New("entity not found")
	// ErrNoDataset means nothing has been published yet
	ErrNoDataset = errors.New("no dataset published")
)
