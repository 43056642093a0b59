package models

import "errors"

// Custom errors
var (
	ErrNotFound         = errors.New("record not found")
	ErrInvalidContestID = errors.New("invalid contest id")
	ErrContestNotFound  = errors.New("contest not found")
	ErrNoFeatures       = errors.New("no computable features for contest")
)
