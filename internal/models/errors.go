package models

import "errors"

// Precondition and resolution failures. These indicate corrupt upstream data
// or an incomplete fund tree and are never coerced or retried.
var (
	ErrWeightOutOfRange = errors.New("holding weight out of range")
	ErrSummedWeight     = errors.New("summed weight outside tolerance")
	ErrStatisticsTotal  = errors.New("statistics total below threshold")
	ErrUnresolvedFund   = errors.New("fund holding cannot be reduced to leaves")
	ErrFundNotFound     = errors.New("fund constituents not found")
	ErrFundCycle        = errors.New("fund holds itself")
)
