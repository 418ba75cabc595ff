package services

import "errors"

// Service errors
var (
	ErrUnknownSpecification = errors.New("specification not present in the revenue table")
	ErrNotForecastable      = errors.New("specification is not in the forecastable set")
)
