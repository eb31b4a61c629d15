package settings

import "errors"

// ErrProbabilityOutOfRange is returned by UseRandomStrategyWithProbability
// when the caller passes a value greater than 100.
var ErrProbabilityOutOfRange = errors.New("settings: probability must be in [0, 100]")
