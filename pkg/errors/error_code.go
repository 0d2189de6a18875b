package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidQuote         ErrorCode = 102
	ErrCodeInvalidPeriod        ErrorCode = 103
	ErrCodeInvalidQuantity      ErrorCode = 104
	ErrCodeInvalidWindow        ErrorCode = 105

	// Price history errors (200-299)
	ErrCodeNoQuote           ErrorCode = 200
	ErrCodeNoCoverage        ErrorCode = 201
	ErrCodeHistoryLoadFailed ErrorCode = 202
	ErrCodeInsufficientData  ErrorCode = 203

	// Calendar errors (300-399)
	ErrCodeNoTradingDays   ErrorCode = 300
	ErrCodeInvalidSchedule ErrorCode = 301

	// Ledger errors (400-499)
	ErrCodeValuationFailed ErrorCode = 400

	// Strategy/state-machine errors (500-599)
	ErrCodeConstantStateFailed ErrorCode = 500
	ErrCodeInitialStateFailed  ErrorCode = 501
	ErrCodeTransitionFailed    ErrorCode = 502
	ErrCodeReturnStateFailed   ErrorCode = 503
	ErrCodeUnknownStrategy     ErrorCode = 504

	// Experiment errors (600-699)
	ErrCodeTrialFailed        ErrorCode = 600
	ErrCodeTrialSetFailed     ErrorCode = 601
	ErrCodeNoUsableTrialSets  ErrorCode = 602
	ErrCodeDistributionFailed ErrorCode = 603
)
