package domain

import "time"

const (
	// Basis point arithmetic
	BPS_DENOMINATOR = 10000

	// Protocol fee bounds, in basis points
	MIN_PROTOCOL_FEE_BPS = 50
	MAX_PROTOCOL_FEE_BPS = 1000

	// Lower bound for the buyout window
	MIN_BUYOUT_OPEN_TIME_PERIOD = 24 * time.Hour

	// Protocol defaults
	DEFAULT_SALE_FEE_BPS             = 400
	DEFAULT_BUYOUT_FEE_BPS           = 400
	DEFAULT_BUYOUT_MIN_FRACTIONS_BPS = 5000
	DEFAULT_BUYOUT_OPEN_TIME_PERIOD  = 48 * time.Hour

	// Subject id of notifications about protocol parameters and grants
	PROTOCOL_PARAMS_SUBJECT_ID = "params"

	// Blockchain constants
	ETHEREUM_ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"
)
