package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a rejected operation
type ErrorKind string

const (
	ErrorKindAuthorization ErrorKind = "authorization"
	ErrorKindStateGate     ErrorKind = "state_gate"
	ErrorKindAccounting    ErrorKind = "accounting"
	ErrorKindInvariant     ErrorKind = "invariant"
	ErrorKindNotFound      ErrorKind = "not_found"
)

// Error is a rejection raised by the protocol.
// Every value is a sentinel: compare with errors.Is, add context with fmt.Errorf("%w").
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var errorsByCode = map[string]*Error{}

func newError(kind ErrorKind, code, message string) *Error {
	e := &Error{Kind: kind, Code: code, Message: message}
	errorsByCode[code] = e
	return e
}

// ErrorByCode returns the sentinel registered under code
func ErrorByCode(code string) (*Error, bool) {
	e, ok := errorsByCode[code]
	return e, ok
}

// KindOf returns the kind of the first protocol error found in err's chain
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// CodeOf returns the code of the first protocol error found in err's chain
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// MissingCapability builds the authorization error for a principal lacking a capability
func MissingCapability(principal fmt.Stringer, capability Capability) error {
	return fmt.Errorf("%w: account %s is missing capability %s", ErrMissingCapability, principal, capability)
}

// Authorization
var (
	ErrMissingCapability   = newError(ErrorKindAuthorization, "MISSING_CAPABILITY", "missing capability")
	ErrNotOwner            = newError(ErrorKindAuthorization, "NOT_OWNER", "caller is not token owner or approved")
	ErrMustBeSaleInitiator = newError(ErrorKindAuthorization, "MUST_BE_SALE_INITIATOR", "must be sale initiator")
	ErrNotOperator         = newError(ErrorKindAuthorization, "NOT_OPERATOR", "caller is not an operator")
	ErrAddressNotAllowed   = newError(ErrorKindAuthorization, "ADDRESS_NOT_ALLOWED", "address not allowed")
	ErrProtocolAccountSend = newError(ErrorKindAuthorization, "PROTOCOL_ACCOUNT_CANNOT_TRANSFER", "protocol accounts cannot transfer fractions")
)

// State gates
var (
	ErrSaleNotOpen                   = newError(ErrorKindStateGate, "SALE_NOT_OPEN", "sale not open")
	ErrSaleNotFinished               = newError(ErrorKindStateGate, "SALE_NOT_FINISHED", "sale not finished yet")
	ErrSaleUnsuccessful              = newError(ErrorKindStateGate, "SALE_UNSUCCESSFUL", "sale unsuccessful")
	ErrSaleDidNotFail                = newError(ErrorKindStateGate, "SALE_DID_NOT_FAIL", "sale did not fail")
	ErrCannotTradeNftBack            = newError(ErrorKindStateGate, "CANNOT_TRADE_NFT_BACK", "can't trade nft back")
	ErrAssetAlreadyInSale            = newError(ErrorKindStateGate, "ASSET_ALREADY_IN_SALE", "asset already in sale")
	ErrNftAlreadyWithdrawn           = newError(ErrorKindStateGate, "NFT_ALREADY_WITHDRAWN", "nft already withdrawn")
	ErrFractionsKeptAlreadyWithdrawn = newError(ErrorKindStateGate, "FRACTIONS_KEPT_ALREADY_WITHDRAWN", "fractions kept already withdrawn")
	ErrBuyoutAlreadyStarted          = newError(ErrorKindStateGate, "BUYOUT_ALREADY_STARTED", "buyout already started")
	ErrBuyoutNotOpen                 = newError(ErrorKindStateGate, "BUYOUT_NOT_OPEN", "buyout not open")
	ErrBuyoutNotExecuted             = newError(ErrorKindStateGate, "BUYOUT_NOT_EXECUTED", "buyout not executed")
	ErrSaleAlreadyBoughtOut          = newError(ErrorKindStateGate, "SALE_ALREADY_BOUGHT_OUT", "sale already bought out")
	ErrFullOwnershipHeld             = newError(ErrorKindStateGate, "FULL_OWNERSHIP_USE_UNSUPERVISED", "caller holds every fraction, use unsupervised buyout")
	ErrSellerAlreadyReleased         = newError(ErrorKindStateGate, "SELLER_ALREADY_RELEASED", "seller already released")
	ErrCannotTradeFailedSaleToken    = newError(ErrorKindStateGate, "CANNOT_TRADE_FAILED_SALE_TOKEN", "cannot trade token whose sale failed")
	ErrCannotTransferBoughtOutToken  = newError(ErrorKindStateGate, "CANNOT_TRANSFER_BOUGHT_OUT_TOKEN", "cannot transfer bought out token id")
	ErrCannotSendFractions           = newError(ErrorKindStateGate, "CANNOT_SEND_ERC1155", "cannot directly send ERC1155 tokens")
	ErrCannotSendAsset               = newError(ErrorKindStateGate, "CANNOT_SEND_ERC721", "cannot directly send ERC721 tokens")
	ErrAssetAlreadyMinted            = newError(ErrorKindStateGate, "TOKEN_ALREADY_MINTED", "token already minted")
	ErrFaucetDisabled                = newError(ErrorKindStateGate, "FAUCET_DISABLED", "ledger does not mint on request")
)

// Accounting
var (
	ErrNotEnoughFractionsAvailable = newError(ErrorKindAccounting, "NOT_ENOUGH_FRACTIONS_AVAILABLE", "not enough fractions available")
	ErrNotEnoughFractions          = newError(ErrorKindAccounting, "NOT_ENOUGH_FRACTIONS", "not enough fractions")
	ErrFractionsAmountZero         = newError(ErrorKindAccounting, "FRACTIONS_AMOUNT_CANNOT_BE_0", "fractions amount cannot be 0")
	ErrRequestExceedsAllowance     = newError(ErrorKindAccounting, "REQUEST_EXCEEDS_ALLOWANCE", "request exceeds allowance")
	ErrInsufficientBalance         = newError(ErrorKindAccounting, "INSUFFICIENT_BALANCE", "transfer amount exceeds balance")
	ErrBurnExceedsBalance          = newError(ErrorKindAccounting, "BURN_AMOUNT_EXCEEDS_BALANCE", "burn amount exceeds balance")
)

// Invariants
var (
	ErrNullAddress                   = newError(ErrorKindInvariant, "CANNOT_BE_NULL_ADDRESS", "cannot be null address")
	ErrSaleMinFractionsOutOfRange    = newError(ErrorKindInvariant, "SALE_MIN_FRACTIONS_OUT_OF_RANGE", "sale min fractions must be above 0")
	ErrInvalidSaleWindow             = newError(ErrorKindInvariant, "INVALID_SALE_WINDOW", "closing time must be after opening time")
	ErrClosingTimeInPast             = newError(ErrorKindInvariant, "CANNOT_SET_PAST_TIME", "closing time cannot be set in the past")
	ErrInvalidPrice                  = newError(ErrorKindInvariant, "INVALID_PRICE", "price does not match any tier")
	ErrProtocolFeeOutOfBounds        = newError(ErrorKindInvariant, "PROTOCOL_FEE_EXCEEDS_BOUNDARIES", "protocol fee exceeds boundaries")
	ErrBuyoutMinFractionsOutOfBounds = newError(ErrorKindInvariant, "MIN_BUYOUT_EXCEEDS_BOUNDARIES", "buyout min fractions exceed boundaries")
	ErrOpenTimePeriodBelowMinimum    = newError(ErrorKindInvariant, "OPEN_TIME_PERIOD_BELOW_MINIMUM", "open time period cannot be less than minimum")
	ErrInvalidTierSchedule           = newError(ErrorKindInvariant, "INVALID_TIER_SCHEDULE", "invalid tier schedule")
	ErrEmptyHolders                  = newError(ErrorKindInvariant, "EMPTY_HOLDERS", "holders cannot be empty")
	ErrInvalidHolder                 = newError(ErrorKindInvariant, "INVALID_HOLDER", "holder cannot be a protocol account")
	ErrInvalidAmount                 = newError(ErrorKindInvariant, "INVALID_AMOUNT", "amount must be above 0")
	ErrProtocolParamsNotInitialized  = newError(ErrorKindInvariant, "PROTOCOL_NOT_INITIALIZED", "protocol parameters not initialized")
	ErrMinFractionsKeptOutOfRange    = newError(ErrorKindInvariant, "MIN_FRACTIONS_KEPT_OUT_OF_RANGE", "min fractions kept must be below fractions amount")
	ErrNotTimedEscrow                = newError(ErrorKindInvariant, "NOT_TIMED_ESCROW", "seller release is only available on timed escrows")
	ErrUnknownCapability             = newError(ErrorKindInvariant, "UNKNOWN_CAPABILITY", "unknown capability")
)

// Lookups
var (
	ErrInvalidSaleID   = newError(ErrorKindNotFound, "INVALID_SALE_ID", "invalid sale id")
	ErrInvalidBuyoutID = newError(ErrorKindNotFound, "INVALID_BUYOUT_ID", "invalid buyout id")
	ErrEscrowNotFound  = newError(ErrorKindNotFound, "ESCROW_NOT_FOUND", "escrow not found")
	ErrAssetNotFound   = newError(ErrorKindNotFound, "NON_EXISTENT_TOKEN", "non existent token")
)
