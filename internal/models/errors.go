package models

import "errors"

// Registry error kinds. Every failed operation surfaces exactly one of these so
// callers can branch on cause with errors.Is instead of matching message text.
var (
	ErrInsufficientFee         = errors.New("payment below required fee")
	ErrInvalidPayment          = errors.New("payment reference unknown, foreign or already spent")
	ErrUsernameTooShort        = errors.New("username too short")
	ErrUsernameTooLong         = errors.New("username too long")
	ErrUsernameTaken           = errors.New("username already taken")
	ErrUserAlreadyRegistered   = errors.New("address already registered")
	ErrUserNotRegistered       = errors.New("address not registered")
	ErrUserBanned              = errors.New("user is banned")
	ErrUserInactive            = errors.New("user is not active")
	ErrNotOwner                = errors.New("caller is not the owner")
	ErrNotAdmin                = errors.New("caller is not an admin")
	ErrNotModerator            = errors.New("caller is not a moderator")
	ErrBioTooLong              = errors.New("bio too long")
	ErrEmptyPayload            = errors.New("verification payload is empty")
	ErrInvalidVerificationID   = errors.New("verification request id out of range")
	ErrRequestAlreadyProcessed = errors.New("verification request already processed")
	ErrCannotBanOwner          = errors.New("owner cannot be banned")
	ErrCannotRemoveOwnerAdmin  = errors.New("owner admin status cannot be removed")
	ErrUserAlreadyBanned       = errors.New("user is already banned")
	ErrUserNotBanned           = errors.New("user is not banned")
	ErrInvalidFeeKind          = errors.New("unknown fee kind")
	ErrEmptyBalance            = errors.New("treasury balance is empty")
	ErrWithdrawFailed          = errors.New("settlement transfer rejected")
	ErrWithdrawInFlight        = errors.New("another withdrawal is in flight")
)

// ErrorCode maps an error kind to its wire code, or "" for untyped errors.
func ErrorCode(err error) string {
	for code, kind := range errorCodes {
		if errors.Is(err, kind) {
			return code
		}
	}
	return ""
}

var errorCodes = map[string]error{
	"INSUFFICIENT_FEE":          ErrInsufficientFee,
	"INVALID_PAYMENT":           ErrInvalidPayment,
	"USERNAME_TOO_SHORT":        ErrUsernameTooShort,
	"USERNAME_TOO_LONG":         ErrUsernameTooLong,
	"USERNAME_TAKEN":            ErrUsernameTaken,
	"USER_ALREADY_REGISTERED":   ErrUserAlreadyRegistered,
	"USER_NOT_REGISTERED":       ErrUserNotRegistered,
	"USER_BANNED":               ErrUserBanned,
	"USER_INACTIVE":             ErrUserInactive,
	"NOT_OWNER":                 ErrNotOwner,
	"NOT_ADMIN":                 ErrNotAdmin,
	"NOT_MODERATOR":             ErrNotModerator,
	"BIO_TOO_LONG":              ErrBioTooLong,
	"EMPTY_PAYLOAD":             ErrEmptyPayload,
	"INVALID_VERIFICATION_ID":   ErrInvalidVerificationID,
	"REQUEST_ALREADY_PROCESSED": ErrRequestAlreadyProcessed,
	"CANNOT_BAN_OWNER":          ErrCannotBanOwner,
	"CANNOT_REMOVE_OWNER_ADMIN": ErrCannotRemoveOwnerAdmin,
	"USER_ALREADY_BANNED":       ErrUserAlreadyBanned,
	"USER_NOT_BANNED":           ErrUserNotBanned,
	"INVALID_FEE_KIND":          ErrInvalidFeeKind,
	"EMPTY_BALANCE":             ErrEmptyBalance,
	"WITHDRAW_FAILED":           ErrWithdrawFailed,
	"WITHDRAW_IN_FLIGHT":        ErrWithdrawInFlight,
}
