package coupons

import "errors"

// Validation and redemption failures are typed results surfaced verbatim to
// the client, never generic errors.
var (
	ErrNotFound         = errors.New("coupon not found")
	ErrInactive         = errors.New("coupon is inactive")
	ErrExpired          = errors.New("coupon has expired")
	ErrNotYetValid      = errors.New("coupon is not yet valid")
	ErrExhausted        = errors.New("coupon usage limit reached")
	ErrCurrencyMismatch = errors.New("coupon currency does not match purchase currency")
	ErrDuplicateCode    = errors.New("coupon code already exists")
	ErrLimitBelowUsage  = errors.New("usage_limit cannot drop below current usage")
)

var errorCodes = map[error]string{
	ErrNotFound:         "CouponNotFound",
	ErrInactive:         "CouponInactive",
	ErrExpired:          "CouponExpired",
	ErrNotYetValid:      "CouponNotYetValid",
	ErrExhausted:        "CouponExhausted",
	ErrCurrencyMismatch: "CurrencyMismatch",
	ErrDuplicateCode:    "DuplicateCouponCode",
	ErrLimitBelowUsage:  "UsageLimitBelowUsage",
}

// ErrorCode maps a coupon error to its stable API code. Unknown errors map
// to an empty string so callers can tell domain failures from internal ones.
func ErrorCode(err error) string {
	for sentinel, code := range errorCodes {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return ""
}

// IsCouponError reports whether err belongs to the coupon error taxonomy.
func IsCouponError(err error) bool {
	return ErrorCode(err) != ""
}
