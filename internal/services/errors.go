package services

import "errors"

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already registered")
	ErrInvalidRole  = errors.New("invalid role")

	ErrBiodataNotFound    = errors.New("biodata not found")
	ErrBiodataExists      = errors.New("biodata already exists for this email")
	ErrPremiumFieldDenied = errors.New("premium membership required for this field")
	ErrUnauthorized       = errors.New("not authorized to modify this resource")

	ErrFavouriteNotFound = errors.New("favourite not found")
	ErrAlreadyFavourited = errors.New("biodata already favourited")

	ErrPremiumRequestNotFound = errors.New("premium request not found")
	ErrPremiumRequestExists   = errors.New("premium request already sent")
	ErrInvalidPremiumStatus   = errors.New("invalid premium request status")
	ErrPremiumSyncFailed      = errors.New("premium entitlement sync failed")

	ErrPaymentExists       = errors.New("payment already recorded")
	ErrPaymentNotConfirmed = errors.New("payment not confirmed by provider")
	ErrPaymentMismatch     = errors.New("payment does not match intent")
	ErrPaymentProvider     = errors.New("payment provider error")

	ErrMessageNotFound = errors.New("contact message not found")
	ErrStoryNotFound   = errors.New("success story not found")
)
