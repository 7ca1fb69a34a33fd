package checkout

import "errors"

var (
	ErrEmptyCart           = errors.New("cart is empty, nothing to checkout")
	ErrUnauthenticated     = errors.New("sign in required to checkout")
	ErrCheckoutInProgress  = errors.New("checkout already in progress")
	IllegalTransitionError = errors.New("illegal transition of checkout status")
)
