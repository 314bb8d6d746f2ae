package order

import (
	"fmt"

	"marketorder/internal/pkg/errs"
)

// PaymentStatus tracks the payment hold independently of the order status.
// It mirrors what the payment gateway last acknowledged for this order.
type PaymentStatus int

const (
	// PaymentUnknown represents an invalid or undefined payment status.
	PaymentUnknown PaymentStatus = iota

	// PaymentPending means a hold was requested but not yet confirmed.
	PaymentPending

	// PaymentConfirmed means the gateway confirmed the hold on buyer funds.
	PaymentConfirmed

	// PaymentCaptured means the hold was captured and released to the seller.
	PaymentCaptured

	// PaymentVoided means the hold was voided during cancellation.
	PaymentVoided
)

func getPaymentStatusStrings() map[PaymentStatus]string {
	return map[PaymentStatus]string{
		PaymentUnknown:   "unknown",
		PaymentPending:   "pending",
		PaymentConfirmed: "confirmed",
		PaymentCaptured:  "captured",
		PaymentVoided:    "voided",
	}
}

// String returns the wire-format name of the payment status, e.g. "confirmed".
func (p PaymentStatus) String() string {
	if str, ok := getPaymentStatusStrings()[p]; ok {
		return str
	}
	return "unknown"
}

// Validate checks if the PaymentStatus value is a member of the valid set.
func (p PaymentStatus) Validate() error {
	if p == PaymentUnknown {
		return errs.NewValueIsInvalidErrorWithCause("payment status is invalid",
			fmt.Errorf("%d is not a valid payment status", p))
	}
	if _, ok := getPaymentStatusStrings()[p]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("payment status is invalid",
			fmt.Errorf("%d is not a valid payment status", p))
	}
	return nil
}
