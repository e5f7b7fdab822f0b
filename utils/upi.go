package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// BuildUpiLink formats the upi://pay deep link consumed by UPI payment
// apps. vpa is the payee address, payeeName is shown in the payment app,
// amountMajor is in major units (rupees) and omitted when zero so the
// payer picks the amount in-app. This system only formats the string; it
// never talks to the payment network.
func BuildUpiLink(vpa, payeeName string, amountMajor float64, note string) string {
	params := url.Values{}
	params.Set("pa", vpa)
	params.Set("pn", payeeName)
	params.Set("cu", "INR")
	if amountMajor > 0 {
		params.Set("am", strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", amountMajor), "0"), "."))
	}
	if note != "" {
		params.Set("tn", note)
	}
	return "upi://pay?" + params.Encode()
}
