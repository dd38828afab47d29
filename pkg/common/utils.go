package common

import (
	"math/rand"
	"time"
)

// GenerateAccountNumber returns a loan account number such as "LN48213907".
func GenerateAccountNumber() string {
	const digits = "0123456789"
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	result := make([]byte, 8)
	for i := range result {
		result[i] = digits[r.Intn(len(digits))]
	}
	return "LN" + string(result)
}

func StringPtr(s string) *string {
	return &s
}
