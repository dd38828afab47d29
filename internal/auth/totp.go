package auth

import (
	"time"

	"github.com/pquerna/otp/totp"
)

// TwoFactorKey is a freshly generated TOTP secret and its provisioning URL.
type TwoFactorKey struct {
	Secret string `json:"secret"`
	URL    string `json:"otpauth_url"`
}

type TOTP struct {
	Issuer string
	Now    func() time.Time
}

func NewTOTP(issuer string) *TOTP {
	if issuer == "" {
		issuer = "LoanService"
	}
	return &TOTP{Issuer: issuer, Now: time.Now}
}

func (t *TOTP) Generate(accountName string) (TwoFactorKey, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      t.Issuer,
		AccountName: accountName,
	})
	if err != nil {
		return TwoFactorKey{}, err
	}
	return TwoFactorKey{Secret: key.Secret(), URL: key.URL()}, nil
}

// Validate checks code against secret, allowing one period of clock skew.
func (t *TOTP) Validate(code, secret string) bool {
	if code == "" || secret == "" {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, t.Now().UTC(), totp.ValidateOpts{
		Period: 30,
		Skew:   1,
		Digits: 6,
	})
	return err == nil && ok
}
