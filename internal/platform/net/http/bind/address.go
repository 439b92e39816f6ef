package bind

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/mr-tron/base58"
)

// AccountAddressLen is the decoded size of a ledger account address
const AccountAddressLen = 32

// IsAccountAddress reports whether s is a base58 string that decodes to exactly 32 bytes
func IsAccountAddress(s string) bool {
	if s == "" || len(s) > 44 {
		return false
	}
	b, err := base58.Decode(s)
	return err == nil && len(b) == AccountAddressLen
}

func registerAccountAddress(v *validator.Validate, trans ut.Translator) {
	_ = v.RegisterValidation("account_address", func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && IsAccountAddress(s)
	})
	_ = v.RegisterTranslation("account_address", trans,
		func(ut ut.Translator) error {
			return ut.Add("account_address", "{0} must be a base58 account address", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T("account_address", fe.Field())
			return msg
		},
	)
}
