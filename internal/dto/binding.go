package dto

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/ymalhaj/cashbox_ledger_app/internal/core/domain"
)

// RegisterCustomValidations installs the cashbox-specific binding
// validations on gin's validator engine. Must run before any request is
// bound; route registration calls it.
func RegisterCustomValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("cashbox_currency", func(fl validator.FieldLevel) bool {
			return domain.CurrencyCode(fl.Field().String()).IsSupported()
		})
	}
}
