package validation

import (
	"reflect"
	"strings"

	"bagrental/model"

	"github.com/go-playground/validator/v10"
)

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	return &Validator{v: NewValidate()}
}

func (v *Validator) Validate(i interface{}) error {
	return v.v.Struct(i)
}

// NewValidate registers the domain tags: tier, bagstatus, resstatus, memberstatus.
func NewValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("tier", func(fl validator.FieldLevel) bool {
		return model.MembershipTier(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("bagstatus", func(fl validator.FieldLevel) bool {
		return model.BagStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("resstatus", func(fl validator.FieldLevel) bool {
		return model.ReservationStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("memberstatus", func(fl validator.FieldLevel) bool {
		return model.MembershipStatus(fl.Field().String()).Valid()
	})
	return v
}

// Fields flattens validation errors into {"field": "tag"}.
func Fields(err error) map[string]string {
	out := map[string]string{}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return out
	}
	for _, fe := range verrs {
		tag := fe.Tag()
		if fe.Param() != "" {
			tag += "=" + fe.Param()
		}
		out[fe.Field()] = tag
	}
	return out
}
