package user

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/vitor518/Mangues/core"
)

var (
	avatarTag  = "avatar"
	avatarText = "{0} inválido"

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "senha não pode ser parecida com o nome ou o apelido"
)

// InitValidators registers the user validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(avatarTag, avatarValidation)
	core.RegisterCustomTranslation(validate, translator, avatarTag, avatarText)

	validate.RegisterStructValidation(newUserStructValidation, NewUser{})
	core.RegisterCustomTranslation(validate, translator, pwdAttrSimTag, pwdAttrSimText)
}

// Custom Validators

// avatarValidation checks that the avatar is one of Avatars.
func avatarValidation(fl validator.FieldLevel) bool {
	return IsAvatar(fl.Field().String())
}

// newUserStructValidation rejects passwords too similar to the user's name or handle.
func newUserStructValidation(sl validator.StructLevel) {
	nu, ok := sl.Current().Interface().(NewUser)
	if !ok || nu.Password == "" {
		return
	}

	getRatio := func(pass, usrAttr string) float64 {
		if usrAttr == "" {
			return 0
		}
		pass, usrAttr = strings.ToLower(pass), strings.ToLower(usrAttr)
		return difflib.NewMatcher(strings.Split(pass, ""), strings.Split(usrAttr, "")).QuickRatio()
	}
	if getRatio(nu.Password, nu.Name) >= pwdMaxSim || getRatio(nu.Password, nu.Handle) >= pwdMaxSim {
		sl.ReportError(nu.Password, "senha", "Password", pwdAttrSimTag, "")
	}
}
