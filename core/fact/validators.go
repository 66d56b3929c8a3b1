package fact

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/vitor518/Mangues/core"
)

var (
	difficultyRequiredTag  = "difficulty_required"
	difficultyRequiredText = "{0} é obrigatória no jogo da memória"

	ErrUnknownKind = errors.New("Tipo de ação inválido")
	ErrMalformed   = errors.New("Dados da ação inválidos")
)

// InitValidators registers the fact validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(gameResultStructValidation, GameResult{}, gamePayload{})
	core.RegisterCustomTranslation(validate, translator, difficultyRequiredTag, difficultyRequiredText)
}

// Validate checks the shape of a fact before it is recorded.
func Validate(validate *validator.Validate, f Fact) error {
	if f == nil {
		return core.NewValidationError(ErrUnknownKind)
	}
	return validate.Struct(f)
}

// gameResultStructValidation requires a difficulty for memory games.
func gameResultStructValidation(sl validator.StructLevel) {
	switch g := sl.Current().Interface().(type) {
	case GameResult:
		if g.Game == GameMemory && g.Difficulty == NoDifficulty {
			sl.ReportError(g.Difficulty, "dificuldade", "Difficulty", difficultyRequiredTag, "")
		}
	case gamePayload:
		if g.Game == string(GameMemory) && g.Difficulty == "" {
			sl.ReportError(g.Difficulty, "dificuldade", "Difficulty", difficultyRequiredTag, "")
		}
	}
}
