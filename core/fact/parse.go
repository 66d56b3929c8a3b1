package fact

import (
	"bytes"
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"github.com/vitor518/Mangues/core"
)

// client payloads; pointers tell a missing field from a zero value

type (
	speciesPayload struct {
		SpeciesID *int `json:"especieId" validate:"required,gte=1"`
	}

	threatPayload struct {
		ThreatID *int `json:"ameacaId" validate:"required,gte=1"`
	}

	threatActionPayload struct {
		ThreatID    *int `json:"ameacaId" validate:"required,gte=1"`
		ActionIndex *int `json:"acaoIndex" validate:"required,gte=0"`
	}

	gamePayload struct {
		Game       string `json:"tipoJogo" validate:"required,oneof=memoria conexoes"`
		Difficulty string `json:"dificuldade" validate:"omitempty,oneof=facil medio dificil"`
		Score      *int   `json:"pontuacao" validate:"required,gte=0"`
	}
)

// Parse builds the Fact described by an action kind and its JSON data.
func Parse(validate *validator.Validate, kind Kind, data []byte) (Fact, error) {
	decode := func(payload interface{}) error {
		data = bytes.TrimSpace(data)
		if len(data) == 0 || bytes.Equal(data, []byte("null")) {
			return core.NewValidationError(ErrMalformed)
		}
		if err := json.Unmarshal(data, payload); err != nil {
			return core.NewValidationError(ErrMalformed)
		}
		return validate.Struct(payload)
	}

	switch kind {
	case KindSpeciesViewed:
		var p speciesPayload
		if err := decode(&p); err != nil {
			return nil, err
		}
		return SpeciesViewed{SpeciesID: *p.SpeciesID}, nil
	case KindThreatViewed:
		var p threatPayload
		if err := decode(&p); err != nil {
			return nil, err
		}
		return ThreatViewed{ThreatID: *p.ThreatID}, nil
	case KindThreatActionCompleted:
		var p threatActionPayload
		if err := decode(&p); err != nil {
			return nil, err
		}
		return ThreatActionCompleted{ThreatID: *p.ThreatID, ActionIndex: *p.ActionIndex}, nil
	case KindGameCompleted:
		var p gamePayload
		if err := decode(&p); err != nil {
			return nil, err
		}
		return GameResult{Game: GameKind(p.Game), Difficulty: Difficulty(p.Difficulty), Score: *p.Score}, nil
	default:
		return nil, core.NewValidationError(ErrUnknownKind)
	}
}
