package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/vitor518/Mangues/core"
)

// DefaultAvatar is given to users who did not pick one.
const DefaultAvatar = "🦀"

// Avatars are the only symbols a user may pick.
var Avatars = []string{
	"🦀", "🦢", "🌳", "🐋", "🦩", "🐦", "🦪", "🦐", "🌿", "🐬", "🐤", "🐙", "🐊", "🦋", "🐟",
}

var PasswordCost = bcrypt.DefaultCost // mockable

func IsAvatar(s string) bool {
	for _, a := range Avatars {
		if a == s {
			return true
		}
	}
	return false
}

type User struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"nome" db:"nome"`
	Handle       string    `json:"apelido" db:"apelido"`
	Avatar       string    `json:"avatar" db:"avatar"`
	PasswordHash []byte    `json:"-" db:"senha_hash"`
	CreatedAt    time.Time `json:"data_criacao" db:"data_criacao"`   // UTC
	LastSeenAt   time.Time `json:"ultimo_acesso" db:"ultimo_acesso"` // UTC
	TotalPoints  int       `json:"total_pontos" db:"total_pontos"`
	Visits       int       `json:"visitas" db:"visitas"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), PasswordCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Name     string `json:"nome" validate:"required,min=2,max=100"`
	Handle   string `json:"apelido" validate:"required,min=3,max=50,alphanum_"`
	Password string `json:"senha" validate:"required,min=4"`
	Avatar   string `json:"avatar" validate:"omitempty,avatar"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Name = core.CleanString(nu.Name)
	nu.Handle = core.CleanString(nu.Handle)
	nu.Avatar = core.CleanString(nu.Avatar)
	return validate.Struct(nu)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	Name   string `json:"nome" validate:"omitempty,min=2,max=100"`
	Avatar string `json:"avatar" validate:"omitempty,avatar"`
}

func (uu *UpdateUser) Validate(validate *validator.Validate) error {
	uu.Name = core.CleanString(uu.Name)
	uu.Avatar = core.CleanString(uu.Avatar)
	if uu.Name == "" && uu.Avatar == "" {
		return core.NewValidationError(ErrNothingToUpdate)
	}
	return validate.Struct(uu)
}

type Credentials struct {
	Handle   string `json:"apelido" validate:"required"`
	Password string `json:"senha" validate:"required"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Handle = core.CleanString(c.Handle)
	return validate.Struct(c)
}

// RankingEntry is one line of the leaderboard.
type RankingEntry struct {
	ID                int    `json:"id" db:"id"`
	Name              string `json:"nome" db:"nome"`
	Handle            string `json:"apelido" db:"apelido"`
	Avatar            string `json:"avatar" db:"avatar"`
	TotalPoints       int    `json:"total_pontos" db:"total_pontos"`
	TotalAchievements int    `json:"total_conquistas" db:"total_conquistas"`
	TotalGames        int    `json:"total_jogos" db:"total_jogos"`
}
