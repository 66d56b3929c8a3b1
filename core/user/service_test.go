package user_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vitor518/Mangues/core"
	"github.com/vitor518/Mangues/core/user"
	inmemdb "github.com/vitor518/Mangues/storage/database/inmem"
)

func init() {
	user.PasswordCost = bcrypt.MinCost
}

func setup(t *testing.T) (*user.Service, user.Repository) {
	db, err := inmemdb.Open()
	require.NoError(t, err)
	repo := inmemdb.NewUserRepository(db)
	return user.NewService(repo), repo
}

func newValidator() *validator.Validate {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	return validate
}

func TestService_Register(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	usr, err := svc.Register(ctx, user.NewUser{Name: "Maria Silva", Handle: "maria_s", Password: "x9k#"})
	require.NoError(t, err)
	assert.NotZero(t, usr.ID)
	assert.Equal(t, user.DefaultAvatar, usr.Avatar)
	assert.Equal(t, 1, usr.Visits)
	assert.Zero(t, usr.TotalPoints)
	assert.NoError(t, usr.CheckPassword("x9k#"))
	assert.NotEqual(t, []byte("x9k#"), usr.PasswordHash)

	tests := []struct {
		name    string
		data    user.NewUser
		wantErr error
	}{
		{name: "same handle", data: user.NewUser{Name: "Outra", Handle: "maria_s", Password: "abcd"}, wantErr: user.ErrHandleExists},
		{name: "handle differs by case", data: user.NewUser{Name: "Outra", Handle: "MARIA_S", Password: "abcd"}, wantErr: user.ErrHandleExists},
		{name: "new handle", data: user.NewUser{Name: "João", Handle: "joao", Password: "abcd", Avatar: "🐙"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.data)
			if errors.Cause(err) != tt.wantErr {
				t.Errorf("Register() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestService_Login(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	usr, err := svc.Register(ctx, user.NewUser{Name: "Maria Silva", Handle: "maria_s", Password: "x9k#"})
	require.NoError(t, err)

	tests := []struct {
		name       string
		creds      user.Credentials
		wantErr    error
		wantVisits int
	}{
		{name: "unknown handle", creds: user.Credentials{Handle: "lol", Password: "x9k#"}, wantErr: user.ErrInvalidCredentials},
		{name: "wrong password", creds: user.Credentials{Handle: "maria_s", Password: "nope"}, wantErr: user.ErrInvalidCredentials},
		{name: "valid", creds: user.Credentials{Handle: "maria_s", Password: "x9k#"}, wantVisits: 2},
		{name: "valid, other casing", creds: user.Credentials{Handle: " Maria_S ", Password: "x9k#"}, wantVisits: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Login(ctx, tt.creds)
			if errors.Cause(err) != tt.wantErr {
				t.Fatalf("Login() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				assert.Equal(t, usr.ID, got.ID)
				assert.Equal(t, tt.wantVisits, got.Visits)
				assert.False(t, got.LastSeenAt.Before(usr.LastSeenAt))
			}
		})
	}
}

func TestService_Update(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	usr, err := svc.Register(ctx, user.NewUser{Name: "Maria Silva", Handle: "maria_s", Password: "x9k#"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, usr.ID, user.UpdateUser{Avatar: "🦩"})
	require.NoError(t, err)
	assert.Equal(t, "Maria Silva", updated.Name)
	assert.Equal(t, "🦩", updated.Avatar)
	assert.Equal(t, usr.Visits, updated.Visits)

	updated, err = svc.Update(ctx, usr.ID, user.UpdateUser{Name: "Maria S."})
	require.NoError(t, err)
	assert.Equal(t, "Maria S.", updated.Name)
	assert.Equal(t, "🦩", updated.Avatar)

	_, err = svc.Update(ctx, 999, user.UpdateUser{Name: "Ninguém"})
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))
}

func TestService_SetPassword(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	usr, err := svc.Register(ctx, user.NewUser{Name: "Maria Silva", Handle: "maria_s", Password: "x9k#"})
	require.NoError(t, err)

	_, err = svc.SetPassword(ctx, "lol", "new-pwd")
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))

	updated, err := svc.SetPassword(ctx, "MARIA_S", "new-pwd")
	require.NoError(t, err)
	assert.NoError(t, updated.CheckPassword("new-pwd"))
	assert.Error(t, updated.CheckPassword("x9k#"))
	assert.Equal(t, usr.ID, updated.ID)
}

func TestService_Ranking(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	entries, err := svc.Ranking(ctx, 0)
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)

	for i := 1; i <= 12; i++ {
		_, err = svc.Register(ctx, user.NewUser{Name: "Jogador " + strconv.Itoa(i), Handle: "p" + strconv.Itoa(i) + "xx", Password: "qwerty"})
		require.NoError(t, err)
	}

	tests := []struct {
		name    string
		limit   int
		wantLen int
	}{
		{name: "default", limit: 0, wantLen: user.DefaultRankingLimit},
		{name: "negative", limit: -3, wantLen: user.DefaultRankingLimit},
		{name: "custom", limit: 3, wantLen: 3},
		{name: "above population", limit: 50, wantLen: 12},
		{name: "capped", limit: 1000, wantLen: 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := svc.Ranking(ctx, tt.limit)
			require.NoError(t, err)
			assert.Len(t, entries, tt.wantLen)
			// all tied on points & achievements: id ascending
			for i := 1; i < len(entries); i++ {
				assert.Less(t, entries[i-1].ID, entries[i].ID)
			}
		})
	}
}

func TestNewUser_Validate(t *testing.T) {
	validate := newValidator()

	tests := []struct {
		name       string
		data       user.NewUser
		wantFields []string
	}{
		{name: "valid", data: user.NewUser{Name: "Maria Silva", Handle: "maria_s", Password: "x9k#"}},
		{name: "valid with avatar", data: user.NewUser{Name: "Maria Silva", Handle: "maria_s", Password: "x9k#", Avatar: "🐋"}},
		{name: "empty", data: user.NewUser{}, wantFields: []string{"nome", "apelido", "senha"}},
		{name: "blank name", data: user.NewUser{Name: "  ", Handle: "maria_s", Password: "x9k#"}, wantFields: []string{"nome"}},
		{name: "short fields", data: user.NewUser{Name: "M", Handle: "ma", Password: "x9k"}, wantFields: []string{"nome", "apelido", "senha"}},
		{name: "handle with spaces", data: user.NewUser{Name: "Maria Silva", Handle: "maria s", Password: "x9k#"}, wantFields: []string{"apelido"}},
		{name: "unknown avatar", data: user.NewUser{Name: "Maria Silva", Handle: "maria_s", Password: "x9k#", Avatar: "🚗"}, wantFields: []string{"avatar"}},
		{name: "password like handle", data: user.NewUser{Name: "Maria Silva", Handle: "maria_s", Password: "maria_s1"}, wantFields: []string{"senha"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.data.Validate(validate)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}
			var vErrs validator.ValidationErrors
			require.True(t, errors.As(err, &vErrs), "want validator.ValidationErrors, got %v", err)
			fields := make([]string, 0, len(vErrs))
			for _, fe := range vErrs {
				fields = append(fields, fe.Field())
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}

func TestUpdateUser_Validate(t *testing.T) {
	validate := newValidator()

	err := (&user.UpdateUser{Name: " ", Avatar: ""}).Validate(validate)
	var vErr *core.ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, user.ErrNothingToUpdate, vErr.Err)

	assert.NoError(t, (&user.UpdateUser{Avatar: "🦋"}).Validate(validate))
	assert.Error(t, (&user.UpdateUser{Avatar: "x"}).Validate(validate))
}
