package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/vitor518/Mangues/apps/api/echo"
	"github.com/vitor518/Mangues/core"
	"github.com/vitor518/Mangues/core/achievement"
	"github.com/vitor518/Mangues/core/fact"
	"github.com/vitor518/Mangues/core/progress"
	"github.com/vitor518/Mangues/core/user"
	inmemdb "github.com/vitor518/Mangues/storage/database/inmem"
	"github.com/vitor518/Mangues/tests"
)

type env struct {
	app     Server
	usrRepo user.Repository
	usrSvc  *user.Service
	achSvc  *achievement.Service
	progSvc *progress.Service
	logger  *testutil.Logger
}

func setup(t *testing.T) env {
	db, err := inmemdb.Open()
	require.NoError(t, err)

	conf := &core.Config{Env: "TEST", TestMode: true}
	conf.Server.DisableReqLogs = true

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	fact.InitValidators(validate, translator)

	logger := new(testutil.Logger)
	usrRepo := inmemdb.NewUserRepository(db)
	usrSvc := user.NewService(usrRepo)
	achSvc := achievement.NewService(inmemdb.NewAchievementRepository(db))
	require.NoError(t, achSvc.Seed(context.Background()))
	progSvc := progress.NewService(progress.Deps{
		Users:        usrRepo,
		Facts:        fact.NewStore(inmemdb.NewFactRepository(db)),
		Achievements: achSvc,
		Validate:     validate,
		Logger:       logger,
	})

	app := NewServer(ServerDeps{
		Conf:           conf,
		Logger:         logger,
		UserSvc:        usrSvc,
		AchievementSvc: achSvc,
		ProgressSvc:    progSvc,
		Validate:       validate,
		Translator:     translator,
	})
	return env{app: app, usrRepo: usrRepo, usrSvc: usrSvc, achSvc: achSvc, progSvc: progSvc, logger: logger}
}

type httpErr struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"campos,omitempty"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
	extra    interface{}
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func (e env) do(method, path string, data ...[]byte) *httptest.ResponseRecorder {
	req, rec := newRequest(method, path, data...)
	e.app.ServeHTTP(rec, req)
	return rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	if _, ok := j1.([]interface{}); !ok {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("json.Unmarshal(%s) failed: %v", rec.Body.String(), err)
	}
}
