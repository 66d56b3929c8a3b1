package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitor518/Mangues/core"
	"github.com/vitor518/Mangues/tests"
)

func testConfig(engine string) *core.Config {
	conf := &core.Config{Env: "TEST", TestMode: true}
	conf.Server.DisableReqLogs = true
	conf.Database = core.DatabaseConfig{
		Engine:       engine,
		Host:         "127.0.0.1",
		Port:         1, // nothing listens here
		Name:         "mangues",
		User:         "postgres",
		DisableTLS:   true,
		MaxOpenConns: 2,
	}
	return conf
}

func get(a app, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	a.server.ServeHTTP(rec, req)
	return rec
}

func Test_setUpRepositories_unreachablePostgres(t *testing.T) {
	conf := testConfig(core.EnginePostgres)
	logger := new(testutil.Logger)

	start := time.Now()
	repos, err := setUpRepositories(conf, logger)
	require.NoError(t, err)
	defer func() { _ = repos.close() }()
	assert.Less(t, time.Since(start), time.Second, "setting up storage must not wait for the database")
	require.NotNil(t, repos.prepare)

	a := newApp(conf, logger, repos)

	tests := []struct {
		path     string
		wantCode int
		wantData string
	}{
		{path: "/api/health", wantCode: http.StatusOK},
		{path: "/api/auth/avatars", wantCode: http.StatusOK},
		{path: "/api/auth/conquistas", wantCode: http.StatusInternalServerError, wantData: `{"error":"Algo deu errado no servidor!"}`},
		{path: "/api/auth/ranking", wantCode: http.StatusInternalServerError, wantData: `{"error":"Algo deu errado no servidor!"}`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(a, tt.path)
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantData != "" {
				assert.JSONEq(t, tt.wantData, rec.Body.String())
			}
		})
	}
}

func Test_bootstrap_unreachablePostgres(t *testing.T) {
	conf := testConfig(core.EnginePostgres)
	logger := new(testutil.Logger)
	repos, err := setUpRepositories(conf, logger)
	require.NoError(t, err)
	defer func() { _ = repos.close() }()
	a := newApp(conf, logger, repos)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	assert.False(t, bootstrap(ctx, repos, a.achSvc, logger, 10*time.Millisecond))

	var failures int
	for _, e := range logger.Entries() {
		if e.Level == "ERROR" && e.Msg == "preparing storage" {
			failures++
		}
	}
	assert.GreaterOrEqual(t, failures, 1)

	// still serving
	assert.Equal(t, http.StatusOK, get(a, "/api/health").Code)
}

func Test_bootstrap_memory(t *testing.T) {
	conf := testConfig(core.EngineMemory)
	logger := new(testutil.Logger)
	repos, err := setUpRepositories(conf, logger)
	require.NoError(t, err)
	a := newApp(conf, logger, repos)

	// nothing seeded yet
	rec := get(a, "/api/auth/conquistas")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	require.True(t, bootstrap(context.Background(), repos, a.achSvc, logger, time.Millisecond))

	rec = get(a, "/api/auth/conquistas")
	require.Equal(t, http.StatusOK, rec.Code)
	var achs []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &achs))
	assert.Len(t, achs, 10)
}

func Test_setUpRepositories_unknownEngine(t *testing.T) {
	_, err := setUpRepositories(testConfig("lol"), new(testutil.Logger))
	assert.EqualError(t, err, `unknown database engine "lol"`)
}
