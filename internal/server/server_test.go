package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schemabrowser/internal/config"
	"schemabrowser/internal/database"
	"schemabrowser/internal/middlewares"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	ID      string          `json:"request_id"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Schema: "public",
		Database: database.Options{
			Driver:     database.DriverSQLite,
			SQLitePath: filepath.Join(t.TempDir(), "demo.db"),
		},
		QueryTimeout:       5 * time.Second,
		CountConcurrency:   4,
		ClassificationFile: filepath.Join("..", "..", "configs", "classification.yaml"),
		CORSOrigins:        []string{"*"},
		SeedDemo:           true,
	}

	core, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(core.Close)

	return NewRouter(core, cfg)
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)

	w, env := do(t, r, http.MethodGet, "/api/v1/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"driver":"sqlite"}`, string(env.Data))
	assert.NotEmpty(t, env.ID)
	assert.Equal(t, env.ID, w.Header().Get(middlewares.RequestIDHeader))
}

func TestListTables(t *testing.T) {
	r := newTestRouter(t)

	w, env := do(t, r, http.MethodGet, "/api/v1/tables", "")
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Tables []struct {
			Name     string `json:"name"`
			Category string `json:"category"`
			RowCount int64  `json:"row_count"`
		} `json:"tables"`
		Groups map[string][]struct {
			Name string `json:"name"`
		} `json:"groups"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Len(t, data.Tables, 10)
	assert.Len(t, data.Groups["reference"], 4)
	assert.Len(t, data.Groups["child"], 3)

	for _, tbl := range data.Tables {
		if tbl.Name == "WorkerRole" {
			assert.Equal(t, int64(3), tbl.RowCount)
			assert.Equal(t, "reference", tbl.Category)
		}
	}
}

func TestDependenciesAndGuardedInsert(t *testing.T) {
	r := newTestRouter(t)

	w, env := do(t, r, http.MethodGet, "/api/v1/tables/WorkerLog/dependencies", "")
	require.Equal(t, http.StatusOK, w.Code)
	var deps struct {
		Dependencies struct {
			Unsatisfied []string `json:"unsatisfied"`
		} `json:"dependencies"`
		Blocking []string `json:"blocking"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &deps))
	assert.Equal(t, []string{"ProcessBatch", "Worker"}, deps.Dependencies.Unsatisfied)
	assert.Equal(t, []string{"ProcessBatch", "Worker"}, deps.Blocking)

	w, env = do(t, r, http.MethodPost, "/api/v1/tables/WorkerLog/rows", `{"HoursWorked": 8}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "error", env.Status)
	assert.Contains(t, env.Error, "ProcessBatch")
}

func TestRowLifecycle(t *testing.T) {
	r := newTestRouter(t)

	w, _ := do(t, r, http.MethodPost, "/api/v1/tables/Worker/rows",
		`{"Name": "Ana", "RoleID": 1, "HireDate": "2024-03-01", "Contact": ""}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := do(t, r, http.MethodGet, "/api/v1/tables/Worker/rows/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"WorkerID":1,"Name":"Ana","RoleID":1,"Contact":null,"HireDate":"2024-03-01"}`,
		string(env.Data))

	w, _ = do(t, r, http.MethodPut, "/api/v1/tables/Worker/rows/1", `{"Contact": "ana@plant.test"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = do(t, r, http.MethodGet, "/api/v1/tables/Worker", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"Contact":"ana@plant.test"`)
	assert.Contains(t, string(env.Data), `"primary_key":"WorkerID"`)

	w, env = do(t, r, http.MethodGet, "/api/v1/tables/Worker/options", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"RoleID":[1,2,3]}`, string(env.Data))

	w, _ = do(t, r, http.MethodDelete, "/api/v1/tables/Worker/rows/1", "")
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/v1/tables/Worker/rows/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestErrorStatuses(t *testing.T) {
	r := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown table", http.MethodGet, "/api/v1/tables/NoSuchTable", "", http.StatusNotFound},
		{"unknown column", http.MethodPost, "/api/v1/tables/WorkerRole/rows", `{"Salary": 1}`, http.StatusBadRequest},
		{"invalid body", http.MethodPost, "/api/v1/tables/WorkerRole/rows", `[1, 2]`, http.StatusBadRequest},
		{"nested value", http.MethodPost, "/api/v1/tables/WorkerRole/rows", `{"RoleName": {"a": 1}}`, http.StatusBadRequest},
		{"constraint violation", http.MethodPost, "/api/v1/tables/WorkerRole/rows", `{"RoleName": ""}`, http.StatusBadRequest},
		{"missing row", http.MethodDelete, "/api/v1/tables/WorkerRole/rows/99", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, "error", env.Status)
			assert.NotEmpty(t, env.Error)
		})
	}
}

func TestResolvedRows(t *testing.T) {
	r := newTestRouter(t)

	w, _ := do(t, r, http.MethodPost, "/api/v1/tables/Worker/rows", `{"Name": "Ana", "RoleID": 2}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := do(t, r, http.MethodGet, "/api/v1/tables/Worker/resolved", "")
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Columns []string         `json:"columns"`
		Rows    []map[string]any `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Contains(t, data.Columns, "RoleID_RoleName")
	require.Len(t, data.Rows, 1)
	assert.Equal(t, "Supervisor", data.Rows[0]["RoleID_RoleName"])

	w, _ = do(t, r, http.MethodGet, "/api/v1/tables/NoSuchTable/resolved", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSchemaDiagram(t *testing.T) {
	r := newTestRouter(t)

	w, env := do(t, r, http.MethodGet, "/api/v1/schema/diagram", "")
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Mermaid string `json:"mermaid"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.True(t, strings.HasPrefix(data.Mermaid, "erDiagram\n"))
	assert.Contains(t, data.Mermaid, `Worker ||--o{ WorkerRole : ""`)
}
