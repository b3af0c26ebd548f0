package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"silant-backend/config"
	"silant-backend/internal/access"
	"silant-backend/internal/auth"
	"silant-backend/internal/events"
	"silant-backend/internal/metrics"
	"silant-backend/internal/model"
	"silant-backend/internal/store"
	"silant-backend/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingDispatcher struct {
	mu     sync.Mutex
	claims []int64
}

func (d *recordingDispatcher) Dispatch(claimID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.claims = append(d.claims, claimID)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(event events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Close() {}

type testEnv struct {
	t         *testing.T
	db        *gorm.DB
	f         *testutil.Fixture
	auth      *auth.Service
	router    *gin.Engine
	alerts    *recordingDispatcher
	published *recordingPublisher
}

func newTestEnv(t *testing.T, mutate func(*Options)) *testEnv {
	t.Helper()
	db := testutil.OpenDB(t)
	f := testutil.Seed(t, db)
	logger := zap.NewNop()

	s := store.NewGormStore(db, logger)
	svc := auth.NewService(config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour}, s, logger)
	env := &testEnv{
		t:         t,
		db:        db,
		f:         f,
		auth:      svc,
		alerts:    &recordingDispatcher{},
		published: &recordingPublisher{},
	}

	opts := Options{
		Store:      s,
		Auth:       svc,
		Resolver:   access.NewResolver(db, logger),
		Alerts:     env.alerts,
		Events:     env.published,
		Metrics:    metrics.New(),
		Cache:      cache.New(time.Minute, time.Minute),
		CacheTTL:   time.Minute,
		Pagination: config.PaginationConfig{Machines: 5, Maintenance: 15, Claims: 10},
		Logger:     logger,
	}
	if mutate != nil {
		mutate(&opts)
	}
	env.router = NewRouter(opts)
	return env
}

func (env *testEnv) do(method, path string, user *model.User, body any) *httptest.ResponseRecorder {
	env.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(env.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		token, err := env.auth.GenerateToken(*user)
		require.NoError(env.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

type listBody struct {
	Items    []map[string]any `json:"items"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Total    int64            `json:"total"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func serials(list listBody) []string {
	out := make([]string, len(list.Items))
	for i, item := range list.Items {
		out[i], _ = item["serial"].(string)
	}
	return out
}

func TestMachines_AnonymousSearch(t *testing.T) {
	env := newTestEnv(t, nil)

	w := env.do(http.MethodGet, "/api/machines", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[listBody](t, w)
	assert.Empty(t, list.Items)
	assert.Zero(t, list.Total)

	w = env.do(http.MethodGet, "/api/machines?serial=abc", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list = decode[listBody](t, w)
	assert.Equal(t, []string{"ABC-200", "XABC-300"}, serials(list))
	assert.NotContains(t, list.Items[0], "client")
	assert.NotContains(t, list.Items[0], "supply_contract")

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/machines/1", nil, nil).Code)
}

func TestMachines_Scoping(t *testing.T) {
	env := newTestEnv(t, nil)
	f := env.f

	w := env.do(http.MethodGet, "/api/machines", &f.ClientUser1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[listBody](t, w)
	assert.Equal(t, []string{"XABC-300", "M-100"}, serials(list))
	assert.Equal(t, 5, list.PageSize)

	w = env.do(http.MethodGet, "/api/machines?serial=abc", &f.CompanyUser1, nil)
	assert.Empty(t, decode[listBody](t, w).Items)

	w = env.do(http.MethodGet, "/api/machines/"+itoa(f.ABC200.ID), &f.ClientUser1, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodGet, "/api/machines/"+itoa(f.M100.ID), &f.ClientUser1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	m := decode[machineResponse](t, w)
	assert.Equal(t, "D-245", m.Engine.Title)
	assert.Equal(t, "S1", m.ServiceCompany.Title)
	assert.Equal(t, "2023-03-01", m.ShipmentDate)

	w = env.do(http.MethodGet, "/api/machines?engine=D-245&serial=M-1", &f.Admin, nil)
	assert.Equal(t, []string{"M-100"}, serials(decode[listBody](t, w)))

	w = env.do(http.MethodGet, "/api/machines", &f.Nobody, nil)
	assert.Empty(t, decode[listBody](t, w).Items)
}

func TestMachines_Pagination(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.Pagination.Machines = 2 })

	list := decode[listBody](t, env.do(http.MethodGet, "/api/machines", &env.f.Admin, nil))
	assert.Equal(t, []string{"ABC-200", "XABC-300"}, serials(list))
	assert.EqualValues(t, 3, list.Total)

	list = decode[listBody](t, env.do(http.MethodGet, "/api/machines?page=2", &env.f.Admin, nil))
	assert.Equal(t, []string{"M-100"}, serials(list))
	assert.Equal(t, 2, list.Page)
}

func machineBody(f *testutil.Fixture, serial string) map[string]any {
	return map[string]any{
		"serial":               serial,
		"equipment":            f.Equipment.ID,
		"engine":               f.Engine.ID,
		"engine_serial":        "E-1",
		"transmission":         f.Transmission.ID,
		"transmission_serial":  "T-1",
		"driving_axle":         f.DrivingAxle.ID,
		"driving_axle_serial":  "DA-1",
		"steering_axle":        f.SteeringAxle.ID,
		"steering_axle_serial": "SA-1",
		"supply_contract":      "No. 7",
		"shipment_date":        "2024-04-01",
		"end_consumer":         "Consumer",
		"shipping_address":     "Address",
		"client":               f.C2.ID,
		"service_company":      f.S1.ID,
	}
}

func TestMachines_Write(t *testing.T) {
	env := newTestEnv(t, nil)
	f := env.f

	w := env.do(http.MethodPost, "/api/machines", &f.ClientUser1, machineBody(f, "N-1"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(http.MethodPost, "/api/machines", &f.Admin, machineBody(f, "N-1"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[machineResponse](t, w)
	assert.Equal(t, "Standard", created.Options)
	assert.Equal(t, "C2", created.Client.Title)
	assert.Equal(t, "/api/machines/"+itoa(created.ID), w.Header().Get("Location"))

	w = env.do(http.MethodPost, "/api/machines", &f.Admin, machineBody(f, "N-1"))
	assert.Equal(t, http.StatusConflict, w.Code)

	bad := machineBody(f, "N-2")
	bad["shipment_date"] = "01.04.2024"
	bad["engine"] = 9999
	w = env.do(http.MethodPost, "/api/machines", &f.Admin, bad)
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode[struct {
		Fields map[string]string `json:"fields"`
	}](t, w).Fields
	assert.Equal(t, "enter a valid date in YYYY-MM-DD format", fields["shipment_date"])
	assert.Equal(t, "select a valid choice", fields["engine"])

	w = env.do(http.MethodDelete, "/api/machines/"+itoa(created.ID), &f.Admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	kinds := make([]events.EventType, 0, len(env.published.events))
	for _, ev := range env.published.events {
		assert.Equal(t, events.KindMachine, ev.Kind)
		assert.Equal(t, f.Admin.ID, ev.ActorID)
		kinds = append(kinds, ev.Type)
	}
	assert.Equal(t, []events.EventType{events.Created, events.Deleted}, kinds)
}

func claimBody(f *testutil.Fixture, machineID int64, refusal, recovery string) map[string]any {
	return map[string]any{
		"machine":             machineID,
		"refusal_date":        refusal,
		"operating_time":      120,
		"refusal_node":        f.RefusalNode.ID,
		"refusal_description": "Leaking",
		"recovery_method":     f.RecoveryMethod.ID,
		"repair_parts":        "Seal",
		"recovery_date":       recovery,
	}
}

func countClaims(t *testing.T, db *gorm.DB) int64 {
	var n int64
	require.NoError(t, db.Model(&model.Claim{}).Count(&n).Error)
	return n
}

func TestClaims_Create(t *testing.T) {
	env := newTestEnv(t, nil)
	f := env.f

	w := env.do(http.MethodPost, "/api/claims", &f.CompanyUser1, claimBody(f, f.M100.ID, "2024-05-01", "2024-05-05"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	claim := decode[claimResponse](t, w)
	assert.Equal(t, 4, claim.Downtime)
	assert.Equal(t, "S1", claim.ServiceCompany.Title)
	assert.Equal(t, "M-100", claim.Machine.Serial)
	assert.Equal(t, []int64{claim.ID}, env.alerts.claims)

	w = env.do(http.MethodGet, "/api/claims", &f.ClientUser1, nil)
	list := decode[listBody](t, w)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 10, list.PageSize)

	w = env.do(http.MethodGet, "/api/claims/"+itoa(claim.ID), &f.ClientUser2, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClaims_Validation(t *testing.T) {
	env := newTestEnv(t, nil)
	f := env.f

	w := env.do(http.MethodPost, "/api/claims", &f.CompanyUser1, claimBody(f, f.M100.ID, "2024-05-05", "2024-05-01"))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"validation failed","fields":{"recovery_date":"must not be earlier than the refusal date"}}`, w.Body.String())

	// ABC-200 is serviced by S2.
	w = env.do(http.MethodPost, "/api/claims", &f.CompanyUser1, claimBody(f, f.ABC200.ID, "2024-05-01", "2024-05-02"))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"machine":"select a valid choice"`)

	body := claimBody(f, f.M100.ID, "2024-05-01", "2024-05-02")
	body["operating_time"] = -1
	w = env.do(http.MethodPost, "/api/claims", &f.CompanyUser1, body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"operating_time":"must be a non-negative number"`)

	delete(body, "refusal_description")
	w = env.do(http.MethodPost, "/api/claims", &f.CompanyUser1, body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"refusal_description":"this field is required"`)

	assert.Zero(t, countClaims(t, env.db))
	assert.Empty(t, env.alerts.claims)
}

func TestPermissions(t *testing.T) {
	env := newTestEnv(t, nil)
	f := env.f

	tests := []struct {
		name   string
		method string
		path   string
		user   *model.User
		want   int
	}{
		{"anonymous claims", http.MethodGet, "/api/claims", nil, http.StatusUnauthorized},
		{"anonymous maintenance", http.MethodGet, "/api/maintenance", nil, http.StatusUnauthorized},
		{"client adds claim", http.MethodPost, "/api/claims", &f.ClientUser1, http.StatusForbidden},
		{"company deletes claim", http.MethodDelete, "/api/claims/1", &f.CompanyUser1, http.StatusForbidden},
		{"client deletes machine", http.MethodDelete, "/api/machines/" + itoa(f.M100.ID), &f.ClientUser1, http.StatusForbidden},
		{"company lists clients", http.MethodGet, "/api/clients", &f.CompanyUser1, http.StatusForbidden},
		{"unrecognized lists claims", http.MethodGet, "/api/claims", &f.Nobody, http.StatusForbidden},
		{"client resyncs", http.MethodPost, "/api/machines/" + itoa(f.M100.ID) + "/resync", &f.ClientUser1, http.StatusForbidden},
		{"admin lists clients", http.MethodGet, "/api/clients", &f.Admin, http.StatusOK},
		{"anonymous me", http.MethodGet, "/api/auth/me", nil, http.StatusUnauthorized},
		{"bad id", http.MethodGet, "/api/claims/abc", &f.Admin, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, env.do(tt.method, tt.path, tt.user, nil).Code)
		})
	}
}

func TestMaintenance_CreateAndResync(t *testing.T) {
	env := newTestEnv(t, nil)
	f := env.f

	body := map[string]any{
		"machine":             f.M100.ID,
		"type":                f.MaintenanceType.ID,
		"maintenance_date":    "2024-02-01",
		"operating_time":      50,
		"order_number":        "42",
		"order_date":          "2024-01-30",
		"maintenance_company": f.MaintenanceCompany.ID,
	}
	w := env.do(http.MethodPost, "/api/maintenance", &f.ClientUser1, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[maintenanceResponse](t, w)
	assert.Equal(t, "S1", created.ServiceCompany.Title)

	move := machineBody(f, "M-100")
	move["client"] = f.C1.ID
	move["service_company"] = f.S2.ID
	require.Equal(t, http.StatusOK, env.do(http.MethodPut, "/api/machines/"+itoa(f.M100.ID), &f.Admin, move).Code)

	// Existing records keep their company until resynced.
	w = env.do(http.MethodGet, "/api/maintenance/"+itoa(created.ID), &f.CompanyUser1, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodPost, "/api/machines/"+itoa(f.M100.ID)+"/resync", &f.Admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"maintenance":1,"claims":0}`, w.Body.String())

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/maintenance/"+itoa(created.ID), &f.CompanyUser1, nil).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/api/maintenance/"+itoa(created.ID), &f.CompanyUser2, nil).Code)

	w = env.do(http.MethodGet, "/api/maintenance?service_company=S2", &f.Admin, nil)
	assert.Len(t, decode[listBody](t, w).Items, 1)
}

func TestMaintenance_Validation(t *testing.T) {
	env := newTestEnv(t, nil)
	f := env.f

	body := map[string]any{
		"machine":             f.M100.ID,
		"type":                f.MaintenanceType.ID,
		"maintenance_date":    "2024-02-01",
		"operating_time":      -1,
		"order_number":        "42",
		"order_date":          "2024-01-30",
		"maintenance_company": f.MaintenanceCompany.ID,
	}
	w := env.do(http.MethodPost, "/api/maintenance", &f.ClientUser1, body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"validation failed","fields":{"operating_time":"must be a non-negative number"}}`, w.Body.String())

	var n int64
	require.NoError(t, env.db.Model(&model.Maintenance{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestReferences(t *testing.T) {
	env := newTestEnv(t, nil)
	f := env.f

	w := env.do(http.MethodGet, "/api/references/engines", &f.ClientUser1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	w = env.do(http.MethodGet, "/api/references/engines", &f.ClientUser1, nil)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))

	assert.Equal(t, http.StatusUnauthorized, env.do(http.MethodGet, "/api/references/engines", nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/references/wheels", &f.Admin, nil).Code)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodPost, "/api/references/engines", &f.ClientUser1, map[string]any{"title": "X"}).Code)

	w = env.do(http.MethodPost, "/api/references/engines", &f.Admin, map[string]any{"title": "D-260"})
	require.Equal(t, http.StatusCreated, w.Code)
	ref := decode[model.Reference](t, w)
	assert.Equal(t, "Engine model", ref.Description)

	w = env.do(http.MethodGet, "/api/references/engines", &f.ClientUser1, nil)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Len(t, decode[struct {
		Items []model.Reference `json:"items"`
	}](t, w).Items, 2)

	w = env.do(http.MethodDelete, "/api/references/engines/"+itoa(f.Engine.ID), &f.Admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = env.do(http.MethodDelete, "/api/references/engines/"+itoa(ref.ID), &f.Admin, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestParties(t *testing.T) {
	env := newTestEnv(t, nil)
	f := env.f

	w := env.do(http.MethodPost, "/api/clients", &f.Admin, map[string]any{"title": "C3", "user_id": f.Nobody.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.do(http.MethodPost, "/api/clients", &f.Admin, map[string]any{"title": "C4", "user_id": f.Nobody.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodGet, "/api/auth/me", &f.Nobody, nil)
	assert.Contains(t, w.Body.String(), `"role":"client"`)

	w = env.do(http.MethodGet, "/api/service-companies", &f.Admin, nil)
	assert.Len(t, decode[struct {
		Items []model.ServiceCompany `json:"items"`
	}](t, w).Items, 3)
}

func TestAuth_LoginAndRegister(t *testing.T) {
	env := newTestEnv(t, nil)

	hash, err := env.auth.HashPassword("correct horse")
	require.NoError(t, err)
	require.NoError(t, env.db.Model(&model.User{}).Where("id = ?", env.f.ClientUser2.ID).Update("password_hash", hash).Error)

	w := env.do(http.MethodPost, "/api/auth/login", nil, map[string]any{"username": "client2", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/api/auth/login", nil, map[string]any{"username": "client2", "password": "correct horse"})
	require.Equal(t, http.StatusOK, w.Code)
	token := decode[struct {
		Token string `json:"token"`
	}](t, w).Token

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"client"`)

	w = env.do(http.MethodPost, "/api/auth/register", nil, map[string]any{"username": "newbie", "password": "long enough"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	open := newTestEnv(t, func(o *Options) { o.AllowSignups = true })
	w = open.do(http.MethodPost, "/api/auth/register", nil, map[string]any{"username": "newbie", "password": "long enough"})
	assert.Equal(t, http.StatusCreated, w.Code)
	w = open.do(http.MethodPost, "/api/auth/register", nil, map[string]any{"username": "newbie", "password": "long enough"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t, nil)

	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/healthz", nil, nil).Code)

	env.do(http.MethodGet, "/api/machines", nil, nil)
	w := env.do(http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `silant_http_requests_total{method="GET",route="/api/machines",status="200"} 1`)
}

func TestAuth_RegisterValidation(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.AllowSignups = true })

	w := env.do(http.MethodPost, "/api/auth/register", nil, map[string]any{"username": "short", "password": "123"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"validation failed","fields":{"password":"ensure this value has at least 8 characters"}}`, w.Body.String())
}
