package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/spec-kit/job-board/internal/api/http"
	"github.com/spec-kit/job-board/internal/api/http/handlers"
	"github.com/spec-kit/job-board/internal/auth"
	"github.com/spec-kit/job-board/internal/config"
	"github.com/spec-kit/job-board/internal/domain"
	"github.com/spec-kit/job-board/internal/events"
	"github.com/spec-kit/job-board/internal/observability"
	"github.com/spec-kit/job-board/internal/persistence"
	"github.com/spec-kit/job-board/internal/service"
)

type memUserRepo struct {
	seq   int
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.seq++
	user.ID = fmt.Sprintf("user-%d", r.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *memUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) GetByEmailAndResetCode(_ context.Context, email, code string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email && user.ResetCode != nil && *user.ResetCode == code {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) List(_ context.Context) ([]domain.User, error) {
	users := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		users = append(users, *user)
	}
	return users, nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

type memJobRepo struct {
	seq  int
	jobs map[string]*domain.Job
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{jobs: make(map[string]*domain.Job)}
}

func (r *memJobRepo) Create(_ context.Context, job *domain.Job) error {
	r.seq++
	job.ID = fmt.Sprintf("job-%d", r.seq)
	job.CreatedAt = time.Now()
	job.UpdatedAt = job.CreatedAt
	stored := *job
	r.jobs[job.ID] = &stored
	return nil
}

func (r *memJobRepo) Update(_ context.Context, job *domain.Job) error {
	if _, ok := r.jobs[job.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *job
	r.jobs[job.ID] = &stored
	return nil
}

func (r *memJobRepo) GetByID(_ context.Context, id string) (*domain.Job, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *job
	return &copied, nil
}

func (r *memJobRepo) List(_ context.Context) ([]domain.Job, error) {
	jobs := make([]domain.Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		jobs = append(jobs, *job)
	}
	return jobs, nil
}

func (r *memJobRepo) ListByCategory(_ context.Context, category string) ([]domain.Job, error) {
	jobs := make([]domain.Job, 0)
	for _, job := range r.jobs {
		if job.Category == category {
			jobs = append(jobs, *job)
		}
	}
	return jobs, nil
}

func (r *memJobRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.jobs[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.jobs, id)
	return nil
}

type fakeUploader struct {
	url string
}

func (u *fakeUploader) Upload(_ context.Context, _ []byte, _ string) (string, error) {
	return u.url, nil
}

type testEnv struct {
	app        *fiber.App
	dispatcher events.Dispatcher
	uploader   *fakeUploader
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:           "test-secret",
			AccessTokenTTLHours: 24,
			BcryptCost:          bcrypt.MinCost,
		},
	}

	userRepo := newMemUserRepo()
	jobRepo := newMemJobRepo()
	dispatcher := events.NewInMemoryDispatcher()
	uploader := &fakeUploader{url: "https://cdn.example.com/logo.png"}

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
	})
	jobService := service.NewJobService(service.JobDependencies{
		JobRepo:    jobRepo,
		Uploader:   uploader,
		Dispatcher: dispatcher,
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("test", "dev", &persistence.Postgres{}, &persistence.Redis{}),
		Users:          handlers.NewUsersHandler(authService),
		Jobs:           handlers.NewJobsHandler(jobService),
		AuthMiddleware: auth.NewMiddleware(authService.TokenManager(), userRepo),
	})

	return &testEnv{app: app, dispatcher: dispatcher, uploader: uploader}
}

func (e *testEnv) doJSON(t *testing.T, method, path string, payload any, token string) (*http.Response, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func (e *testEnv) register(t *testing.T, email, password string) (string, string) {
	t.Helper()
	resp, body := e.doJSON(t, http.MethodPost, "/auth/register", fiber.Map{
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return body["id"].(string), body["token"].(string)
}

func TestRegisterLoginCredentialsScenario(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.doJSON(t, http.MethodPost, "/auth/register", fiber.Map{
		"email":    "a@x.com",
		"password": "p1",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "a@x.com", body["email"])
	assert.Equal(t, false, body["isAdmin"])
	assert.NotEmpty(t, body["token"])
	assert.NotContains(t, body, "password")

	resp, _ = env.doJSON(t, http.MethodPost, "/auth/login", fiber.Map{
		"email":    "a@x.com",
		"password": "wrong",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.doJSON(t, http.MethodPost, "/auth/login", fiber.Map{
		"email":    "a@x.com",
		"password": "p1",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := body["token"].(string)

	resp, body = env.doJSON(t, http.MethodGet, "/auth/credentials", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "a@x.com", body["email"])
	assert.Equal(t, false, body["isAdmin"])
	assert.NotContains(t, body, "password")
}

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.doJSON(t, http.MethodPost, "/auth/register", fiber.Map{"email": "a@x.com"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	env.register(t, "a@x.com", "p1")
	resp, _ = env.doJSON(t, http.MethodPost, "/auth/register", fiber.Map{
		"email":    "a@x.com",
		"password": "different",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegisterAdmin(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.doJSON(t, http.MethodPost, "/auth/register-admin", fiber.Map{
		"email":    "admin@x.com",
		"password": "p1",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["isAdmin"])
}

func TestCredentials_RequiresToken(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.doJSON(t, http.MethodGet, "/auth/credentials", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPasswordResetScenario(t *testing.T) {
	env := newTestEnv(t)

	var emailedCode string
	env.dispatcher.Subscribe(events.EventPasswordResetRequested, func(_ context.Context, event events.Event) error {
		emailedCode = event.Payload.(events.PasswordResetRequestedPayload).ResetCode
		return nil
	})

	env.register(t, "a@x.com", "old-pass")

	resp, _ := env.doJSON(t, http.MethodPost, "/auth/reset", fiber.Map{"email": "nobody@x.com"}, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := env.doJSON(t, http.MethodPost, "/auth/reset", fiber.Map{"email": "a@x.com"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, emailedCode, 8)
	assert.NotContains(t, fmt.Sprint(body), emailedCode)

	resp, _ = env.doJSON(t, http.MethodPost, "/auth/reset-password", fiber.Map{
		"email":     "a@x.com",
		"resetCode": "wrong000",
		"password":  "new-pass",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.doJSON(t, http.MethodPost, "/auth/reset-password", fiber.Map{
		"email":     "a@x.com",
		"resetCode": emailedCode,
		"password":  "new-pass",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.doJSON(t, http.MethodPost, "/auth/login", fiber.Map{
		"email":    "a@x.com",
		"password": "old-pass",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.doJSON(t, http.MethodPost, "/auth/login", fiber.Map{
		"email":    "a@x.com",
		"password": "new-pass",
	}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUserManagement(t *testing.T) {
	env := newTestEnv(t)

	id, token := env.register(t, "a@x.com", "p1")
	env.register(t, "b@x.com", "p2")

	resp, _ := env.doJSON(t, http.MethodGet, "/auth", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	listResp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	raw, err := io.ReadAll(listResp.Body)
	require.NoError(t, err)
	var users []map[string]any
	require.NoError(t, json.Unmarshal(raw, &users))
	assert.Len(t, users, 2)

	resp, body := env.doJSON(t, http.MethodGet, "/auth/"+id, nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "a@x.com", body["email"])

	resp, _ = env.doJSON(t, http.MethodGet, "/auth/missing", nil, token)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = env.doJSON(t, http.MethodPut, "/auth/update/"+id, fiber.Map{
		"email": "renamed@x.com",
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "renamed@x.com", body["email"])

	resp, body = env.doJSON(t, http.MethodDelete, "/auth/delete/"+id, nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, body["id"])

	// the guard re-resolves the user, so the deleted account's token is refused
	resp, _ = env.doJSON(t, http.MethodGet, "/auth/credentials", nil, token)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func jobForm(t *testing.T, fields map[string]string, withLogo bool) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for key, val := range fields {
		require.NoError(t, writer.WriteField(key, val))
	}
	if withLogo {
		part, err := writer.CreateFormFile("logo", "logo.png")
		require.NoError(t, err)
		_, err = part.Write([]byte{0x89, 0x50, 0x4e, 0x47})
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return buf, writer.FormDataContentType()
}

func (e *testEnv) doMultipart(t *testing.T, method, path string, fields map[string]string, withLogo bool, token string) (*http.Response, map[string]any) {
	t.Helper()

	buf, contentType := jobForm(t, fields, withLogo)
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func TestJobLifecycle(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register(t, "admin@x.com", "p1")

	fields := map[string]string{
		"title":    "Backend Engineer",
		"company":  "Acme",
		"category": "Software Engineering",
		"location": "Remote",
	}

	resp, _ := env.doMultipart(t, http.MethodPost, "/data/jobs", fields, true, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.doMultipart(t, http.MethodPost, "/data/jobs", fields, false, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := env.doMultipart(t, http.MethodPost, "/data/jobs", fields, true, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "https://cdn.example.com/logo.png", body["logo"])
	jobID := body["id"].(string)

	resp, body = env.doJSON(t, http.MethodGet, "/data/jobs/"+jobID, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Backend Engineer", body["title"])

	resp, _ = env.doJSON(t, http.MethodGet, "/data/jobs/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/data/jobs/category/Software%20Engineering", nil)
	catResp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, catResp.StatusCode)
	raw, err := io.ReadAll(catResp.Body)
	require.NoError(t, err)
	var jobs []map[string]any
	require.NoError(t, json.Unmarshal(raw, &jobs))
	require.Len(t, jobs, 1)
	assert.Equal(t, jobID, jobs[0]["id"])

	resp, body = env.doMultipart(t, http.MethodPut, "/data/jobs/"+jobID, map[string]string{
		"title": "Senior Backend Engineer",
	}, false, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Senior Backend Engineer", body["title"])
	assert.Equal(t, "Acme", body["company"])

	resp, body = env.doJSON(t, http.MethodDelete, "/data/jobs/"+jobID, nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, jobID, body["id"])

	resp, _ = env.doJSON(t, http.MethodGet, "/data/jobs/"+jobID, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListJobsByCategory_KeepsPlusSign(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register(t, "admin@x.com", "p1")

	resp, _ := env.doMultipart(t, http.MethodPost, "/data/jobs", map[string]string{
		"title":    "Compiler Engineer",
		"company":  "Acme",
		"category": "C++",
	}, true, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/data/jobs/category/C++", nil)
	catResp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, catResp.StatusCode)
	raw, err := io.ReadAll(catResp.Body)
	require.NoError(t, err)
	var jobs []map[string]any
	require.NoError(t, json.Unmarshal(raw, &jobs))
	require.Len(t, jobs, 1)
	assert.Equal(t, "C++", jobs[0]["category"])
}

func TestUnmatchedRoute_NotFound(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.doJSON(t, http.MethodGet, "/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	errObj, ok := body["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", errObj["code"])
}

func TestListJobs_Public(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.register(t, "admin@x.com", "p1")

	resp, _ := env.doMultipart(t, http.MethodPost, "/data/jobs", map[string]string{
		"title":   "Backend Engineer",
		"company": "Acme",
	}, true, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	req := httptest.NewRequest(http.MethodGet, "/data/jobs", nil)
	listResp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	raw, err := io.ReadAll(listResp.Body)
	require.NoError(t, err)
	var jobs []map[string]any
	require.NoError(t, json.Unmarshal(raw, &jobs))
	assert.Len(t, jobs, 1)
}
