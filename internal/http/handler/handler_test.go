package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"datamorph/internal/http/middleware"
	"datamorph/internal/model"
	"datamorph/internal/service"
	serviceMocks "datamorph/internal/service/mocks"
)

const testUserID = "7c1e4d52-9a57-4f6b-9d0e-2f1f4c3b8a11"

func newApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zerolog.Nop())})
}

// asUser stands in for BearerAuth on routes registered directly in tests.
func asUser(c *fiber.Ctx) error {
	c.Locals(middleware.UserIDLocalKey, testUserID)
	return c.Next()
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func multipartRequest(t *testing.T, target, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = io.WriteString(part, content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func decodeDetail(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body model.ErrorDetail
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Detail
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := newApp()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "Database unavailable", decodeDetail(t, resp))
	})
}

func TestLiveness(t *testing.T) {
	app := newApp()
	app.Get("/healthz", Liveness())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "datamorph_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	app := newApp()
	app.Get("/metrics", Metrics(reg))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	b, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(b), "datamorph_test_total 1")
}

func TestSignup(t *testing.T) {
	mockSvc := new(serviceMocks.MockAuthService)
	app := newApp()
	app.Post("/signup", Signup(mockSvc))

	req := model.SignupRequest{Email: "ada@example.com", Password: "correct-horse", FullName: "Ada"}

	t.Run("created", func(t *testing.T) {
		res := &model.AuthResponse{
			User:   model.User{ID: testUserID, Email: req.Email, Tier: "starter"},
			Tokens: model.TokenPair{AccessToken: "a", RefreshToken: "r", TokenType: "bearer"},
		}
		mockSvc.On("Signup", mock.Anything, req).Return(res, nil).Once()

		resp, err := app.Test(jsonRequest(http.MethodPost, "/signup",
			`{"email":"ada@example.com","password":"correct-horse","full_name":"Ada"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var got model.AuthResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, "a", got.Tokens.AccessToken)
		assert.Equal(t, testUserID, got.User.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("email taken", func(t *testing.T) {
		mockSvc.On("Signup", mock.Anything, req).Return(nil, service.ErrEmailTaken).Once()

		resp, err := app.Test(jsonRequest(http.MethodPost, "/signup",
			`{"email":"ada@example.com","password":"correct-horse","full_name":"Ada"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "An account with this email already exists", decodeDetail(t, resp))
		mockSvc.AssertExpectations(t)
	})

	t.Run("validation errors", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/signup",
			`{"email":"not-an-email","password":"short"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		var body validationBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body.Detail, 3)

		byField := map[string]string{}
		for _, fe := range body.Detail {
			byField[fe.Loc[1]] = fe.Msg
		}
		assert.Equal(t, "value is not a valid email address", byField["email"])
		assert.Equal(t, "ensure this value has at least 8 characters", byField["password"])
		assert.Equal(t, "field required", byField["full_name"])
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodPost, "/signup", `{"email":`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func TestLogin(t *testing.T) {
	mockSvc := new(serviceMocks.MockAuthService)
	app := newApp()
	app.Post("/login", Login(mockSvc))

	creds := model.Credentials{Email: "ada@example.com", Password: "pw"}

	t.Run("ok", func(t *testing.T) {
		mockSvc.On("Login", mock.Anything, creds).
			Return(&model.AuthResponse{Tokens: model.TokenPair{AccessToken: "a"}}, nil).Once()

		resp, err := app.Test(jsonRequest(http.MethodPost, "/login", `{"email":"ada@example.com","password":"pw"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("bad credentials", func(t *testing.T) {
		mockSvc.On("Login", mock.Anything, creds).Return(nil, service.ErrInvalidCredentials).Once()

		resp, err := app.Test(jsonRequest(http.MethodPost, "/login", `{"email":"ada@example.com","password":"pw"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Invalid email or password", decodeDetail(t, resp))
		mockSvc.AssertExpectations(t)
	})

	t.Run("unexpected error is hidden", func(t *testing.T) {
		mockSvc.On("Login", mock.Anything, creds).Return(nil, errors.New("connection reset")).Once()

		resp, err := app.Test(jsonRequest(http.MethodPost, "/login", `{"email":"ada@example.com","password":"pw"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, "Internal server error", decodeDetail(t, resp))
	})
}

func TestRefreshAndMe(t *testing.T) {
	mockSvc := new(serviceMocks.MockAuthService)
	app := newApp()
	app.Post("/refresh", Refresh(mockSvc))
	app.Get("/me", asUser, Me(mockSvc))

	t.Run("refresh", func(t *testing.T) {
		mockSvc.On("Refresh", mock.Anything, "r1").Return(&model.TokenPair{AccessToken: "a2", RefreshToken: "r2"}, nil).Once()

		resp, err := app.Test(jsonRequest(http.MethodPost, "/refresh", `{"refresh_token":"r1"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var pair model.TokenPair
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&pair))
		assert.Equal(t, "r2", pair.RefreshToken)
	})

	t.Run("refresh rejected", func(t *testing.T) {
		mockSvc.On("Refresh", mock.Anything, "stale").Return(nil, service.ErrInvalidRefreshToken).Once()

		resp, err := app.Test(jsonRequest(http.MethodPost, "/refresh", `{"refresh_token":"stale"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("me", func(t *testing.T) {
		mockSvc.On("Profile", mock.Anything, testUserID).Return(&model.User{ID: testUserID, Email: "ada@example.com"}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var u map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&u))
		assert.Equal(t, "ada@example.com", u["email"])
		assert.NotContains(t, u, "password_hash")
	})

	mockSvc.AssertExpectations(t)
}

func TestUploadFile(t *testing.T) {
	projectID := uuid.NewString()

	t.Run("created", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockFileService)
		app := newApp()
		app.Post("/uploads", asUser, UploadFile(mockSvc, 1<<20))

		created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		mockSvc.On("Upload", mock.Anything, mock.MatchedBy(func(in service.UploadInput) bool {
			b, _ := io.ReadAll(in.Reader)
			return in.UserID == testUserID && in.ProjectID == projectID &&
				in.Filename == "data.csv" && in.Size == 7 && string(b) == "a,b\n1,2"
		})).Return(&model.File{
			ID: "f1", Filename: "data.csv", Format: "csv", Size: 7, Status: model.StatusPending, CreatedAt: created,
		}, nil).Once()

		resp, err := app.Test(multipartRequest(t, "/uploads", "data.csv", "a,b\n1,2", map[string]string{"project_id": projectID}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var res model.UploadResult
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.Equal(t, "f1", res.ID)
		assert.Equal(t, "csv", res.FormatDetected)
		assert.Equal(t, "2026-03-01T12:00:00Z", res.CreatedAt)
		mockSvc.AssertExpectations(t)
	})

	t.Run("project id from query", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockFileService)
		app := newApp()
		app.Post("/uploads", asUser, UploadFile(mockSvc, 1<<20))

		mockSvc.On("Upload", mock.Anything, mock.MatchedBy(func(in service.UploadInput) bool {
			return in.ProjectID == projectID
		})).Return(&model.File{ID: "f2"}, nil).Once()

		resp, err := app.Test(multipartRequest(t, "/uploads?project_id="+projectID, "x.json", "{}", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	tests := []struct {
		name       string
		maxBytes   int64
		filename   string
		fields     map[string]string
		svcErr     error
		wantStatus int
		wantDetail string
	}{
		{
			name:       "missing file",
			maxBytes:   1 << 20,
			wantStatus: http.StatusBadRequest,
			wantDetail: "File is required",
		},
		{
			name:       "too large for server",
			maxBytes:   4,
			filename:   "big.bin",
			wantStatus: http.StatusRequestEntityTooLarge,
			wantDetail: "File too large",
		},
		{
			name:       "storage limit",
			maxBytes:   1 << 20,
			filename:   "a.csv",
			svcErr:     &service.StorageLimitError{Used: 10, Limit: 12, Size: 7},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantDetail: "Storage limit exceeded. Used: 10, Limit: 12, File: 7",
		},
		{
			name:       "unknown user",
			maxBytes:   1 << 20,
			filename:   "a.csv",
			svcErr:     service.ErrUserNotFound,
			wantStatus: http.StatusNotFound,
			wantDetail: "User not found",
		},
		{
			name:       "project owned by someone else",
			maxBytes:   1 << 20,
			filename:   "a.csv",
			fields:     map[string]string{"project_id": projectID},
			svcErr:     service.ErrProjectNotFound,
			wantStatus: http.StatusNotFound,
			wantDetail: "Project not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(serviceMocks.MockFileService)
			app := newApp()
			app.Post("/uploads", asUser, UploadFile(mockSvc, tt.maxBytes))
			if tt.svcErr != nil {
				mockSvc.On("Upload", mock.Anything, mock.Anything).Return(nil, tt.svcErr).Once()
			}

			resp, err := app.Test(multipartRequest(t, "/uploads", tt.filename, "a,b\n1,2", tt.fields))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantDetail, decodeDetail(t, resp))
			mockSvc.AssertExpectations(t)
		})
	}

	t.Run("invalid project id", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockFileService)
		app := newApp()
		app.Post("/uploads", asUser, UploadFile(mockSvc, 1<<20))

		resp, err := app.Test(multipartRequest(t, "/uploads", "a.csv", "x", map[string]string{"project_id": "nope"}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		var body validationBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body.Detail, 1)
		assert.Equal(t, []string{"body", "project_id"}, body.Detail[0].Loc)
		mockSvc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	})
}

func TestFileLookups(t *testing.T) {
	fileID := uuid.NewString()
	file := &model.File{
		ID: fileID, Filename: "d.csv", Status: model.StatusProcessing, ProcessingProgress: 50,
	}

	mockSvc := new(serviceMocks.MockFileService)
	app := newApp()
	app.Get("/uploads/:file_id/progress", asUser, UploadProgress(mockSvc))
	app.Get("/uploads/:file_id", asUser, GetFile(mockSvc))
	app.Delete("/uploads/:file_id", asUser, DeleteFile(mockSvc))

	t.Run("progress", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, testUserID, fileID).Return(file, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/uploads/"+fileID+"/progress", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var p model.FileProgress
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
		assert.Equal(t, model.FileProgress{Status: model.StatusProcessing, Progress: 50}, p)
	})

	t.Run("get", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, testUserID, fileID).Return(file, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/uploads/"+fileID, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var info model.FileInfo
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
		assert.Equal(t, "d.csv", info.Filename)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, testUserID, fileID).Return(nil, service.ErrFileNotFound).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/uploads/"+fileID, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "File not found", decodeDetail(t, resp))
	})

	t.Run("invalid id", func(t *testing.T) {
		for _, target := range []string{"/uploads/abc", "/uploads/abc/progress"} {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode, target)
		}
	})

	t.Run("delete", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, testUserID, fileID).Return(nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, "/uploads/"+fileID, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	mockSvc.AssertExpectations(t)
}

func TestListProjectFiles(t *testing.T) {
	projectID := uuid.NewString()
	mockSvc := new(serviceMocks.MockFileService)
	app := newApp()
	app.Get("/uploads/project/:project_id", asUser, ListProjectFiles(mockSvc))

	t.Run("success", func(t *testing.T) {
		q := service.ListQuery{UserID: testUserID, ProjectID: projectID, Status: "done", Page: 2, PageSize: 5}
		mockSvc.On("List", mock.Anything, q).Return(&service.FileListResult{
			Items: []model.File{{ID: "a"}, {ID: "b"}},
			Total: 7,
		}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet,
			"/uploads/project/"+projectID+"?page=2&page_size=5&status=done", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var out model.FileList
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Len(t, out.Files, 2)
		assert.Equal(t, 7, out.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("defaults", func(t *testing.T) {
		q := service.ListQuery{UserID: testUserID, ProjectID: projectID, Page: 1, PageSize: service.DefaultPageSize}
		mockSvc.On("List", mock.Anything, q).Return(&service.FileListResult{}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/uploads/project/"+projectID, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var out map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, []any{}, out["files"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("bad paging", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet,
			"/uploads/project/"+projectID+"?page=0&page_size=500", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

		var body validationBody
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Len(t, body.Detail, 2)
	})
}

type fakeVerifier map[string]string

func (f fakeVerifier) VerifyAccess(token string) (string, error) {
	if id, ok := f[token]; ok {
		return id, nil
	}
	return "", errors.New("bad token")
}

func TestRegisterRoutes(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	authSvc := new(serviceMocks.MockAuthService)
	fileSvc := new(serviceMocks.MockFileService)
	projectSvc := new(serviceMocks.MockProjectService)
	app := newApp()
	app.Use(middleware.RequestID())
	RegisterRoutes(app, Deps{
		DB:             db,
		Auth:           authSvc,
		Files:          fileSvc,
		Projects:       projectSvc,
		Tokens:         fakeVerifier{"good": testUserID},
		MaxUploadBytes: 1 << 20,
		Gatherer:       prometheus.NewRegistry(),
	})

	fileID := uuid.NewString()

	t.Run("health", func(t *testing.T) {
		dbMock.ExpectPing()
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("metrics", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("missing token", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/uploads/"+fileID, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Bearer", resp.Header.Get(fiber.HeaderWWWAuthenticate))

		var body model.ErrorDetail
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "Not authenticated", body.Detail)
		assert.NotEmpty(t, body.RequestID)
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer forged")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Could not validate credentials", decodeDetail(t, resp))
	})

	t.Run("authenticated", func(t *testing.T) {
		fileSvc.On("Get", mock.Anything, testUserID, fileID).Return(&model.File{ID: fileID}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/uploads/"+fileID+"/progress", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer good")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		fileSvc.AssertExpectations(t)
	})

	t.Run("projects require a token", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/projects/", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("project routes", func(t *testing.T) {
		projectID := uuid.NewString()
		projectSvc.On("List", mock.Anything, testUserID, 1, service.DefaultPageSize).
			Return(&model.ProjectList{Projects: []model.Project{}}, nil).Once()
		projectSvc.On("Update", mock.Anything, testUserID, projectID, mock.Anything).
			Return(&model.Project{ID: projectID}, nil).Once()
		projectSvc.On("Delete", mock.Anything, testUserID, projectID).Return(nil).Once()

		for _, r := range []struct {
			req  *http.Request
			want int
		}{
			{httptest.NewRequest(http.MethodGet, "/api/v1/projects/", nil), http.StatusOK},
			{jsonRequest(http.MethodPatch, "/api/v1/projects/"+projectID, `{"status":"archived"}`), http.StatusOK},
			{httptest.NewRequest(http.MethodDelete, "/api/v1/projects/"+projectID, nil), http.StatusNoContent},
		} {
			r.req.Header.Set(fiber.HeaderAuthorization, "Bearer good")
			resp, err := app.Test(r.req)
			require.NoError(t, err)
			assert.Equal(t, r.want, resp.StatusCode, r.req.Method)
		}
		projectSvc.AssertExpectations(t)
	})

	t.Run("signup is public", func(t *testing.T) {
		authSvc.On("Signup", mock.Anything, mock.Anything).Return(&model.AuthResponse{}, nil).Once()

		resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/signup",
			`{"email":"a@b.co","password":"12345678","full_name":"A"}`))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		authSvc.AssertExpectations(t)
	})

	t.Run("unknown route", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/nope", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "Not Found", decodeDetail(t, resp))
	})
}
