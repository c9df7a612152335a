package handler

import (
	"bytes"
	"context"
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
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"smartstudy/internal/apperror"
	"smartstudy/internal/auth"
	"smartstudy/internal/http/middleware"
	"smartstudy/internal/model"
	"smartstudy/internal/service"
	serviceMocks "smartstudy/internal/service/mocks"
	"smartstudy/internal/storage"
	storeMocks "smartstudy/internal/storage/mocks"
)

const (
	testID    = "33333333-3333-3333-3333-333333333333"
	adminID   = "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	studentID = "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
)

type recordingReporter struct {
	errs []error
}

func (r *recordingReporter) Report(err error, _ map[string]any) { r.errs = append(r.errs, err) }

// testServer wires the full router against service mocks.
type testServer struct {
	app      *fiber.App
	tokens   *auth.Manager
	reporter *recordingReporter
	store    *storeMocks.MockStorage
	users    *serviceMocks.MockUserService
	depts    *serviceMocks.MockDepartmentService
	subjects *serviceMocks.MockSubjectService
	notes    *serviceMocks.MockMaterialService
	pyqs     *serviceMocks.MockMaterialService
	syllabus *serviceMocks.MockMaterialService
	settings *serviceMocks.MockSettingsService
	subs     *serviceMocks.MockSubscriberService
	admin    *serviceMocks.MockAdminService
	predict  *serviceMocks.MockPredictService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	s := &testServer{
		tokens:   auth.NewManager("test-secret", time.Hour),
		reporter: &recordingReporter{},
		store:    new(storeMocks.MockStorage),
		users:    new(serviceMocks.MockUserService),
		depts:    new(serviceMocks.MockDepartmentService),
		subjects: new(serviceMocks.MockSubjectService),
		notes:    &serviceMocks.MockMaterialService{MaterialKind: model.KindNotes},
		pyqs:     &serviceMocks.MockMaterialService{MaterialKind: model.KindPYQ},
		syllabus: &serviceMocks.MockMaterialService{MaterialKind: model.KindSyllabus},
		settings: new(serviceMocks.MockSettingsService),
		subs:     new(serviceMocks.MockSubscriberService),
		admin:    new(serviceMocks.MockAdminService),
		predict:  new(serviceMocks.MockPredictService),
	}

	s.app = fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zerolog.Nop(), s.reporter)})
	s.app.Use(middleware.RequestID())
	RegisterRoutes(s.app, Deps{
		DB:          sqlPinger{},
		Store:       s.store,
		Guard:       middleware.NewAuthGuard(s.tokens, nil),
		APIBasePath: "/api",
		Services: Services{
			Users:       s.users,
			Departments: s.depts,
			Subjects:    s.subjects,
			Notes:       s.notes,
			PYQs:        s.pyqs,
			Syllabus:    s.syllabus,
			Settings:    s.settings,
			Subscribers: s.subs,
			Admin:       s.admin,
			Predict:     s.predict,
		},
	})
	return s
}

func (s *testServer) token(t *testing.T, userID string, role model.Role) string {
	t.Helper()
	tok, err := s.tokens.Issue(userID, role)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (s *testServer) enableModules() {
	st := model.DefaultSettings()
	s.settings.On("Get", mock.Anything).Return(&st, nil)
}

func (s *testServer) do(t *testing.T, method, path, authz string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set(fiber.HeaderContentType, contentType)
	}
	if authz != "" {
		req.Header.Set(fiber.HeaderAuthorization, authz)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (s *testServer) doJSON(t *testing.T, method, path, authz string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	return s.do(t, method, path, authz, r, fiber.MIMEApplicationJSON)
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

type sqlPinger struct{}

func (sqlPinger) PingContext(context.Context) error { return nil }

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestErrorHandler(t *testing.T) {
	reporter := &recordingReporter{}
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zerolog.Nop(), reporter)})
	app.Use(middleware.RequestID())
	app.Get("/validation", func(c *fiber.Ctx) error {
		return apperror.Validation("title is required", map[string]string{"title": "title is required"})
	})
	app.Get("/internal", func(c *fiber.Ctx) error {
		return errors.New("pq: connection refused to 10.0.0.3")
	})
	app.Get("/upstream", func(c *fiber.Ctx) error {
		return apperror.Upstream("Error processing prediction", "Traceback", nil)
	})
	app.Get("/maintenance", func(c *fiber.Ctx) error {
		return apperror.Unavailable("down").WithCode("MAINTENANCE")
	})

	t.Run("validation carries fields", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/validation", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
		assert.Equal(t, "title is required", body.Error.Fields["title"])
		assert.NotEmpty(t, body.RequestID)
	})

	t.Run("internal hides cause and reports", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/internal", nil))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
		assert.Equal(t, "internal server error", body.Error.Message)
		assert.Len(t, reporter.errs, 1)
	})

	t.Run("upstream keeps detail", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/upstream", nil))
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "UPSTREAM_ERROR", body.Error.Code)
		assert.Equal(t, "Traceback", body.Error.Detail)
	})

	t.Run("unavailable is not reported", func(t *testing.T) {
		before := len(reporter.errs)
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/maintenance", nil))
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "MAINTENANCE", decodeError(t, resp).Error.Code)
		assert.Len(t, reporter.errs, before)
	})
}

func TestRouting(t *testing.T) {
	s := newTestServer(t)

	t.Run("not found route", func(t *testing.T) {
		resp := s.do(t, http.MethodGet, "/non-existent", "", nil, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp := s.do(t, http.MethodPost, "/healthz", "", nil, "")
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})
}

func TestUsers(t *testing.T) {
	t.Run("register", func(t *testing.T) {
		s := newTestServer(t)
		in := service.RegisterInput{Username: "alice", Email: "a@x.com", Password: "pw123456"}
		s.users.On("Register", mock.Anything, in).Return(&service.AuthResult{
			User:  &model.User{ID: studentID, Username: "alice", Email: "a@x.com", Role: model.RoleStudent},
			Token: "tok",
		}, nil)

		resp := s.doJSON(t, http.MethodPost, "/api/users/register", "", in)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		var body map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "tok", body["token"])
		assert.Equal(t, "student", body["role"])
		assert.NotContains(t, body, "password")
	})

	t.Run("login with wrong password", func(t *testing.T) {
		s := newTestServer(t)
		s.users.On("Login", mock.Anything, service.LoginInput{Email: "a@x.com", Password: "wrong"}).
			Return(nil, apperror.InvalidCredentials("invalid email or password"))

		resp := s.doJSON(t, http.MethodPost, "/api/users/login", "", map[string]string{"email": "a@x.com", "password": "wrong"})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "INVALID_CREDENTIALS", body.Error.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		s := newTestServer(t)
		resp := s.do(t, http.MethodPost, "/api/users/login", "", strings.NewReader("{"), fiber.MIMEApplicationJSON)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "VALIDATION_ERROR", decodeError(t, resp).Error.Code)
	})

	t.Run("profile", func(t *testing.T) {
		s := newTestServer(t)
		s.users.On("Profile", mock.Anything, studentID).
			Return(&model.User{ID: studentID, Username: "alice", Role: model.RoleStudent}, nil)

		resp := s.do(t, http.MethodGet, "/api/users/profile", s.token(t, studentID, model.RoleStudent), nil, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		resp = s.do(t, http.MethodGet, "/api/users/profile", "", nil, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("list requires admin", func(t *testing.T) {
		s := newTestServer(t)
		s.users.On("List", mock.Anything).Return([]model.User{}, nil)

		resp := s.do(t, http.MethodGet, "/api/users", s.token(t, studentID, model.RoleStudent), nil, "")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp = s.do(t, http.MethodGet, "/api/admin/users", s.token(t, adminID, model.RoleAdmin), nil, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		b, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `[]`, string(b))
	})

	t.Run("delete alias", func(t *testing.T) {
		s := newTestServer(t)
		s.users.On("Delete", mock.Anything, studentID).Return(nil)

		resp := s.do(t, http.MethodDelete, "/api/admin/users/"+studentID, s.token(t, adminID, model.RoleAdmin), nil, "")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, studentID, body["id"])
	})
}

func TestDepartmentsAndSubjects(t *testing.T) {
	t.Run("public list", func(t *testing.T) {
		s := newTestServer(t)
		s.depts.On("List", mock.Anything).Return([]model.Department{{ID: testID, Name: "CS"}}, nil)

		resp := s.do(t, http.MethodGet, "/api/departments", "", nil, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("create requires admin", func(t *testing.T) {
		s := newTestServer(t)
		resp := s.doJSON(t, http.MethodPost, "/api/departments", "", service.DepartmentInput{Name: "CS"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		s.depts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("delete conflict", func(t *testing.T) {
		s := newTestServer(t)
		s.depts.On("Delete", mock.Anything, testID).Return(apperror.Conflict("department still has 2 subject(s); delete them first"))

		resp := s.do(t, http.MethodDelete, "/api/departments/"+testID, s.token(t, adminID, model.RoleAdmin), nil, "")
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("subject create records caller", func(t *testing.T) {
		s := newTestServer(t)
		in := service.SubjectInput{Name: "Algorithms", Department: testID}
		s.subjects.On("Create", mock.Anything, adminID, in).Return(&model.Subject{ID: testID, Name: "Algorithms"}, nil)

		resp := s.doJSON(t, http.MethodPost, "/api/subjects", s.token(t, adminID, model.RoleAdmin), in)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		s.subjects.AssertExpectations(t)
	})

	t.Run("subject list by department", func(t *testing.T) {
		s := newTestServer(t)
		s.subjects.On("List", mock.Anything, testID).Return([]model.Subject{}, nil)

		resp := s.do(t, http.MethodGet, "/api/subjects?department="+testID, "", nil, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		s.subjects.AssertExpectations(t)
	})
}

func multipartBody(t *testing.T, fields map[string]string, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, _ = part.Write([]byte(content))
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestMaterials(t *testing.T) {
	t.Run("multipart create", func(t *testing.T) {
		s := newTestServer(t)
		s.enableModules()
		s.pyqs.On("Create", mock.Anything,
			service.MaterialInput{Title: "2022 paper", Subject: testID, Year: 2022},
			mock.MatchedBy(func(u *service.Upload) bool {
				return u != nil && u.Filename == "paper.pdf" && u.Size == int64(len("%PDF-1.4"))
			}),
		).Return(&model.Material{ID: testID, Kind: model.KindPYQ, FilePath: "uploads/pyq/x.pdf"}, nil)

		body, ct := multipartBody(t, map[string]string{"title": "2022 paper", "subject": testID, "year": "2022"}, "paper.pdf", "%PDF-1.4")
		resp := s.do(t, http.MethodPost, "/api/pyqs", s.token(t, adminID, model.RoleAdmin), body, ct)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		s.pyqs.AssertExpectations(t)
	})

	t.Run("non numeric year", func(t *testing.T) {
		s := newTestServer(t)
		s.enableModules()

		body, ct := multipartBody(t, map[string]string{"title": "t", "subject": testID, "year": "twenty"}, "", "")
		resp := s.do(t, http.MethodPost, "/api/syllabus", s.token(t, adminID, model.RoleAdmin), body, ct)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "year must be a number", decodeError(t, resp).Error.Fields["year"])
	})

	t.Run("json create with file path", func(t *testing.T) {
		s := newTestServer(t)
		s.enableModules()
		s.notes.On("Create", mock.Anything,
			service.MaterialInput{Title: "Week 1", Subject: testID, FilePath: "uploads/notes/a.pdf"},
			(*service.Upload)(nil),
		).Return(&model.Material{ID: testID}, nil)

		resp := s.doJSON(t, http.MethodPost, "/api/notes", s.token(t, adminID, model.RoleAdmin),
			map[string]any{"title": "Week 1", "subject": testID, "filePath": "uploads/notes/a.pdf"})

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		s.notes.AssertExpectations(t)
	})

	t.Run("list with department alias", func(t *testing.T) {
		s := newTestServer(t)
		s.enableModules()
		s.notes.On("List", mock.Anything, service.MaterialQuery{Department: testID}).Return([]model.Material{}, nil)

		resp := s.do(t, http.MethodGet, "/api/notes?department="+testID, "", nil, "")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		b, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `[]`, string(b))
	})

	t.Run("list with subject and departmentId", func(t *testing.T) {
		s := newTestServer(t)
		s.enableModules()
		s.syllabus.On("List", mock.Anything, service.MaterialQuery{Subject: testID, Department: adminID}).Return([]model.Material{}, nil)

		resp := s.do(t, http.MethodGet, "/api/syllabus?subject="+testID+"&departmentId="+adminID, "", nil, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		s.syllabus.AssertExpectations(t)
	})

	t.Run("delete", func(t *testing.T) {
		s := newTestServer(t)
		s.enableModules()
		s.pyqs.On("Delete", mock.Anything, testID).Return(nil)

		resp := s.do(t, http.MethodDelete, "/api/pyqs/"+testID, s.token(t, adminID, model.RoleAdmin), nil, "")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "PYQ deleted successfully", body["message"])
	})

	t.Run("get not found", func(t *testing.T) {
		s := newTestServer(t)
		s.enableModules()
		s.notes.On("Get", mock.Anything, testID).Return(nil, apperror.NotFound("notes not found"))

		resp := s.do(t, http.MethodGet, "/api/notes/"+testID, "", nil, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("module disabled", func(t *testing.T) {
		s := newTestServer(t)
		st := model.DefaultSettings()
		st.Modules[model.ModuleSyllabus] = false
		s.settings.On("Get", mock.Anything).Return(&st, nil)

		resp := s.do(t, http.MethodGet, "/api/syllabus", "", nil, "")

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "MODULE_DISABLED", decodeError(t, resp).Error.Code)
	})
}

func TestAdmin(t *testing.T) {
	t.Run("stats without token", func(t *testing.T) {
		s := newTestServer(t)
		resp := s.do(t, http.MethodGet, "/api/admin/stats", "", nil, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		s.admin.AssertNotCalled(t, "Stats", mock.Anything)
	})

	t.Run("stats as student", func(t *testing.T) {
		s := newTestServer(t)
		resp := s.do(t, http.MethodGet, "/api/admin/stats", s.token(t, studentID, model.RoleStudent), nil, "")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("stats", func(t *testing.T) {
		s := newTestServer(t)
		s.admin.On("Stats", mock.Anything).Return(&model.Stats{Users: 2, Syllabus: 1}, nil)

		resp := s.do(t, http.MethodGet, "/api/admin/stats", s.token(t, adminID, model.RoleAdmin), nil, "")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		b, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"users":2,"notes":0,"departments":0,"subjects":0,"pyqs":0,"syllabus":1}`, string(b))
	})

	t.Run("settings explicit false reaches service", func(t *testing.T) {
		s := newTestServer(t)
		off := false
		st := model.DefaultSettings()
		s.settings.On("Update", mock.Anything, model.SettingsPatch{MaintenanceMode: &off}).Return(&st, nil)

		resp := s.doJSON(t, http.MethodPut, "/api/admin/settings", s.token(t, adminID, model.RoleAdmin),
			map[string]bool{"maintenanceMode": false})

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		s.settings.AssertExpectations(t)
	})
}

func TestSubscribe(t *testing.T) {
	s := newTestServer(t)
	s.subs.On("Subscribe", mock.Anything, service.SubscribeInput{Email: "a@x.com"}).
		Return(&model.Subscriber{ID: testID, Email: "a@x.com"}, nil).Once()
	s.subs.On("Subscribe", mock.Anything, service.SubscribeInput{Email: "a@x.com"}).
		Return(nil, apperror.Conflict("email is already subscribed")).Once()

	resp := s.doJSON(t, http.MethodPost, "/api/subscribe", "", map[string]string{"email": "a@x.com"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, true, body["success"])

	resp = s.doJSON(t, http.MethodPost, "/api/subscribe", "", map[string]string{"email": "a@x.com"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "email is already subscribed", decodeError(t, resp).Error.Message)
}

func TestPredict(t *testing.T) {
	t.Run("placeholder output", func(t *testing.T) {
		s := newTestServer(t)
		s.enableModules()
		raw := "not json"
		s.predict.On("Predict", mock.Anything, service.PredictInput{Query: "os"}).Return(&service.Prediction{
			Questions: json.RawMessage(`["Error parsing model output."]`),
			Raw:       &raw,
		}, nil)

		resp := s.doJSON(t, http.MethodPost, "/api/predict", "", map[string]string{"query": "os"})

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		b, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"questions":["Error parsing model output."],"raw":"not json"}`, string(b))
	})

	t.Run("disabled", func(t *testing.T) {
		s := newTestServer(t)
		st := model.DefaultSettings()
		st.Modules[model.ModulePredictor] = false
		s.settings.On("Get", mock.Anything).Return(&st, nil)

		resp := s.doJSON(t, http.MethodPost, "/api/predict", "", map[string]string{"query": "os"})

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		s.predict.AssertNotCalled(t, "Predict", mock.Anything, mock.Anything)
	})
}

func TestServeUpload(t *testing.T) {
	t.Run("streams object", func(t *testing.T) {
		s := newTestServer(t)
		s.store.On("Get", mock.Anything, "uploads/notes/a.pdf").Return(
			io.NopCloser(strings.NewReader("%PDF")),
			storage.ObjectInfo{Key: "uploads/notes/a.pdf", Size: 4, ContentType: "application/pdf"},
			nil,
		)

		resp := s.do(t, http.MethodGet, "/uploads/notes/a.pdf", "", nil, "")

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
		b, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "%PDF", string(b))
	})

	t.Run("missing object", func(t *testing.T) {
		s := newTestServer(t)
		s.store.On("Get", mock.Anything, "uploads/notes/none.pdf").Return(nil, storage.ObjectInfo{}, storage.ErrNotFound)

		resp := s.do(t, http.MethodGet, "/uploads/notes/none.pdf", "", nil, "")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("presigned redirect", func(t *testing.T) {
		store := new(storeMocks.MockStorage)
		store.On("PresignGet", mock.Anything, "uploads/pyq/b.pdf", time.Minute).Return("https://minio.local/b.pdf?sig=1", nil)
		app := fiber.New()
		app.Get("/uploads/*", ServeUpload(store, time.Minute))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/uploads/pyq/b.pdf", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
		assert.Equal(t, "https://minio.local/b.pdf?sig=1", resp.Header.Get(fiber.HeaderLocation))
	})
}
