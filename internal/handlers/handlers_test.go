package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rubnab73/School/internal/config"
	"github.com/rubnab73/School/internal/events"
	"github.com/rubnab73/School/internal/models"
	"github.com/rubnab73/School/internal/repositories/postgres"
	"github.com/rubnab73/School/internal/services"
	"github.com/rubnab73/School/internal/testutil"
	"github.com/rubnab73/School/internal/utils"
	"github.com/rubnab73/School/internal/validator"
)

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithSSO(t, config.CasdoorConfig{})
}

func newTestServerWithSSO(t *testing.T, casdoor config.CasdoorConfig) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	slogger := testutil.NewLogger()
	logger := utils.NewSlogLogger(slogger)

	repo := postgres.NewPostgreSQLRepository(postgres.RepositoryConfig{DB: db})
	sm := services.NewServiceManager(db, repo, slogger, validator.New(), events.NewMockEventPublisher(slogger), services.ServiceManagerConfig{
		DepartmentPolicy: config.PolicyLegacy,
		BcryptCost:       4,
	})
	require.NoError(t, sm.Initialize(context.Background()))

	store := NewCookieStore(&config.Config{
		SessionSecret: "test-session-secret-0123456789",
		SessionMaxAge: 3600,
	})

	router := gin.New()
	SetupMiddleware(router, logger)
	NewHandlerManager(sm, store, casdoor, logger).SetupRoutes(router)

	return &testServer{router: router, db: db}
}

func (s *testServer) do(method, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}

	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// login creates a user with the given role and returns its session cookies.
func (s *testServer) login(t *testing.T, username string, role models.Role) []*http.Cookie {
	t.Helper()
	testutil.CreateUser(t, s.db, username, "password", role)

	w := s.do(http.MethodPost, "/login", url.Values{"username": {username}, "password": {"password"}}, nil)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/students", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func TestUnauthenticatedRedirectsToLogin(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/students", "/courses", "/departments", "/activity"} {
		w := s.do(http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, "/login", w.Header().Get("Location"), path)
	}
}

func TestPublicPages(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/", "/signup", "/login"} {
		w := s.do(http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	w := s.do(http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestDepartmentsRoleGate(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		username string
		role     models.Role
		want     int
	}{
		{username: "stu", role: models.RoleStudent, want: http.StatusForbidden},
		{username: "tea", role: models.RoleTeacher, want: http.StatusOK},
		{username: "adm", role: models.RoleAdmin, want: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.role.Name(), func(t *testing.T) {
			cookies := s.login(t, tt.username, tt.role)
			w := s.do(http.MethodGet, "/departments", nil, cookies)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRegisterStudent(t *testing.T) {
	s := newTestServer(t)
	dept := testutil.CreateDepartment(t, s.db, "Science")
	require.Equal(t, uint(1), dept.ID)

	w := s.do(http.MethodPost, "/register", url.Values{
		"username":     {"newstudent"},
		"password":     {"password"},
		"role":         {"STUDENT"},
		"departmentId": {"1"},
	}, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	var user models.User
	require.NoError(t, s.db.Preload("Student").Where("username = ?", "newstudent").First(&user).Error)
	assert.Equal(t, models.RoleStudent, user.Role)
	require.NotNil(t, user.Student)
	assert.Equal(t, "newstudent", user.Student.Name)
	require.NotNil(t, user.Student.DepartmentID)
	assert.Equal(t, uint(1), *user.Student.DepartmentID)

	w = s.do(http.MethodPost, "/register", url.Values{
		"username": {"newstudent"},
		"password": {"other"},
		"role":     {"TEACHER"},
	}, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "Username already exists")

	w = s.do(http.MethodPost, "/register", url.Values{
		"username": {"someone"},
		"password": {"pw"},
		"role":     {"JANITOR"},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/register", url.Values{
		"username": {"accent"},
		"password": {strings.Repeat("é", 40)},
		"role":     {"STUDENT"},
	}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "password must be at most 72 bytes")
}

func TestLoginFailureAndLogout(t *testing.T) {
	s := newTestServer(t)
	cookies := s.login(t, "lou", models.RoleAdmin)

	w := s.do(http.MethodPost, "/login", url.Values{"username": {"lou"}, "password": {"nope"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password")

	w = s.do(http.MethodPost, "/logout", nil, cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	var expired bool
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionName && c.MaxAge < 0 {
			expired = true
		}
	}
	assert.True(t, expired)
}

func TestEnrollmentToggle(t *testing.T) {
	s := newTestServer(t)
	cookies := s.login(t, "enrollee", models.RoleStudent)
	for _, title := range []string{"C1", "C2", "C3", "C4", "C5"} {
		testutil.CreateCourse(t, s.db, title, nil)
	}

	var student models.Student
	require.NoError(t, s.db.Where("name = ?", "enrollee").First(&student).Error)

	countEnrollments := func() int64 {
		var n int64
		require.NoError(t, s.db.Model(&models.Enrollment{}).
			Where("student_id = ? AND course_id = ?", student.ID, 5).
			Count(&n).Error)
		return n
	}

	w := s.do(http.MethodPost, "/courses/enroll/5", nil, cookies)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/courses", w.Header().Get("Location"))
	assert.Equal(t, int64(1), countEnrollments())

	w = s.do(http.MethodGet, "/courses", nil, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Unenroll")

	w = s.do(http.MethodPost, "/courses/enroll/5", nil, cookies)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, int64(0), countEnrollments())

	// Unknown course is skipped
	w = s.do(http.MethodPost, "/courses/enroll/99", nil, cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/courses", w.Header().Get("Location"))
}

func TestDeleteDepartmentGuard(t *testing.T) {
	s := newTestServer(t)
	cookies := s.login(t, "head", models.RoleTeacher)
	busy := testutil.CreateDepartment(t, s.db, "Busy")
	empty := testutil.CreateDepartment(t, s.db, "Empty")
	testutil.CreateStudent(t, s.db, "kid", &busy.ID)

	w := s.do(http.MethodGet, "/departments/delete/"+itoa(busy.ID), nil, cookies)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), services.DepartmentHasStudentsMessage)

	w = s.do(http.MethodGet, "/departments/delete/"+itoa(empty.ID), nil, cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/departments", w.Header().Get("Location"))

	var count int64
	require.NoError(t, s.db.Model(&models.Department{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestStudentRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "boss", models.RoleAdmin)
	student := s.login(t, "pupil", models.RoleStudent)
	dept := testutil.CreateDepartment(t, s.db, "Maths")

	w := s.do(http.MethodGet, "/students/new", nil, admin)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/students/new", nil, student)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/students", url.Values{
		"name": {"Zed"}, "email": {"zed@school.test"}, "departmentId": {itoa(dept.ID)},
	}, admin)
	require.Equal(t, http.StatusFound, w.Code)

	var zed models.Student
	require.NoError(t, s.db.Where("name = ?", "Zed").First(&zed).Error)

	w = s.do(http.MethodGet, "/students/edit/"+itoa(zed.ID), nil, student)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "zed@school.test")

	w = s.do(http.MethodGet, "/students/edit/999", nil, student)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/students", w.Header().Get("Location"))

	w = s.do(http.MethodPost, "/students/"+itoa(zed.ID), url.Values{
		"name": {"Zed Updated"}, "email": {"zed@school.test"}, "departmentId": {itoa(dept.ID)},
	}, student)
	require.Equal(t, http.StatusFound, w.Code)
	require.NoError(t, s.db.First(&zed, zed.ID).Error)
	assert.Equal(t, "Zed Updated", zed.Name)

	w = s.do(http.MethodGet, "/students", nil, student)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Zed Updated")

	w = s.do(http.MethodGet, "/students/export", nil, student)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.NotZero(t, w.Body.Len())
}

func TestCourseCreateAndActivity(t *testing.T) {
	s := newTestServer(t)
	teacher := s.login(t, "prof", models.RoleTeacher)
	admin := s.login(t, "root", models.RoleAdmin)

	w := s.do(http.MethodPost, "/courses/save", url.Values{"title": {"Geometry"}, "description": {"Shapes"}}, teacher)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/courses", w.Header().Get("Location"))

	w = s.do(http.MethodPost, "/courses/save", url.Values{"title": {""}}, teacher)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/courses/save", url.Values{"title": {"Nope"}}, admin)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/activity", nil, admin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), string(models.ActivityCourseCreated))

	w = s.do(http.MethodGet, "/activity", nil, teacher)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestSSOCallbackRequiresIssuedState(t *testing.T) {
	s := newTestServerWithSSO(t, config.CasdoorConfig{
		Endpoint:    "https://sso.school.test",
		ClientID:    "school-client",
		Application: "school",
		RedirectURL: "http://localhost:8080/login/sso/callback",
	})

	w := s.do(http.MethodGet, "/login/sso", nil, nil)
	require.Equal(t, http.StatusFound, w.Code)

	location, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "sso.school.test", location.Host)
	state := location.Query().Get("state")
	require.NotEmpty(t, state)
	assert.NotEqual(t, "school", state)

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	tests := []struct {
		name    string
		query   string
		cookies []*http.Cookie
	}{
		{name: "no session", query: "?code=attacker&state=" + state},
		{name: "missing state", query: "?code=attacker", cookies: cookies},
		{name: "mismatched state", query: "?code=attacker&state=school", cookies: cookies},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodGet, "/login/sso/callback"+tt.query, nil, tt.cookies)
			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.Contains(t, w.Body.String(), "Single sign-on failed")
		})
	}
}

func TestStudentFormsRejectUnparsableDepartment(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "boss", models.RoleAdmin)
	student := s.login(t, "pupil", models.RoleStudent)
	dept := testutil.CreateDepartment(t, s.db, "Maths")
	existing := testutil.CreateStudent(t, s.db, "Kept", &dept.ID)

	w := s.do(http.MethodPost, "/students", url.Values{
		"name": {"Nobody"}, "departmentId": {"abc"},
	}, admin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), invalidFormMessage)

	var count int64
	require.NoError(t, s.db.Model(&models.Student{}).Where("name = ?", "Nobody").Count(&count).Error)
	assert.Zero(t, count)

	w = s.do(http.MethodPost, "/students/"+itoa(existing.ID), url.Values{
		"name": {"Renamed"}, "departmentId": {"abc"},
	}, student)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), invalidFormMessage)

	var reloaded models.Student
	require.NoError(t, s.db.First(&reloaded, existing.ID).Error)
	assert.Equal(t, "Kept", reloaded.Name)
	require.NotNil(t, reloaded.DepartmentID)
	assert.Equal(t, dept.ID, *reloaded.DepartmentID)
}
