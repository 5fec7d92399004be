package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"github.com/rubnab73/School/internal/config"
	"github.com/rubnab73/School/internal/models"
	"github.com/rubnab73/School/internal/services"
	"github.com/rubnab73/School/internal/utils"
	"github.com/rubnab73/School/web"
)

type HandlerManager struct {
	serviceManager    services.ServiceManager
	authHandler       *AuthHandler
	departmentHandler *DepartmentHandler
	studentHandler    *StudentHandler
	courseHandler     *CourseHandler
	activityHandler   *ActivityHandler
	sessionAuth       *SessionAuth
	casdoorAuth       *CasdoorAuth
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	store sessions.Store,
	casdoorConfig config.CasdoorConfig,
	logger utils.Logger,
) *HandlerManager {
	sessionAuth := NewSessionAuth(store, serviceManager.Auth(), logger)
	casdoorAuth := NewCasdoorAuth(casdoorConfig, serviceManager.Auth(), sessionAuth, logger)

	return &HandlerManager{
		serviceManager:    serviceManager,
		authHandler:       NewAuthHandler(serviceManager.Auth(), serviceManager.Department(), sessionAuth, casdoorAuth != nil, logger),
		departmentHandler: NewDepartmentHandler(serviceManager.Department(), logger),
		studentHandler:    NewStudentHandler(serviceManager.Student(), serviceManager.Department(), serviceManager.Roster(), logger),
		courseHandler:     NewCourseHandler(serviceManager.Course(), logger),
		activityHandler:   NewActivityHandler(serviceManager.Activity(), logger),
		sessionAuth:       sessionAuth,
		casdoorAuth:       casdoorAuth,
	}
}

// SetupRoutes registers the page templates and all routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.SetHTMLTemplate(web.MustParseTemplates())

	// Every route sees the principal if there is one; gates below decide access.
	router.Use(hm.sessionAuth.LoadPrincipal())

	router.GET("/health", hm.health)

	// Public pages
	router.GET("/", hm.authHandler.Index)
	router.GET("/signup", hm.authHandler.SignupForm)
	router.POST("/register", hm.authHandler.Register)
	router.GET("/login", hm.authHandler.LoginForm)
	router.POST("/login", hm.authHandler.Login)
	router.GET("/logout", hm.authHandler.Logout)
	router.POST("/logout", hm.authHandler.Logout)

	if hm.casdoorAuth != nil {
		router.GET("/login/sso", hm.casdoorAuth.Login)
		router.GET("/login/sso/callback", hm.casdoorAuth.Callback)
	}

	authed := router.Group("")
	authed.Use(hm.sessionAuth.RequireAuth())
	{
		// Department routes - Teachers only
		departments := authed.Group("/departments")
		departments.Use(hm.sessionAuth.RequireRole(models.RoleTeacher))
		{
			departments.GET("", hm.departmentHandler.ListDepartments)
			departments.GET("/new", hm.departmentHandler.NewDepartmentForm)
			departments.POST("", hm.departmentHandler.CreateDepartment)
			departments.GET("/delete/:id", hm.departmentHandler.DeleteDepartment)
		}

		// Student routes - gated per action
		students := authed.Group("/students")
		{
			students.GET("", hm.studentHandler.ListStudents)
			students.GET("/export", hm.studentHandler.ExportStudents)
			students.GET("/new", hm.sessionAuth.RequireRole(models.RoleAdmin), hm.studentHandler.NewStudentForm)
			students.POST("", hm.sessionAuth.RequireRole(models.RoleAdmin), hm.studentHandler.CreateStudent)
			students.GET("/edit/:id", hm.sessionAuth.RequireRole(models.RoleStudent), hm.studentHandler.EditStudentForm)
			students.POST("/:id", hm.sessionAuth.RequireRole(models.RoleStudent), hm.studentHandler.UpdateStudent)
			students.GET("/delete/:id", hm.sessionAuth.RequireRole(models.RoleTeacher), hm.studentHandler.DeleteStudent)
		}

		// Course routes
		courses := authed.Group("/courses")
		{
			courses.GET("", hm.courseHandler.ListCourses)
			courses.GET("/new", hm.sessionAuth.RequireRole(models.RoleTeacher), hm.courseHandler.NewCourseForm)
			courses.POST("/save", hm.sessionAuth.RequireRole(models.RoleTeacher), hm.courseHandler.SaveCourse)
			courses.POST("/enroll/:id", hm.sessionAuth.RequireRole(models.RoleStudent), hm.courseHandler.ToggleEnrollment)
		}

		// Activity feed - Admins only
		authed.GET("/activity", hm.sessionAuth.RequireRole(models.RoleAdmin), hm.activityHandler.ListActivity)
	}
}

func (hm *HandlerManager) health(c *gin.Context) {
	if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Message: "unhealthy",
			Details: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "school-service",
	})
}
