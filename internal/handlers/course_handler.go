package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rubnab73/School/internal/services"
	"github.com/rubnab73/School/internal/utils"
	"github.com/rubnab73/School/internal/validator"
)

type CourseHandler struct {
	BaseHandler
	service services.CourseService
}

func NewCourseHandler(service services.CourseService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ListCourses renders all courses. Students also get their own enrollment state.
// @Tags courses
// @Router /courses [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	resp, err := h.service.List(c.Request.Context(), PrincipalFromContext(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.render(c, http.StatusOK, "courses.html", gin.H{
		"Title":   "Courses",
		"Courses": resp.Courses,
		"Student": resp.Student,
	})
}

// NewCourseForm renders the create form
// @Tags courses
// @Router /courses/new [get]
func (h *CourseHandler) NewCourseForm(c *gin.Context) {
	h.render(c, http.StatusOK, "create_course.html", gin.H{
		"Title": "New course",
		"Form":  &validator.CourseRequest{},
	})
}

// SaveCourse creates a course owned by the current teacher
// @Tags courses
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Success 302 "Redirect to /courses"
// @Failure 400 "Form re-rendered"
// @Router /courses/save [post]
func (h *CourseHandler) SaveCourse(c *gin.Context) {
	var req validator.CourseRequest
	if err := c.ShouldBind(&req); err != nil {
		h.render(c, http.StatusBadRequest, "create_course.html", gin.H{
			"Title":  "New course",
			"Form":   &req,
			"Errors": []string{invalidFormMessage},
		})
		return
	}

	h.LogRequest(c, "Creating course", "title", req.Title)

	_, err := h.service.Create(c.Request.Context(), &req, PrincipalFromContext(c))
	if err != nil {
		if errors.Is(err, services.ErrValidationFailed) {
			h.render(c, http.StatusBadRequest, "create_course.html", gin.H{
				"Title":  "New course",
				"Form":   &req,
				"Errors": formErrors(err),
			})
			return
		}
		h.handleServiceError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/courses")
}

// ToggleEnrollment enrolls the current student in the course, or unenrolls if already enrolled
// @Tags courses
// @Param id path int true "Course ID"
// @Success 302 "Redirect to /courses"
// @Router /courses/enroll/{id} [post]
func (h *CourseHandler) ToggleEnrollment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.Redirect(http.StatusFound, "/courses")
		return
	}

	result, err := h.service.ToggleEnrollment(c.Request.Context(), id, PrincipalFromContext(c))
	switch {
	case err == nil:
		h.LogRequest(c, "Enrollment toggled", "course_id", id, "enrolled", result.Enrolled)
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrEnrollmentConflict):
		h.LogRequest(c, "Enrollment toggle skipped", "course_id", id, "reason", err.Error())
	default:
		h.handleServiceError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/courses")
}
