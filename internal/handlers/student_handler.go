package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rubnab73/School/internal/models"
	"github.com/rubnab73/School/internal/services"
	"github.com/rubnab73/School/internal/utils"
	"github.com/rubnab73/School/internal/validator"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type StudentHandler struct {
	BaseHandler
	service     services.StudentService
	departments services.DepartmentService
	roster      services.RosterService
}

func NewStudentHandler(service services.StudentService, departments services.DepartmentService, roster services.RosterService, logger utils.Logger) *StudentHandler {
	return &StudentHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
		departments: departments,
		roster:      roster,
	}
}

// ===== STUDENT ENDPOINTS =====

// ListStudents renders all students
// @Tags students
// @Router /students [get]
func (h *StudentHandler) ListStudents(c *gin.Context) {
	students, err := h.service.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.render(c, http.StatusOK, "students.html", gin.H{
		"Title":    "Students",
		"Students": students,
	})
}

// ExportStudents downloads the roster as an XLSX workbook
// @Tags students
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router /students/export [get]
func (h *StudentHandler) ExportStudents(c *gin.Context) {
	h.LogRequest(c, "Exporting student roster")

	var buf bytes.Buffer
	if err := h.roster.ExportStudents(c.Request.Context(), &buf); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="students.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// NewStudentForm renders the create form
// @Tags students
// @Router /students/new [get]
func (h *StudentHandler) NewStudentForm(c *gin.Context) {
	h.renderForm(c, http.StatusOK, "create_student.html", gin.H{
		"Title": "New student",
		"Form":  &validator.StudentRequest{},
	})
}

// CreateStudent saves a student in the chosen department
// @Tags students
// @Param name formData string true "Name"
// @Param email formData string false "Email"
// @Param departmentId formData int true "Department ID"
// @Success 302 "Redirect to /students"
// @Failure 400 "Form re-rendered"
// @Router /students [post]
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req validator.StudentRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderForm(c, http.StatusBadRequest, "create_student.html", gin.H{
			"Title":  "New student",
			"Form":   &req,
			"Errors": []string{invalidFormMessage},
		})
		return
	}

	h.LogRequest(c, "Creating student", "name", req.Name, "department_id", req.DepartmentID)

	_, err := h.service.Create(c.Request.Context(), &req, PrincipalFromContext(c))
	if err != nil {
		if isFormError(err) {
			h.renderForm(c, http.StatusBadRequest, "create_student.html", gin.H{
				"Title":  "New student",
				"Form":   &req,
				"Errors": formErrors(err),
			})
			return
		}
		h.handleServiceError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/students")
}

// EditStudentForm renders the edit form, or redirects when the student does not exist
// @Tags students
// @Param id path int true "Student ID"
// @Router /students/edit/{id} [get]
func (h *StudentHandler) EditStudentForm(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.Redirect(http.StatusFound, "/students")
		return
	}

	student, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrStudentNotFound) {
			c.Redirect(http.StatusFound, "/students")
			return
		}
		h.handleServiceError(c, err)
		return
	}

	h.renderForm(c, http.StatusOK, "edit_student.html", gin.H{
		"Title":   "Edit student",
		"Student": student,
	})
}

// UpdateStudent saves name, email and department
// @Tags students
// @Param id path int true "Student ID"
// @Success 302 "Redirect to /students"
// @Failure 400 "Form re-rendered"
// @Router /students/{id} [post]
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.Redirect(http.StatusFound, "/students")
		return
	}

	var req validator.StudentRequest
	if err := c.ShouldBind(&req); err != nil {
		h.renderEditForm(c, id, &req, []string{invalidFormMessage})
		return
	}

	h.LogRequest(c, "Updating student", "student_id", id)

	_, err := h.service.Update(c.Request.Context(), id, &req, PrincipalFromContext(c))
	switch {
	case err == nil, errors.Is(err, services.ErrStudentNotFound):
		c.Redirect(http.StatusFound, "/students")
	case isFormError(err):
		h.renderEditForm(c, id, &req, formErrors(err))
	default:
		h.handleServiceError(c, err)
	}
}

// DeleteStudent removes a student and its account
// @Tags students
// @Param id path int true "Student ID"
// @Success 302 "Redirect to /students"
// @Router /students/delete/{id} [get]
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.Redirect(http.StatusFound, "/students")
		return
	}

	h.LogRequest(c, "Deleting student", "student_id", id)

	err := h.service.Delete(c.Request.Context(), id, PrincipalFromContext(c))
	if err != nil && !errors.Is(err, services.ErrStudentNotFound) {
		h.handleServiceError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/students")
}

// renderForm adds the department choices to a student form page.
func (h *StudentHandler) renderForm(c *gin.Context, status int, page string, data gin.H) {
	departments, err := h.departments.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	data["Departments"] = departments
	h.render(c, status, page, data)
}

func (h *StudentHandler) renderEditForm(c *gin.Context, id uint, req *validator.StudentRequest, errs []string) {
	h.renderForm(c, http.StatusBadRequest, "edit_student.html", gin.H{
		"Title":   "Edit student",
		"Student": &models.Student{ID: id, Name: req.Name, Email: req.Email},
		"Errors":  errs,
	})
}

func isFormError(err error) bool {
	return errors.Is(err, services.ErrValidationFailed) || errors.Is(err, services.ErrDepartmentNotFound)
}
