package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rubnab73/School/internal/services"
	"github.com/rubnab73/School/internal/utils"
	"github.com/rubnab73/School/internal/validator"
)

type DepartmentHandler struct {
	BaseHandler
	service services.DepartmentService
}

func NewDepartmentHandler(service services.DepartmentService, logger utils.Logger) *DepartmentHandler {
	return &DepartmentHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ListDepartments renders all departments
// @Tags departments
// @Router /departments [get]
func (h *DepartmentHandler) ListDepartments(c *gin.Context) {
	h.renderList(c, http.StatusOK, "")
}

// NewDepartmentForm renders the create form
// @Tags departments
// @Router /departments/new [get]
func (h *DepartmentHandler) NewDepartmentForm(c *gin.Context) {
	h.render(c, http.StatusOK, "create_department.html", gin.H{
		"Title": "New department",
		"Form":  &validator.DepartmentRequest{},
	})
}

// CreateDepartment saves a department
// @Tags departments
// @Param name formData string true "Department name"
// @Success 302 "Redirect to /departments"
// @Failure 400 "Form re-rendered with validation errors"
// @Router /departments [post]
func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	var req validator.DepartmentRequest
	if err := c.ShouldBind(&req); err != nil {
		h.render(c, http.StatusBadRequest, "create_department.html", gin.H{
			"Title":  "New department",
			"Form":   &req,
			"Errors": []string{invalidFormMessage},
		})
		return
	}

	h.LogRequest(c, "Creating department", "name", req.Name)

	_, err := h.service.Create(c.Request.Context(), &req, PrincipalFromContext(c))
	if err != nil {
		if errors.Is(err, services.ErrValidationFailed) {
			h.render(c, http.StatusBadRequest, "create_department.html", gin.H{
				"Title":  "New department",
				"Form":   &req,
				"Errors": formErrors(err),
			})
			return
		}
		h.handleServiceError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/departments")
}

// DeleteDepartment removes a department that has no students
// @Tags departments
// @Param id path int true "Department ID"
// @Success 302 "Redirect to /departments"
// @Failure 409 "Listing re-rendered with the refusal message"
// @Router /departments/delete/{id} [get]
func (h *DepartmentHandler) DeleteDepartment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		c.Redirect(http.StatusFound, "/departments")
		return
	}

	h.LogRequest(c, "Deleting department", "department_id", id)

	err := h.service.Delete(c.Request.Context(), id, PrincipalFromContext(c))
	if err != nil {
		var rule *services.BusinessRuleError
		if errors.As(err, &rule) {
			h.renderList(c, http.StatusConflict, rule.Message)
			return
		}
		h.handleServiceError(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/departments")
}

func (h *DepartmentHandler) renderList(c *gin.Context, status int, errMessage string) {
	departments, err := h.service.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.render(c, status, "departments.html", gin.H{
		"Title":       "Departments",
		"Departments": departments,
		"Error":       errMessage,
	})
}
