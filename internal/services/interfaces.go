package services

import (
	"context"
	"io"

	"github.com/rubnab73/School/internal/models"
	"github.com/rubnab73/School/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

type RegisterRequest = validator.RegisterRequest
type DepartmentRequest = validator.DepartmentRequest
type StudentRequest = validator.StudentRequest
type CourseRequest = validator.CourseRequest

// Principal is the authenticated identity behind a request
type Principal struct {
	UserID    uint        `json:"user_id"`
	Username  string      `json:"username"`
	Role      models.Role `json:"role"`
	StudentID *uint       `json:"student_id,omitempty"`
	TeacherID *uint       `json:"teacher_id,omitempty"`
}

func (p *Principal) HasRole(role models.Role) bool {
	return p != nil && p.Role == role
}

// actorID returns the user id to record on activity entries, nil for anonymous callers.
func (p *Principal) actorID() *uint {
	if p == nil {
		return nil
	}
	id := p.UserID
	return &id
}

// CourseListResponse is the course page model. Student is set only when the
// requester is a student with a profile.
type CourseListResponse struct {
	Courses []*models.Course `json:"courses"`
	Student *models.Student  `json:"student,omitempty"`
}

// EnrollmentResult reports the membership state after a toggle
type EnrollmentResult struct {
	CourseID  uint `json:"course_id"`
	StudentID uint `json:"student_id"`
	Enrolled  bool `json:"enrolled"`
}

// ===== SERVICE INTERFACES =====

type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*Principal, error)
	Principal(ctx context.Context, userID uint) (*Principal, error)

	// ExternalLogin resolves a principal for a username already verified by an SSO provider.
	ExternalLogin(ctx context.Context, username string) (*Principal, error)
}

type DepartmentService interface {
	List(ctx context.Context) ([]*models.Department, error)
	Create(ctx context.Context, req *DepartmentRequest, actor *Principal) (*models.Department, error)

	// Delete refuses with ErrDepartmentHasStudents while students reference the department.
	// Deleting an unknown id is a no-op.
	Delete(ctx context.Context, id uint, actor *Principal) error
}

type StudentService interface {
	List(ctx context.Context) ([]*models.Student, error)
	GetByID(ctx context.Context, id uint) (*models.Student, error)

	// Create returns a nil student and nil error when the department policy drops the write.
	Create(ctx context.Context, req *StudentRequest, actor *Principal) (*models.Student, error)
	Update(ctx context.Context, id uint, req *StudentRequest, actor *Principal) (*models.Student, error)

	// Delete removes the student, its enrollments and its linked user.
	Delete(ctx context.Context, id uint, actor *Principal) error
}

type CourseService interface {
	List(ctx context.Context, viewer *Principal) (*CourseListResponse, error)
	Create(ctx context.Context, req *CourseRequest, actor *Principal) (*models.Course, error)
	ToggleEnrollment(ctx context.Context, courseID uint, actor *Principal) (*EnrollmentResult, error)
}

type RosterService interface {
	// ExportStudents writes an XLSX workbook with one row per student.
	ExportStudents(ctx context.Context, w io.Writer) error
}

type ActivityService interface {
	Recent(ctx context.Context, limit int) ([]*models.ActivityLog, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Auth() AuthService
	Department() DepartmentService
	Student() StudentService
	Course() CourseService
	Roster() RosterService
	Activity() ActivityService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
