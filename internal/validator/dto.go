package validator

// Form payloads bound from urlencoded POST bodies. A zero DepartmentID means "not provided".

type RegisterRequest struct {
	Username     string `form:"username" validate:"required,not_blank,max=100"`
	Password     string `form:"password" validate:"required,max_bytes=72"`
	Role         string `form:"role" validate:"required,role"`
	DepartmentID uint   `form:"departmentId"`
}

type LoginRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type DepartmentRequest struct {
	Name string `form:"name" validate:"required,not_blank,max=255"`
}

type StudentRequest struct {
	Name         string `form:"name" validate:"required,not_blank,max=255"`
	Email        string `form:"email" validate:"max=255"`
	DepartmentID uint   `form:"departmentId"`
}

type CourseRequest struct {
	Title       string `form:"title" validate:"required,not_blank,max=255"`
	Description string `form:"description" validate:"max=5000"`
}
