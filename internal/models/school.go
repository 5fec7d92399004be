package models

import (
	"time"

	"gorm.io/datatypes"
)

type Department struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null;size:255"`

	Students []Student `json:"students,omitempty" gorm:"foreignKey:DepartmentID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Teachers []Teacher `json:"teachers,omitempty" gorm:"foreignKey:DepartmentID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

func (Department) TableName() string {
	return "departments"
}

type Student struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	Name         string      `json:"name" gorm:"not null;size:255"`
	Email        string      `json:"email" gorm:"size:255"`
	DepartmentID *uint       `json:"department_id" gorm:"index"`
	Department   *Department `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
	UserID       *uint       `json:"user_id" gorm:"uniqueIndex"`

	Courses []Course `json:"courses,omitempty" gorm:"many2many:student_courses;"`
}

func (Student) TableName() string {
	return "students"
}

// IsEnrolledIn reports whether the loaded Courses contain courseID.
func (s *Student) IsEnrolledIn(courseID uint) bool {
	if s == nil {
		return false
	}
	for _, c := range s.Courses {
		if c.ID == courseID {
			return true
		}
	}
	return false
}

// DepartmentName returns the department name or an empty string.
func (s *Student) DepartmentName() string {
	if s == nil || s.Department == nil {
		return ""
	}
	return s.Department.Name
}

type Teacher struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	Name         string      `json:"name" gorm:"not null;size:255"`
	Email        string      `json:"email" gorm:"size:255"`
	DepartmentID *uint       `json:"department_id" gorm:"index"`
	Department   *Department `json:"department,omitempty" gorm:"foreignKey:DepartmentID"`
	UserID       *uint       `json:"user_id" gorm:"uniqueIndex"`

	Courses []Course `json:"courses,omitempty" gorm:"foreignKey:TeacherID;constraint:OnDelete:SET NULL"`
}

func (Teacher) TableName() string {
	return "teachers"
}

type Course struct {
	ID          uint     `json:"id" gorm:"primaryKey"`
	Title       string   `json:"title" gorm:"not null;size:255"`
	Description string   `json:"description" gorm:"type:text"`
	TeacherID   *uint    `json:"teacher_id" gorm:"index"`
	Teacher     *Teacher `json:"teacher,omitempty" gorm:"foreignKey:TeacherID"`

	Students []Student `json:"students,omitempty" gorm:"many2many:student_courses;"`
}

func (Course) TableName() string {
	return "courses"
}

// TeacherName returns the owning teacher's name or an empty string.
func (c *Course) TeacherName() string {
	if c == nil || c.Teacher == nil {
		return ""
	}
	return c.Teacher.Name
}

// Enrollment is the student_courses join row. The composite key makes a pair unique.
type Enrollment struct {
	StudentID uint      `json:"student_id" gorm:"primaryKey;autoIncrement:false"`
	CourseID  uint      `json:"course_id" gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time `json:"created_at"`
}

func (Enrollment) TableName() string {
	return "student_courses"
}

type ActivityType string

const (
	ActivityUserRegistered    ActivityType = "user.registered"
	ActivityDepartmentCreated ActivityType = "department.created"
	ActivityDepartmentDeleted ActivityType = "department.deleted"
	ActivityStudentCreated    ActivityType = "student.created"
	ActivityStudentUpdated    ActivityType = "student.updated"
	ActivityStudentDeleted    ActivityType = "student.deleted"
	ActivityCourseCreated     ActivityType = "course.created"
	ActivityEnrolled          ActivityType = "enrollment.enrolled"
	ActivityUnenrolled        ActivityType = "enrollment.unenrolled"
)

// ActivityLog is an append-only record of a committed write.
type ActivityLog struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Type      ActivityType   `json:"type" gorm:"not null;size:64;index"`
	ActorID   *uint          `json:"actor_id" gorm:"index"`
	SubjectID *uint          `json:"subject_id"`
	Payload   datatypes.JSON `json:"payload"`
	CreatedAt time.Time      `json:"created_at" gorm:"index"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}

// AllModels lists every table, parents first.
func AllModels() []any {
	return []any{
		&Department{},
		&User{},
		&Student{},
		&Teacher{},
		&Course{},
		&Enrollment{},
		&ActivityLog{},
	}
}
