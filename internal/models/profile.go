package models

import "fmt"

type ProfileKind int

const (
	ProfileNone ProfileKind = iota
	ProfileStudent
	ProfileTeacher
)

func (k ProfileKind) String() string {
	switch k {
	case ProfileStudent:
		return "student"
	case ProfileTeacher:
		return "teacher"
	default:
		return "none"
	}
}

// ProfileKindFor maps a role to the only profile kind it may own.
func ProfileKindFor(r Role) ProfileKind {
	switch r {
	case RoleStudent:
		return ProfileStudent
	case RoleTeacher:
		return ProfileTeacher
	default:
		return ProfileNone
	}
}

// Profile is the role-specific record linked to a User: a Student, a Teacher, or nothing.
type Profile struct {
	kind    ProfileKind
	student *Student
	teacher *Teacher
}

func NoProfile() Profile {
	return Profile{kind: ProfileNone}
}

func StudentProfile(s *Student) Profile {
	return Profile{kind: ProfileStudent, student: s}
}

func TeacherProfile(t *Teacher) Profile {
	return Profile{kind: ProfileTeacher, teacher: t}
}

// NewProfileFor builds the profile a freshly registered user gets.
// department may be nil; it only applies to student profiles.
func NewProfileFor(role Role, username string, department *Department) (Profile, error) {
	switch role {
	case RoleStudent:
		s := &Student{Name: username, Email: "N/A"}
		if department != nil {
			id := department.ID
			s.DepartmentID = &id
		}
		return StudentProfile(s), nil
	case RoleTeacher:
		return TeacherProfile(&Teacher{Name: username}), nil
	case RoleAdmin:
		return NoProfile(), nil
	}
	return Profile{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
}

func (p Profile) Kind() ProfileKind { return p.kind }

func (p Profile) Student() (*Student, bool) {
	return p.student, p.kind == ProfileStudent && p.student != nil
}

func (p Profile) Teacher() (*Teacher, bool) {
	return p.teacher, p.kind == ProfileTeacher && p.teacher != nil
}

type ProfileMismatchError struct {
	Role  Role
	Kind  ProfileKind
	Extra bool
}

func (e *ProfileMismatchError) Error() string {
	if e.Extra {
		return fmt.Sprintf("user with role %s has both student and teacher profiles", e.Role)
	}
	return fmt.Sprintf("user with role %s cannot have a %s profile", e.Role, e.Kind)
}
