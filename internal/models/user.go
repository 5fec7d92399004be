package models

import (
	"time"
)

type User struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Username string `json:"username" gorm:"uniqueIndex;not null;size:100"`
	Password string `json:"-" gorm:"not null;size:255"`
	Role     Role   `json:"role" gorm:"not null;size:32;index"`

	// At most one of these is set, as decided by Role.
	Student *Student `json:"student,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Teacher *Teacher `json:"teacher,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// AttachProfile sets the profile association, rejecting one that does not match the role.
func (u *User) AttachProfile(p Profile) error {
	if p.Kind() != ProfileKindFor(u.Role) {
		return &ProfileMismatchError{Role: u.Role, Kind: p.Kind()}
	}

	u.Student, u.Teacher = nil, nil
	switch p.Kind() {
	case ProfileStudent:
		u.Student = p.student
	case ProfileTeacher:
		u.Teacher = p.teacher
	}
	return nil
}

// Profile reads the loaded associations back as a Profile.
// Both associations must have been preloaded for the result to be meaningful.
func (u *User) Profile() (Profile, error) {
	var p Profile
	switch {
	case u.Student != nil && u.Teacher != nil:
		return Profile{}, &ProfileMismatchError{Role: u.Role, Kind: ProfileStudent, Extra: true}
	case u.Student != nil:
		p = StudentProfile(u.Student)
	case u.Teacher != nil:
		p = TeacherProfile(u.Teacher)
	default:
		p = NoProfile()
	}

	if p.Kind() != ProfileKindFor(u.Role) {
		return Profile{}, &ProfileMismatchError{Role: u.Role, Kind: p.Kind()}
	}
	return p, nil
}
