package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "STUDENT", want: RoleStudent},
		{in: "student", want: RoleStudent},
		{in: "ROLE_STUDENT", want: RoleStudent},
		{in: " teacher ", want: RoleTeacher},
		{in: "role_admin", want: RoleAdmin},
		{in: "", wantErr: true},
		{in: "ROLE_", wantErr: true},
		{in: "principal", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidRole))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRole_Name(t *testing.T) {
	assert.Equal(t, "TEACHER", RoleTeacher.Name())
	assert.Equal(t, "ROLE_ADMIN", RoleAdmin.String())
}

func TestNewProfileFor(t *testing.T) {
	dept := &Department{ID: 7, Name: "Physics"}

	p, err := NewProfileFor(RoleStudent, "alice", dept)
	require.NoError(t, err)
	s, ok := p.Student()
	require.True(t, ok)
	assert.Equal(t, "alice", s.Name)
	assert.Equal(t, "N/A", s.Email)
	require.NotNil(t, s.DepartmentID)
	assert.Equal(t, uint(7), *s.DepartmentID)
	_, ok = p.Teacher()
	assert.False(t, ok)

	p, err = NewProfileFor(RoleTeacher, "bob", dept)
	require.NoError(t, err)
	teacher, ok := p.Teacher()
	require.True(t, ok)
	assert.Equal(t, "bob", teacher.Name)
	assert.Nil(t, teacher.DepartmentID)

	p, err = NewProfileFor(RoleAdmin, "root", nil)
	require.NoError(t, err)
	assert.Equal(t, ProfileNone, p.Kind())

	_, err = NewProfileFor(Role("ROLE_JANITOR"), "x", nil)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestUser_AttachProfile(t *testing.T) {
	u := &User{Username: "alice", Role: RoleStudent}

	err := u.AttachProfile(TeacherProfile(&Teacher{Name: "alice"}))
	var mismatch *ProfileMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Nil(t, u.Teacher)

	require.NoError(t, u.AttachProfile(StudentProfile(&Student{Name: "alice"})))
	assert.NotNil(t, u.Student)
	assert.Nil(t, u.Teacher)

	admin := &User{Role: RoleAdmin}
	assert.NoError(t, admin.AttachProfile(NoProfile()))
	assert.Error(t, admin.AttachProfile(StudentProfile(&Student{})))
}

func TestUser_Profile(t *testing.T) {
	u := &User{Role: RoleTeacher, Teacher: &Teacher{ID: 3}}
	p, err := u.Profile()
	require.NoError(t, err)
	teacher, ok := p.Teacher()
	require.True(t, ok)
	assert.Equal(t, uint(3), teacher.ID)

	u = &User{Role: RoleStudent}
	_, err = u.Profile()
	assert.Error(t, err)

	u = &User{Role: RoleStudent, Student: &Student{}, Teacher: &Teacher{}}
	_, err = u.Profile()
	assert.Error(t, err)
}

func TestStudent_IsEnrolledIn(t *testing.T) {
	s := &Student{Courses: []Course{{ID: 1}, {ID: 5}}}
	assert.True(t, s.IsEnrolledIn(5))
	assert.False(t, s.IsEnrolledIn(2))

	var nilStudent *Student
	assert.False(t, nilStudent.IsEnrolledIn(5))
}
