package postgres

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rubnab73/School/internal/models"
	"github.com/rubnab73/School/internal/repositories"
	"github.com/rubnab73/School/internal/testutil"
)

func newTestRepository(t *testing.T) (repositories.Repository, *gorm.DB) {
	t.Helper()
	db := testutil.NewTestDB(t)
	return NewPostgreSQLRepository(RepositoryConfig{DB: db}), db
}

func TestUserRepository_CreateWithProfile(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	user := &models.User{Username: "alice", Password: "hash", Role: models.RoleStudent}
	profile, err := models.NewProfileFor(models.RoleStudent, "alice", nil)
	require.NoError(t, err)
	require.NoError(t, user.AttachProfile(profile))
	require.NoError(t, repo.User().Create(ctx, nil, user))

	got, err := repo.User().GetByUsername(ctx, nil, "alice")
	require.NoError(t, err)
	require.NotNil(t, got.Student)
	assert.Nil(t, got.Teacher)
	assert.Equal(t, "alice", got.Student.Name)
	require.NotNil(t, got.Student.UserID)
	assert.Equal(t, got.ID, *got.Student.UserID)

	exists, err := repo.User().ExistsByUsername(ctx, nil, "alice")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.User().GetByUsername(ctx, nil, "nobody")
	assert.True(t, repositories.IsNotFoundError(err))
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.User().Create(ctx, nil, &models.User{Username: "admin", Password: "x", Role: models.RoleAdmin}))
	err := repo.User().Create(ctx, nil, &models.User{Username: "admin", Password: "y", Role: models.RoleAdmin})
	assert.True(t, repositories.IsDuplicateKeyError(err))
}

func TestUserRepository_GetByIDCached(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	db := testutil.NewTestDB(t)
	repo := NewPostgreSQLRepository(RepositoryConfig{DB: db, RedisClient: client})
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "bob", "secret", models.RoleTeacher)

	got, err := repo.User().GetByID(ctx, nil, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Teacher)
	assert.True(t, mr.Exists("user:id:1"))

	cached, err := repo.User().GetByID(ctx, nil, user.ID)
	require.NoError(t, err)
	assert.Equal(t, got.Username, cached.Username)
	assert.Equal(t, models.RoleTeacher, cached.Role)

	require.NoError(t, repo.User().Delete(ctx, nil, user.ID))
	assert.False(t, mr.Exists("user:id:1"))
}

func TestDepartmentRepository_CountAndDelete(t *testing.T) {
	repo, db := newTestRepository(t)
	ctx := context.Background()

	math := testutil.CreateDepartment(t, db, "Math")
	art := testutil.CreateDepartment(t, db, "Art")
	testutil.CreateStudent(t, db, "carol", &math.ID)

	count, err := repo.Department().CountStudents(ctx, nil, math.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = repo.Department().CountStudents(ctx, nil, art.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	teacher := &models.Teacher{Name: "dave", DepartmentID: &art.ID}
	require.NoError(t, db.Omit("Department", "Courses").Create(teacher).Error)

	require.NoError(t, repo.Department().Delete(ctx, nil, art.ID))
	_, err = repo.Department().GetByID(ctx, nil, art.ID)
	assert.True(t, repositories.IsNotFoundError(err))

	var reloaded models.Teacher
	require.NoError(t, db.First(&reloaded, teacher.ID).Error)
	assert.Nil(t, reloaded.DepartmentID)

	list, err := repo.Department().List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Math", list[0].Name)
}

func TestStudentRepository_UpdateAndDelete(t *testing.T) {
	repo, db := newTestRepository(t)
	ctx := context.Background()

	dept := testutil.CreateDepartment(t, db, "History")
	student := testutil.CreateStudent(t, db, "erin", nil)
	course := testutil.CreateCourse(t, db, "Rome", nil)
	require.NoError(t, repo.Course().Enroll(ctx, nil, student.ID, course.ID))

	student.Name = "Erin"
	student.Email = "erin@example.org"
	student.DepartmentID = &dept.ID
	require.NoError(t, repo.Student().Update(ctx, nil, student))

	got, err := repo.Student().GetByID(ctx, nil, student.ID)
	require.NoError(t, err)
	assert.Equal(t, "Erin", got.Name)
	assert.Equal(t, "History", got.DepartmentName())
	assert.True(t, got.IsEnrolledIn(course.ID))

	require.NoError(t, repo.Student().Delete(ctx, nil, student.ID))
	_, err = repo.Student().GetByID(ctx, nil, student.ID)
	assert.True(t, repositories.IsNotFoundError(err))

	assert.Zero(t, countEnrollments(t, db, student.ID, course.ID))
}

func TestCourseRepository_EnrollUnenroll(t *testing.T) {
	repo, db := newTestRepository(t)
	ctx := context.Background()

	student := testutil.CreateStudent(t, db, "frank", nil)
	course := testutil.CreateCourse(t, db, "Chemistry", nil)

	removed, err := repo.Course().Unenroll(ctx, nil, student.ID, course.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	require.NoError(t, repo.Course().Enroll(ctx, nil, student.ID, course.ID))
	err = repo.Course().Enroll(ctx, nil, student.ID, course.ID)
	assert.True(t, repositories.IsDuplicateKeyError(err))

	courses, err := repo.Course().List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	require.Len(t, courses[0].Students, 1)
	assert.Equal(t, student.ID, courses[0].Students[0].ID)

	removed, err = repo.Course().Unenroll(ctx, nil, student.ID, course.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	assert.Zero(t, countEnrollments(t, db, student.ID, course.ID))
}

func TestActivityRepository_ListRecent(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	for _, typ := range []models.ActivityType{models.ActivityDepartmentCreated, models.ActivityStudentCreated, models.ActivityCourseCreated} {
		require.NoError(t, repo.Activity().Create(ctx, nil, &models.ActivityLog{Type: typ}))
	}

	entries, err := repo.Activity().ListRecent(ctx, nil, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.ActivityCourseCreated, entries[0].Type)
}

func TestRepositoryManager_Lifecycle(t *testing.T) {
	db := testutil.NewTestDB(t)
	rm := NewRepositoryManager(RepositoryConfig{DB: db})

	assert.Error(t, rm.HealthCheck(context.Background()))
	require.NoError(t, rm.Initialize())
	assert.NoError(t, rm.HealthCheck(context.Background()))
	assert.NotNil(t, rm.GetRepository().Department())
	assert.NoError(t, rm.Shutdown(context.Background()))

	assert.Error(t, NewRepositoryManager(RepositoryConfig{}).Initialize())
}

func countEnrollments(t *testing.T, db *gorm.DB, studentID, courseID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Enrollment{}).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Count(&n).Error)
	return n
}
