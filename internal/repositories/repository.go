package repositories

import "context"

// Repository aggregates all repositories behind one handle
type Repository interface {
	User() UserRepository
	Department() DepartmentRepository
	Student() StudentRepository
	Teacher() TeacherRepository
	Course() CourseRepository
	Activity() ActivityRepository

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
