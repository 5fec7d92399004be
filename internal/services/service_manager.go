package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/gorm"

	"github.com/rubnab73/School/internal/config"
	"github.com/rubnab73/School/internal/events"
	"github.com/rubnab73/School/internal/repositories"
	"github.com/rubnab73/School/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	// DepartmentPolicy is one of config.PolicyLegacy, config.PolicySkip, config.PolicyReject
	DepartmentPolicy string
	BcryptCost       int
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	config    ServiceManagerConfig

	// Service instances
	authService       AuthService
	departmentService DepartmentService
	studentService    StudentService
	courseService     CourseService
	rosterService     RosterService
	activityService   ActivityService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		db:        db,
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		config:    config,
	}
}

// NewDefaultServiceManager creates a service manager from the application config
func NewDefaultServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, cfg *config.Config) ServiceManager {
	return NewServiceManager(db, repo, logger, validator, publisher, ServiceManagerConfig{
		DepartmentPolicy: cfg.DepartmentPolicy,
		BcryptCost:       cfg.BcryptCost,
	})
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager", "department_policy", sm.config.DepartmentPolicy)

	if sm.db == nil || sm.repo == nil {
		return fmt.Errorf("failed to initialize services: database and repository are required")
	}

	sm.authService = NewAuthService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher, sm.config.BcryptCost)
	sm.departmentService = NewDepartmentService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher)
	sm.studentService = NewStudentService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher, sm.config.DepartmentPolicy)
	sm.courseService = NewCourseService(sm.repo, sm.db, sm.logger, sm.validator, sm.publisher)
	sm.rosterService = NewRosterService(sm.repo, sm.db, sm.logger)
	sm.activityService = NewActivityService(sm.repo, sm.db, sm.logger)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters
func (sm *serviceManager) Auth() AuthService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.authService
}

func (sm *serviceManager) Department() DepartmentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.departmentService
}

func (sm *serviceManager) Student() StudentService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.studentService
}

func (sm *serviceManager) Course() CourseService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.courseService
}

func (sm *serviceManager) Roster() RosterService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.rosterService
}

func (sm *serviceManager) Activity() ActivityService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.mustBeInitialized()
	return sm.activityService
}

func (sm *serviceManager) mustBeInitialized() {
	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

// Shutdown stops handing out services. Connections are owned and closed by the caller.
func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")
	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
