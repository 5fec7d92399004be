package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/rubnab73/School/internal/events"
	"github.com/rubnab73/School/internal/models"
	"github.com/rubnab73/School/internal/repositories"
	"github.com/rubnab73/School/internal/validator"
)

type authService struct {
	repo       repositories.Repository
	db         *gorm.DB
	logger     *slog.Logger
	validator  *validator.Validator
	activity   *activityRecorder
	bcryptCost int
}

func NewAuthService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, bcryptCost int) AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		repo:       repo,
		db:         db,
		logger:     logger,
		validator:  validator,
		activity:   newActivityRecorder(repo, publisher, logger),
		bcryptCost: bcryptCost,
	}
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	s.logger.Info("Registering user", "username", req.Username, "role", req.Role)

	if err := s.validator.Validate(req); err != nil {
		return nil, newValidationError(err)
	}

	role, err := models.ParseRole(req.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, req.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, newValidationError(validator.ValidationErrors{{
			Field:   "password",
			Message: "must be at most 72 bytes",
			Rule:    "max_bytes",
		}})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Username: req.Username, Password: string(hash), Role: role}
	var published *events.Event

	err = s.withTx(ctx, func(tx *gorm.DB) error {
		exists, err := s.repo.User().ExistsByUsername(ctx, tx, req.Username)
		if err != nil {
			return err
		}
		if exists {
			return ErrUsernameTaken
		}

		// An unresolvable department is skipped, not an error.
		var department *models.Department
		if role == models.RoleStudent && req.DepartmentID != 0 {
			department, err = s.repo.Department().GetByID(ctx, tx, req.DepartmentID)
			if err != nil && !repositories.IsNotFoundError(err) {
				return err
			}
		}

		profile, err := models.NewProfileFor(role, req.Username, department)
		if err != nil {
			return err
		}
		if err := user.AttachProfile(profile); err != nil {
			return err
		}

		if err := s.repo.User().Create(ctx, tx, user); err != nil {
			if repositories.IsDuplicateKeyError(err) {
				return ErrUsernameTaken
			}
			return err
		}

		published, err = s.activity.record(ctx, tx, models.ActivityUserRegistered, &user.ID, user.ID, map[string]any{
			"username": user.Username,
			"role":     string(user.Role),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.activity.publish(ctx, published)
	s.logger.Info("User registered", "user_id", user.ID, "role", user.Role)

	return user, nil
}

func (s *authService) Authenticate(ctx context.Context, username, password string) (*Principal, error) {
	user, err := s.repo.User().GetByUsername(ctx, s.db, strings.TrimSpace(username))
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	s.logger.Info("User authenticated", "user_id", user.ID)
	return principalFor(user)
}

func (s *authService) Principal(ctx context.Context, userID uint) (*Principal, error) {
	// nil tx lets the repository serve the lookup from cache.
	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load principal: %w", err)
	}
	return principalFor(user)
}

func (s *authService) ExternalLogin(ctx context.Context, username string) (*Principal, error) {
	user, err := s.repo.User().GetByUsername(ctx, s.db, strings.TrimSpace(username))
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	s.logger.Info("External login", "user_id", user.ID)
	return principalFor(user)
}

func principalFor(user *models.User) (*Principal, error) {
	profile, err := user.Profile()
	if err != nil {
		return nil, err
	}

	p := &Principal{UserID: user.ID, Username: user.Username, Role: user.Role}
	if student, ok := profile.Student(); ok {
		id := student.ID
		p.StudentID = &id
	}
	if teacher, ok := profile.Teacher(); ok {
		id := teacher.ID
		p.TeacherID = &id
	}
	return p, nil
}

func (s *authService) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}
