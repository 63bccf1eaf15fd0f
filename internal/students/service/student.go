package service

import (
	"context"
	"errors"

	catalogerrors "actibook/internal/catalog/errors"
	catalogrepo "actibook/internal/catalog/repository"
	studentserrors "actibook/internal/students/errors"
	"actibook/internal/students/repository"
	"actibook/pkg/config"
	apperrors "actibook/pkg/errors"
	"actibook/pkg/model"

	"github.com/go-playground/validator/v10"
)

type StudentService interface {
	CreateProfile(ctx context.Context, profile *model.StudentProfile) error
	GetProfile(ctx context.Context, id string) (*model.StudentProfile, error)
	GetProfileByAccount(ctx context.Context, accountID string) (*model.StudentProfile, error)
}

type studentService struct {
	repo     repository.StudentRepository
	catalog  catalogrepo.CatalogRepository
	validate *validator.Validate
	cfg      *config.Config
}

func NewStudentService(
	repo repository.StudentRepository,
	catalog catalogrepo.CatalogRepository,
	cfg *config.Config,
) StudentService {
	return &studentService{
		repo:     repo,
		catalog:  catalog,
		validate: validator.New(),
		cfg:      cfg,
	}
}

func (s *studentService) CreateProfile(ctx context.Context, profile *model.StudentProfile) error {
	if err := s.validate.Struct(profile); err != nil {
		return apperrors.Validation("Student profile validation failed", map[string]any{
			"error": err.Error(),
		})
	}

	// The grade must exist before anything can be booked against it.
	if _, err := s.catalog.FindGradeByID(ctx, profile.GradeID); err != nil {
		if errors.Is(err, catalogerrors.ErrGradeNotFound) || errors.Is(err, catalogerrors.ErrInvalidID) {
			return apperrors.InvalidInput("Unknown grade: " + profile.GradeID)
		}
		s.cfg.Log.Error("Failed to verify grade", "grade_id", profile.GradeID, "error", err)
		return apperrors.Internal("Failed to verify grade", err)
	}

	if err := s.repo.Insert(ctx, profile); err != nil {
		if errors.Is(err, studentserrors.ErrDuplicateAccount) {
			return apperrors.Conflict("This account already has a student profile")
		}
		s.cfg.Log.Error("Failed to create student profile", "account_id", profile.AccountID, "error", err)
		return apperrors.Internal("Failed to create student profile", err)
	}

	s.cfg.Log.Info("Student profile created",
		"id", profile.ID,
		"account_id", profile.AccountID,
		"grade_id", profile.GradeID,
	)
	return nil
}

func (s *studentService) GetProfile(ctx context.Context, id string) (*model.StudentProfile, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Student ID cannot be empty")
	}

	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, studentserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid student ID format")
		case errors.Is(err, studentserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Student", id)
		default:
			s.cfg.Log.Error("Student lookup failed", "id", id, "error", err)
			return nil, apperrors.Internal("Failed to retrieve student profile", err)
		}
	}
	return profile, nil
}

func (s *studentService) GetProfileByAccount(ctx context.Context, accountID string) (*model.StudentProfile, error) {
	if accountID == "" {
		return nil, apperrors.InvalidInput("Account ID cannot be empty")
	}

	profile, err := s.repo.FindByAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, studentserrors.ErrNotFound) {
			return nil, apperrors.NotFound("Student")
		}
		s.cfg.Log.Error("Student lookup by account failed", "account_id", accountID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve student profile", err)
	}
	return profile, nil
}
