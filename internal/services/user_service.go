package services

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/buildcare/defect-backend/internal/dto"
	"github.com/buildcare/defect-backend/internal/models"
	"github.com/buildcare/defect-backend/internal/policy"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) List(actor Actor) ([]models.User, error) {
	if !policy.Allows(actor.Role, policy.ActionRead, policy.ResourceUsers) {
		return nil, ErrForbidden
	}
	var users []models.User
	if err := s.db.Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserService) Get(actor Actor, id uuid.UUID) (*models.User, error) {
	if !policy.Allows(actor.Role, policy.ActionRead, policy.ResourceUsers) {
		return nil, ErrForbidden
	}
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, NotFound("user")
	}
	return &user, nil
}

func (s *UserService) Create(actor Actor, req *dto.CreateUserRequest) (*models.User, error) {
	if !policy.Allows(actor.Role, policy.ActionCreate, policy.ResourceUsers) {
		return nil, ErrForbidden
	}
	if req.Email == "" || req.Password == "" {
		return nil, Validation("email and password are required")
	}

	role := req.Role
	if role == "" {
		role = string(policy.RoleCSR)
	}
	parsed := policy.ParseRole(role)
	if parsed == policy.RoleUnknown {
		return nil, Validation("invalid role")
	}

	var existing models.User
	if err := s.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         string(parsed),
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Update(actor Actor, id uuid.UUID, req *dto.UpdateUserRequest) (*models.User, error) {
	if !policy.Allows(actor.Role, policy.ActionUpdate, policy.ResourceUsers) {
		return nil, ErrForbidden
	}
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, NotFound("user")
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		var existing models.User
		if err := s.db.Where("email = ?", *req.Email).First(&existing).Error; err == nil && existing.ID != id {
			return nil, ErrEmailTaken
		}
		user.Email = *req.Email
	}
	if req.Role != nil {
		parsed := policy.ParseRole(*req.Role)
		if parsed == policy.RoleUnknown {
			return nil, Validation("invalid role")
		}
		user.Role = string(parsed)
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.db.Save(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Delete(actor Actor, id uuid.UUID) error {
	if !policy.Allows(actor.Role, policy.ActionDelete, policy.ResourceUsers) {
		return ErrForbidden
	}
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return NotFound("user")
	}
	return s.db.Delete(&user).Error
}

// ListTechnicians is open to the roles that assign or carry out work.
func (s *UserService) ListTechnicians(actor Actor) ([]models.User, error) {
	if !policy.Allows(actor.Role, policy.ActionListTechnicians, policy.ResourceUsers) {
		return nil, ErrForbidden
	}
	var technicians []models.User
	if err := s.db.Where("role = ?", string(policy.RoleTechnician)).
		Order("name ASC").Find(&technicians).Error; err != nil {
		return nil, err
	}
	return technicians, nil
}
