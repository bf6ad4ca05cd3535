package services

import (
	"errors"

	"github.com/ezcal-dev/ezcal/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown email or a
// password mismatch. The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Well-known identity provisioned on demand when the server runs in debug
// mode and a request carries no credentials.
const (
	DevUserEmail    = "dev@test.com"
	DevUserName     = "Development User"
	devUserPassword = "devpassword123"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) GetByID(id uuid.UUID) (*models.User, error) {
	var user models.User

	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *UserService) GetByEmail(email string) (*models.User, error) {
	var user models.User

	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *UserService) Create(email, name, password string) (*models.User, error) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(passwordHash),
		IsActive:     true,
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

// Update applies only the keys present in updates. A "password" key is
// replaced by its bcrypt hash before writing.
func (s *UserService) Update(id uuid.UUID, updates map[string]interface{}) (*models.User, error) {
	if password, ok := updates["password"]; ok {
		passwordHash, err := bcrypt.GenerateFromPassword([]byte(password.(string)), bcrypt.DefaultCost)

		if err != nil {
			return nil, err
		}

		delete(updates, "password")
		updates["password_hash"] = string(passwordHash)
	}

	user, err := s.GetByID(id)

	if err != nil {
		return nil, err
	}

	if len(updates) > 0 {
		if err := s.db.Model(user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return s.GetByID(id)
}

// Delete removes the user together with all owned schedules and their
// reminders in a single transaction.
func (s *UserService) Delete(id uuid.UUID) error {
	user, err := s.GetByID(id)

	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		scheduleIDs := tx.Model(&models.Schedule{}).Select("id").Where("user_id = ?", id)

		if err := tx.Where("schedule_id IN (?)", scheduleIDs).Delete(&models.ScheduleReminder{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.Schedule{}).Error; err != nil {
			return err
		}

		return tx.Delete(user).Error
	})
}

func (s *UserService) Authenticate(email, password string) (*models.User, error) {
	user, err := s.GetByEmail(email)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *UserService) GetOrCreateDevUser() (*models.User, error) {
	user, err := s.GetByEmail(DevUserEmail)

	if err == nil {
		return user, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return s.Create(DevUserEmail, DevUserName, devUserPassword)
}
