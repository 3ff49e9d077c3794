package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/iamvtyagi/99acres/internal/models"
	"github.com/iamvtyagi/99acres/internal/repository"
	"github.com/sirupsen/logrus"
	passwordvalidator "github.com/wagslane/go-password-validator"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	minPasswordLength      = 6
	passwordMinEntropyBits = 30
)

// UserService encapsulates the business logic for user operations.
type UserService struct {
	repo UserStore
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserStore) *UserService {
	return &UserService{
		repo: repo,
	}
}

// RegisterInput is the payload accepted by RegisterUser.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Mobile   string `json:"mobile"`
	Role     string `json:"role"`
}

// RegisterUser creates an account with a bcrypt hashed password.
func (s *UserService) RegisterUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	logrus.Info("Registering new user")

	user := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Mobile:       strings.TrimSpace(in.Mobile),
		Role:         in.Role,
		ProfilePhoto: models.DefaultProfilePhoto,
		Verified:     true,
	}
	if user.Role == "" {
		user.Role = models.RoleBuyer
	}
	if err := validateStruct(user); err != nil {
		logrus.WithError(err).Warn("Invalid registration payload")
		return nil, err
	}
	if err := checkPassword(in.Password); err != nil {
		return nil, err
	}

	if existing, _ := s.repo.GetUserByEmail(ctx, user.Email); existing != nil {
		logrus.WithField("email", user.Email).Warn("Email already in use")
		return nil, conflictError("Email already in use")
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, err
	}
	user.HashedPassword = string(hashedPwd)

	created, err := s.repo.CreateUser(ctx, user)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, conflictError("Email already in use")
	}
	if err != nil {
		logrus.WithError(err).Error("User registration failed")
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"userID": created.ID.Hex(),
		"role":   created.Role,
	}).Info("User registered successfully")
	return created, nil
}

// AuthenticateUser verifies the email and password and returns the user if
// the credentials are valid.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, validationError("Please provide an email and password")
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logrus.WithField("email", email).Warn("Login for unknown email")
			return nil, unauthorizedError("Invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("email", email).Warn("Invalid credentials")
		return nil, unauthorizedError("Invalid credentials")
	}

	logrus.WithField("userID", user.ID.Hex()).Info("User authenticated successfully")
	return user, nil
}

// GetUser retrieves a user by id.
func (s *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	return user, nil
}

// UpdateDetailsInput holds the editable profile fields; empty values are kept.
type UpdateDetailsInput struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Mobile string `json:"mobile"`
}

func (s *UserService) UpdateDetails(ctx context.Context, id primitive.ObjectID, in UpdateDetailsInput) (*models.User, error) {
	current, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	next := *current
	updates := map[string]interface{}{}
	if v := strings.TrimSpace(in.Name); v != "" {
		next.Name = v
		updates["name"] = v
	}
	if v := strings.ToLower(strings.TrimSpace(in.Email)); v != "" && v != current.Email {
		next.Email = v
		updates["email"] = v
	}
	if v := strings.TrimSpace(in.Mobile); v != "" {
		next.Mobile = v
		updates["mobile"] = v
	}
	if len(updates) == 0 {
		return current, nil
	}
	if err := validateStruct(&next); err != nil {
		return nil, err
	}

	user, err := s.repo.UpdateUser(ctx, id, updates)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, conflictError("Email already in use")
	}
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	return user, nil
}

// UpdatePassword replaces the password after checking the current one.
func (s *UserService) UpdatePassword(ctx context.Context, id primitive.ObjectID, currentPassword, newPassword string) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(currentPassword)); err != nil {
		return nil, unauthorizedError("Current password is incorrect")
	}
	if err := checkPassword(newPassword); err != nil {
		return nil, err
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateUser(ctx, id, map[string]interface{}{"hashed_password": string(hashedPwd)})
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	logrus.WithField("userID", id.Hex()).Info("Password updated")
	return updated, nil
}

func checkPassword(password string) error {
	if len(password) < minPasswordLength {
		return validationError("Password must be at least 6 characters")
	}
	if err := passwordvalidator.Validate(password, passwordMinEntropyBits); err != nil {
		return validationError(err.Error())
	}
	return nil
}
