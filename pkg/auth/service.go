// Package auth is the identity and access component: registration with
// email verification, login with signed bearer tokens, the password-reset
// flow and administrative user CRUD.
package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"mercadito-backend/pkg/apierr"
	"mercadito-backend/pkg/models"
)

type Users interface {
	Insert(ctx context.Context, user *models.User) error
	List(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByResetToken(ctx context.Context, token string) (*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, fields bson.M) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Notifier delivers verification and reset mail. Delivery failures are
// logged and swallowed; they never fail the triggering request.
type Notifier interface {
	SendVerificationCode(email, code string) error
	SendResetToken(email, token string) error
}

type Service struct {
	users    Users
	notifier Notifier
	tokens   *TokenManager
	resetTTL time.Duration
	logger   *zap.Logger
}

func NewService(users Users, notifier Notifier, tokens *TokenManager, resetTTL time.Duration, logger *zap.Logger) *Service {
	return &Service{
		users:    users,
		notifier: notifier,
		tokens:   tokens,
		resetTTL: resetTTL,
		logger:   logger,
	}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Country  string `json:"country"`
	Phone    string `json:"phone"`
}

// Register creates an unverified account, hashes the credential and mails a
// six-digit verification code. A duplicate email conflicts.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	switch {
	case in.Name == "" || in.Surname == "":
		return nil, apierr.Validation("name and surname are required")
	case in.Email == "" || !strings.Contains(in.Email, "@"):
		return nil, apierr.Validation("a valid email is required")
	case len(in.Password) < 6:
		return nil, apierr.Validation("password must be at least 6 characters")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	code, err := verificationCode()
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:             in.Name,
		Surname:          in.Surname,
		Email:            strings.ToLower(in.Email),
		Password:         string(hashed),
		Role:             models.RoleUser,
		IsVerified:       false,
		VerificationCode: code,
		Address:          in.Address,
		City:             in.City,
		Country:          in.Country,
		Phone:            in.Phone,
		CreatedAt:        time.Now(),
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, err
	}

	if err := s.notifier.SendVerificationCode(user.Email, code); err != nil {
		s.logger.Error("failed to send verification mail", zap.String("email", user.Email), zap.Error(err))
	}
	s.logger.Info("user registered", zap.String("userId", user.ID.Hex()))
	return user, nil
}

// Verify flips the account to verified when the code matches.
func (s *Service) Verify(ctx context.Context, email, code string) error {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return err
	}
	if user.IsVerified {
		return nil
	}
	if code == "" || user.VerificationCode != code {
		return apierr.Validation("invalid verification code")
	}
	_, err = s.users.Update(ctx, user.ID, bson.M{
		"isVerified":       true,
		"verificationCode": nil,
	})
	return err
}

// Login checks the credential and issues a signed bearer token. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if apierr.IsNotFound(err) {
			return "", nil, apierr.Auth("invalid email or password")
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", nil, apierr.Auth("invalid email or password")
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", nil, err
	}
	s.logger.Info("user logged in", zap.String("userId", user.ID.Hex()))
	return token, user, nil
}

// RequestPasswordReset issues a time-limited reset token and mails it.
// Unknown emails succeed silently so the endpoint cannot be used to probe
// for accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if apierr.IsNotFound(err) {
			return nil
		}
		return err
	}

	token := uuid.NewString()
	expiry := time.Now().Add(s.resetTTL)
	if _, err := s.users.Update(ctx, user.ID, bson.M{
		"resetToken":       token,
		"resetTokenExpiry": expiry,
	}); err != nil {
		return err
	}

	if err := s.notifier.SendResetToken(user.Email, token); err != nil {
		s.logger.Error("failed to send reset mail", zap.String("email", user.Email), zap.Error(err))
	}
	return nil
}

// VerifyResetToken checks that a reset token exists and has not expired.
func (s *Service) VerifyResetToken(ctx context.Context, token string) error {
	_, err := s.resetTokenUser(ctx, token)
	return err
}

// ResetPassword consumes a valid token: the credential is re-hashed and the
// token fields cleared in the same update.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 6 {
		return apierr.Validation("password must be at least 6 characters")
	}
	user, err := s.resetTokenUser(ctx, token)
	if err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.users.Update(ctx, user.ID, bson.M{
		"password":         string(hashed),
		"resetToken":       nil,
		"resetTokenExpiry": nil,
	})
	if err == nil {
		s.logger.Info("password reset", zap.String("userId", user.ID.Hex()))
	}
	return err
}

func (s *Service) resetTokenUser(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, apierr.Validation("invalid or expired reset token")
	}
	user, err := s.users.GetByResetToken(ctx, token)
	if err != nil {
		if apierr.IsNotFound(err) {
			return nil, apierr.Validation("invalid or expired reset token")
		}
		return nil, err
	}
	if user.ResetTokenExpiry == nil || time.Now().After(*user.ResetTokenExpiry) {
		return nil, apierr.Validation("invalid or expired reset token")
	}
	return user, nil
}

// ---- administrative user CRUD ----

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *Service) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

type UserUpdate struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	Address string `json:"address"`
	City    string `json:"city"`
	Country string `json:"country"`
	Phone   string `json:"phone"`
}

// UpdateUser applies the non-empty profile fields. Role changes are
// validated against the known role set.
func (s *Service) UpdateUser(ctx context.Context, id primitive.ObjectID, in UserUpdate) (*models.User, error) {
	fields := bson.M{}
	if in.Name != "" {
		fields["name"] = in.Name
	}
	if in.Surname != "" {
		fields["surname"] = in.Surname
	}
	if in.Email != "" {
		if !strings.Contains(in.Email, "@") {
			return nil, apierr.Validation("a valid email is required")
		}
		fields["email"] = strings.ToLower(in.Email)
	}
	if in.Role != "" {
		if !models.ValidRole(in.Role) {
			return nil, apierr.Validation(fmt.Sprintf("invalid role %q", in.Role))
		}
		fields["role"] = in.Role
	}
	if in.Address != "" {
		fields["address"] = in.Address
	}
	if in.City != "" {
		fields["city"] = in.City
	}
	if in.Country != "" {
		fields["country"] = in.Country
	}
	if in.Phone != "" {
		fields["phone"] = in.Phone
	}
	if len(fields) == 0 {
		return nil, apierr.Validation("no fields to update")
	}
	return s.users.Update(ctx, id, fields)
}

func (s *Service) UpdatePassword(ctx context.Context, id primitive.ObjectID, newPassword string) error {
	if len(newPassword) < 6 {
		return apierr.Validation("password must be at least 6 characters")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.users.Update(ctx, id, bson.M{"password": string(hashed)})
	return err
}

func (s *Service) DeleteUser(ctx context.Context, id primitive.ObjectID) error {
	return s.users.Delete(ctx, id)
}

// verificationCode draws a six-digit one-time code from crypto/rand.
func verificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
