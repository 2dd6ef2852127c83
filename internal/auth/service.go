package auth

import (
	"ProjectTracker/internal/config"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type accountStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByRegNo(ctx context.Context, regNo string) (*Account, error)
	CreateAccount(ctx context.Context, account *Account) error
	UpdateAccount(ctx context.Context, account *Account) error
	ListByRole(ctx context.Context, roles ...string) ([]*Account, error)
}

type emailSender interface {
	SendEmail(to, subject, body string) error
}

type AccountService struct {
	store  accountStore
	email  emailSender
	logger *zap.Logger
}

func NewAccountService(repo *AccountRepository, emailService *config.EmailService, logger *zap.Logger) *AccountService {
	return &AccountService{store: repo, email: emailService, logger: logger}
}

func validRole(role string) bool {
	return role == RoleStudent || role == RoleStaff || role == RoleHOD
}

func (s *AccountService) RegisterAccount(ctx context.Context, req RegisterRequest) error {
	if !validRole(req.Role) {
		return errors.New("invalid role")
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return errors.New("name, email and password are required")
	}
	if req.Role == RoleStudent && req.RegNo == "" {
		return errors.New("registration number is required for students")
	}
	if req.Role != RoleStudent {
		req.RegNo = ""
	}

	hashPassword, err := HashPassword(req.Password)
	if err != nil {
		return err
	}

	account := &Account{
		ID:           primitive.NewObjectID(),
		RegNo:        req.RegNo,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashPassword,
		Role:         req.Role,
		Department:   req.Department,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	// The unique indexes on email/reg_no reject duplicates; no pre-check query.
	return s.store.CreateAccount(ctx, account)
}

func (s *AccountService) Authenticate(ctx context.Context, cred Credential) (string, error) {
	var account *Account
	var err error

	// Students sign in with their registration number, staff and HOD with email.
	if isEmail(cred.Identifier) {
		account, err = s.store.FindByEmail(ctx, cred.Identifier)
	} else {
		account, err = s.store.FindByRegNo(ctx, cred.Identifier)
	}
	if err != nil {
		return "", err
	}
	if account == nil || !CheckPasswordHash(cred.Password, account.PasswordHash) {
		return "", errors.New("invalid credentials")
	}
	if !account.IsActive {
		return "", errors.New("account is deactivated")
	}

	token, err := GenerateJWT(account.ID.Hex(), account.Name, account.Email, account.Role, 24*time.Hour)
	if err != nil {
		return "", errors.New("token not generated")
	}
	return token, nil
}

func isEmail(identifier string) bool {
	for _, c := range identifier {
		if c == '@' {
			return true
		}
	}
	return false
}

// CreateStaff lets the HOD provision staff accounts directly.
func (s *AccountService) CreateStaff(ctx context.Context, req CreateStaffRequest) (*Account, error) {
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return nil, errors.New("name, email and password are required")
	}
	hashPassword, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	account := &Account{
		ID:           primitive.NewObjectID(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hashPassword,
		Role:         RoleStaff,
		Department:   req.Department,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *AccountService) GetAccount(ctx context.Context, id primitive.ObjectID) (*Account, error) {
	return s.store.FindByID(ctx, id)
}

func (s *AccountService) ListByRole(ctx context.Context, roles ...string) ([]*Account, error) {
	return s.store.ListByRole(ctx, roles...)
}

func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	account, err := s.store.FindByEmail(ctx, email)
	if err != nil || account == nil {
		return errors.New("account not found")
	}
	resetToken, _ := GenerateJWT(account.ID.Hex(), account.Name, account.Email, account.Role, 15*time.Minute)

	subject := "Password Reset"
	body := fmt.Sprintf("Click the link to reset your password: %s/reset-password?token=%s", os.Getenv("CLIENT_URL"), resetToken)
	if err := s.email.SendEmail(email, subject, body); err != nil {
		s.logger.Sugar().Errorf("failed to send reset password email to %s: %s", email, err.Error())
		return errors.New("failed to send reset password email")
	}
	return nil
}

func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := ValidateJWT(token)
	if err != nil {
		return errors.New("invalid token")
	}
	account, err := s.store.FindByEmail(ctx, claims.Email)
	if err != nil || account == nil {
		return errors.New("account not found")
	}
	hashPassword, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	account.PasswordHash = hashPassword
	return s.store.UpdateAccount(ctx, account)
}
