package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memAccountStore struct {
	accounts []*Account
}

func (s *memAccountStore) FindByID(ctx context.Context, id primitive.ObjectID) (*Account, error) {
	for _, a := range s.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (s *memAccountStore) FindByEmail(ctx context.Context, email string) (*Account, error) {
	for _, a := range s.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, nil
}

func (s *memAccountStore) FindByRegNo(ctx context.Context, regNo string) (*Account, error) {
	for _, a := range s.accounts {
		if a.RegNo == regNo && a.RegNo != "" {
			return a, nil
		}
	}
	return nil, nil
}

func (s *memAccountStore) CreateAccount(ctx context.Context, account *Account) error {
	s.accounts = append(s.accounts, account)
	return nil
}

func (s *memAccountStore) UpdateAccount(ctx context.Context, account *Account) error {
	for i, a := range s.accounts {
		if a.ID == account.ID {
			s.accounts[i] = account
			return nil
		}
	}
	return nil
}

func (s *memAccountStore) ListByRole(ctx context.Context, roles ...string) ([]*Account, error) {
	var out []*Account
	for _, a := range s.accounts {
		if !a.IsActive {
			continue
		}
		for _, role := range roles {
			if a.Role == role {
				out = append(out, a)
				break
			}
		}
	}
	return out, nil
}

type noopMailer struct {
	sent int
}

func (m *noopMailer) SendEmail(to, subject, body string) error {
	m.sent++
	return nil
}

func newTestAccountService(store *memAccountStore) *AccountService {
	return &AccountService{store: store, email: &noopMailer{}, logger: zap.NewNop()}
}

func register(studentRegNo, role string) RegisterRequest {
	return RegisterRequest{
		RegNo:      studentRegNo,
		Name:       "Raj",
		Email:      "raj@college.edu",
		Password:   "s3cret",
		Role:       role,
		Department: "CSE",
	}
}

func TestRegisterAccountValidation(t *testing.T) {
	svc := newTestAccountService(&memAccountStore{})

	err := svc.RegisterAccount(context.Background(), register("", "dean"))
	require.EqualError(t, err, "invalid role")

	err = svc.RegisterAccount(context.Background(), register("", RoleStudent))
	require.EqualError(t, err, "registration number is required for students")

	req := register("REG001", RoleStudent)
	req.Email = ""
	err = svc.RegisterAccount(context.Background(), req)
	require.EqualError(t, err, "name, email and password are required")
}

func TestRegisterAccountHashesPassword(t *testing.T) {
	store := &memAccountStore{}
	svc := newTestAccountService(store)

	require.NoError(t, svc.RegisterAccount(context.Background(), register("REG001", RoleStudent)))

	require.Len(t, store.accounts, 1)
	account := store.accounts[0]
	assert.NotEqual(t, "s3cret", account.PasswordHash)
	assert.True(t, CheckPasswordHash("s3cret", account.PasswordHash))
	assert.True(t, account.IsActive)
	assert.Equal(t, "REG001", account.RegNo)
}

func TestRegisterAccountClearsRegNoForStaff(t *testing.T) {
	store := &memAccountStore{}
	svc := newTestAccountService(store)

	req := register("REG001", RoleStaff)
	require.NoError(t, svc.RegisterAccount(context.Background(), req))

	require.Len(t, store.accounts, 1)
	assert.Empty(t, store.accounts[0].RegNo)
}

func seedAccount(store *memAccountStore, regNo, email, password, role string, active bool) *Account {
	hash, _ := HashPassword(password)
	a := &Account{
		ID:           primitive.NewObjectID(),
		RegNo:        regNo,
		Name:         "Someone",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     active,
		CreatedAt:    time.Now().UTC(),
	}
	store.accounts = append(store.accounts, a)
	return a
}

func TestAuthenticateByEmailAndRegNo(t *testing.T) {
	store := &memAccountStore{}
	seedAccount(store, "", "sharma@college.edu", "pw-staff", RoleStaff, true)
	seedAccount(store, "REG007", "raj@college.edu", "pw-student", RoleStudent, true)
	svc := newTestAccountService(store)

	token, err := svc.Authenticate(context.Background(), Credential{Identifier: "sharma@college.edu", Password: "pw-staff"})
	require.NoError(t, err)
	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, RoleStaff, claims.Role)

	token, err = svc.Authenticate(context.Background(), Credential{Identifier: "REG007", Password: "pw-student"})
	require.NoError(t, err)
	claims, err = ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, RoleStudent, claims.Role)
	assert.Equal(t, "raj@college.edu", claims.Email)
}

func TestAuthenticateFailures(t *testing.T) {
	store := &memAccountStore{}
	seedAccount(store, "", "sharma@college.edu", "pw-staff", RoleStaff, true)
	seedAccount(store, "", "left@college.edu", "pw-gone", RoleStaff, false)
	svc := newTestAccountService(store)

	_, err := svc.Authenticate(context.Background(), Credential{Identifier: "sharma@college.edu", Password: "wrong"})
	require.EqualError(t, err, "invalid credentials")

	_, err = svc.Authenticate(context.Background(), Credential{Identifier: "nobody@college.edu", Password: "pw"})
	require.EqualError(t, err, "invalid credentials")

	_, err = svc.Authenticate(context.Background(), Credential{Identifier: "left@college.edu", Password: "pw-gone"})
	require.EqualError(t, err, "account is deactivated")
}

func TestCreateStaffAlwaysStaffRole(t *testing.T) {
	store := &memAccountStore{}
	svc := newTestAccountService(store)

	account, err := svc.CreateStaff(context.Background(), CreateStaffRequest{
		Name:       "Dr. Sharma",
		Email:      "sharma@college.edu",
		Password:   "pw",
		Department: "CSE",
	})

	require.NoError(t, err)
	assert.Equal(t, RoleStaff, account.Role)
	assert.True(t, account.IsActive)
}

func TestResetPasswordRoundTrip(t *testing.T) {
	store := &memAccountStore{}
	account := seedAccount(store, "", "raj@college.edu", "old-pw", RoleStudent, true)
	svc := newTestAccountService(store)

	token, err := GenerateJWT(account.ID.Hex(), account.Name, account.Email, account.Role, 15*time.Minute)
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(context.Background(), token, "new-pw"))
	assert.True(t, CheckPasswordHash("new-pw", store.accounts[0].PasswordHash))

	err = svc.ResetPassword(context.Background(), "garbage-token", "x")
	require.EqualError(t, err, "invalid token")
}

func TestSigningKeyCachedOnFirstUse(t *testing.T) {
	key := GetJWTKey()
	id := primitive.NewObjectID().Hex()
	token, err := GenerateJWT(id, "Raj", "raj@college.edu", RoleStudent, time.Hour)
	require.NoError(t, err)

	// A later env change must not rotate the key mid-process: tokens issued
	// before it still validate.
	t.Setenv("JWT_KEY", "rotated-after-first-use")
	assert.Equal(t, key, GetJWTKey())
	_, err = ValidateJWT(token)
	require.NoError(t, err)
}

func TestJWTRoundTrip(t *testing.T) {
	id := primitive.NewObjectID().Hex()
	token, err := GenerateJWT(id, "Raj", "raj@college.edu", RoleStudent, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.AccountID)
	assert.Equal(t, "Raj", claims.Name)
	assert.Equal(t, RoleStudent, claims.Role)

	expired, err := GenerateJWT(id, "Raj", "raj@college.edu", RoleStudent, -time.Minute)
	require.NoError(t, err)
	_, err = ValidateJWT(expired)
	require.Error(t, err)
}
