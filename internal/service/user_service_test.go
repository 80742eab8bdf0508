package service

import (
	"context"
	"testing"

	"backend/internal/model"
	"backend/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCreateUserValidatesRole(t *testing.T) {
	svc := NewUserService(newMockUserRepo())

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "budi",
		Email:    "budi@kampus.ac.id",
		Password: "rahasia1",
		Role:     "quản lý",
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateUserHashesPassword(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewUserService(repo)

	resp, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username:     "siti",
		Email:        "siti@kampus.ac.id",
		Password:     "rahasia1",
		Role:         model.RoleSupervisor,
		CanSupervise: true,
	})
	require.NoError(t, err)
	assert.True(t, resp.CanSupervise)

	stored, err := repo.GetByUsername(context.Background(), "siti")
	require.NoError(t, err)
	assert.NotEqual(t, "rahasia1", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("rahasia1")))
}

func TestCreateUserRejectsDuplicates(t *testing.T) {
	repo := newMockUserRepo()
	repo.add(&model.User{Username: "budi", Email: "budi@kampus.ac.id", Role: model.RoleStudent})
	svc := NewUserService(repo)

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "budi",
		Email:    "lain@kampus.ac.id",
		Password: "rahasia1",
		Role:     model.RoleStudent,
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.CreateUser(context.Background(), CreateUserRequest{
		Username: "lain",
		Email:    "budi@kampus.ac.id",
		Password: "rahasia1",
		Role:     model.RoleStudent,
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	repo := newMockUserRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("benar123"), bcrypt.DefaultCost)
	require.NoError(t, err)
	repo.add(&model.User{
		Username: "budi",
		Email:    "budi@kampus.ac.id",
		Password: string(hash),
		Role:     model.RoleStudent,
	})
	svc := NewUserService(repo)

	_, err = svc.Login(context.Background(), LoginUserRequest{Email: "budi@kampus.ac.id", Password: "salah123"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	tokens, err := svc.Login(context.Background(), LoginUserRequest{Email: "budi@kampus.ac.id", Password: "benar123"})
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
}

func TestValidateRoleCoversWholeChain(t *testing.T) {
	for _, role := range model.ValidRoles {
		assert.True(t, validateRole(role), "role %s", role)
	}
	assert.False(t, validateRole("dekan"))
}
