package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memoryUserRepo struct {
	users  map[int64]User
	nextID int64
}

func (r *memoryUserRepo) List(ctx context.Context) ([]User, error) {
	out := []User{}
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *memoryUserRepo) Get(ctx context.Context, id int64) (User, error) {
	u, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (r *memoryUserRepo) Create(ctx context.Context, user User) (int64, error) {
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return 0, ErrDuplicate
		}
	}
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = user
	return user.ID, nil
}

func (r *memoryUserRepo) SetActive(ctx context.Context, id int64, active bool) error {
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	u.IsActive = active
	r.users[id] = u
	return nil
}

func validCreateInput() CreateInput {
	return CreateInput{
		Username:   "somchai",
		Password:   "supersecret",
		FirstName:  "สมชาย",
		LastName:   "ใจดี",
		HospitalID: 1,
		WardID:     3,
	}
}

func TestCreateHashesPassword(t *testing.T) {
	repo := &memoryUserRepo{users: map[int64]User{}}
	svc := NewService(repo)
	ctx := context.Background()

	user, err := svc.Create(ctx, validCreateInput())
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.Empty(t, user.PasswordHash, "hash never leaves the service")
	require.True(t, user.IsActive)
	require.Equal(t, "สมชาย ใจดี", user.FullName())

	stored := repo.users[user.ID]
	require.NotEqual(t, "supersecret", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("supersecret")))

	_, err = svc.Create(ctx, validCreateInput())
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestCreateRequiresWardAndHospital(t *testing.T) {
	svc := NewService(&memoryUserRepo{users: map[int64]User{}})
	ctx := context.Background()

	input := validCreateInput()
	input.WardID = 0
	_, err := svc.Create(ctx, input)
	require.ErrorIs(t, err, ErrValidation)

	input = validCreateInput()
	input.HospitalID = 0
	_, err = svc.Create(ctx, input)
	require.ErrorIs(t, err, ErrValidation)

	input = validCreateInput()
	input.Password = "short"
	_, err = svc.Create(ctx, input)
	require.ErrorIs(t, err, ErrValidation)
}

func TestDeactivate(t *testing.T) {
	repo := &memoryUserRepo{users: map[int64]User{}}
	svc := NewService(repo)
	ctx := context.Background()

	user, err := svc.Create(ctx, validCreateInput())
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, user.ID))
	require.False(t, repo.users[user.ID].IsActive)

	require.ErrorIs(t, svc.Deactivate(ctx, 99), ErrNotFound)
}
