package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/orders/internal/customer/domain"
	"github.com/allisson/orders/internal/testutil"
)

func newTestCustomer(email string) *domain.Customer {
	return &domain.Customer{
		ID:    uuid.Must(uuid.NewV7()),
		Name:  "Test Customer",
		Email: email,
	}
}

func TestPostgreSQLCustomerRepository_CreateAndGet(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLCustomerRepository(db)
	ctx := context.Background()

	customer := newTestCustomer("create-get@example.com")
	require.NoError(t, repo.Create(ctx, customer))

	got, err := repo.GetByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, customer.ID, got.ID)
	assert.Equal(t, "create-get@example.com", got.Email)

	byEmail, err := repo.GetByEmail(ctx, "create-get@example.com")
	require.NoError(t, err)
	assert.Equal(t, customer.ID, byEmail.ID)
}

func TestPostgreSQLCustomerRepository_Create_DuplicateEmail(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLCustomerRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestCustomer("dup@example.com")))

	err := repo.Create(ctx, newTestCustomer("dup@example.com"))
	assert.True(t, errors.Is(err, domain.ErrCustomerAlreadyExists))
}

func TestPostgreSQLCustomerRepository_GetByID_NotFound(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)

	repo := NewPostgreSQLCustomerRepository(db)

	_, err := repo.GetByID(context.Background(), uuid.Must(uuid.NewV7()))
	assert.True(t, errors.Is(err, domain.ErrCustomerNotFound))
}

func TestPostgreSQLCustomerRepository_Update(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLCustomerRepository(db)
	ctx := context.Background()

	customer := newTestCustomer("update@example.com")
	require.NoError(t, repo.Create(ctx, customer))

	customer.Name = "Updated Name"
	customer.Email = "updated@example.com"
	require.NoError(t, repo.Update(ctx, customer))

	got, err := repo.GetByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated Name", got.Name)
	assert.Equal(t, "updated@example.com", got.Email)
}

func TestPostgreSQLCustomerRepository_Delete(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLCustomerRepository(db)
	ctx := context.Background()

	customer := newTestCustomer("delete@example.com")
	require.NoError(t, repo.Create(ctx, customer))
	require.NoError(t, repo.Delete(ctx, customer.ID))

	_, err := repo.GetByID(ctx, customer.ID)
	assert.True(t, errors.Is(err, domain.ErrCustomerNotFound))

	err = repo.Delete(ctx, customer.ID)
	assert.True(t, errors.Is(err, domain.ErrCustomerNotFound))
}

func TestPostgreSQLCustomerRepository_List(t *testing.T) {
	testutil.SkipIfNoPostgres(t)

	db := testutil.SetupPostgresDB(t)
	defer testutil.TeardownDB(t, db)
	defer testutil.CleanupPostgresDB(t, db)

	repo := NewPostgreSQLCustomerRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestCustomer("list1@example.com")))
	require.NoError(t, repo.Create(ctx, newTestCustomer("list2@example.com")))
	require.NoError(t, repo.Create(ctx, newTestCustomer("list3@example.com")))

	customers, err := repo.List(ctx, 0, 2)
	require.NoError(t, err)
	assert.Len(t, customers, 2)

	customers, err = repo.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, customers, 1)
}
