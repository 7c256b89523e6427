package doctors

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a disposable database only when TEST_DATABASE_URL is set.
func testStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping database test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	require.NoError(t, store.EnsureSchema(ctx))
	_, err = store.pool.Exec(ctx, `TRUNCATE doctors, disease_specializations RESTART IDENTITY`)
	require.NoError(t, err)
	return store
}

func TestConnectRejectsBadURL(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://user@localhost:99999/db")
	assert.Error(t, err)
}

func TestFindVerified(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	_, err := store.pool.Exec(ctx, `
		INSERT INTO doctors (username, email, specialization, experience, hospital, location, status) VALUES
		('ana', 'ana@example.com', 'Neurologist', 12, 'City', 'Pune', 'verified'),
		('ben', 'ben@example.com', 'Neurologist', 3, 'City', 'Pune', 'pending'),
		('cy', 'cy@example.com', 'Dermatologist', 5, 'North', 'Pune', 'verified'),
		('di', 'di@example.com', 'Neurologist', 8, 'South', 'Delhi', 'verified')`)
	require.NoError(t, err)

	got, err := store.FindVerified(ctx, []string{"Neurologist", "Dermatologist"}, "Pune")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ana", got[0].Username)
	assert.Equal(t, "cy", got[1].Username)

	none, err := store.FindVerified(ctx, nil, "Pune")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSpecializationsKeepsRowOrder(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	_, err := store.pool.Exec(ctx, `
		INSERT INTO disease_specializations (disease, specialization) VALUES
		('Migraine', 'Neurologist'),
		('Acne', 'Dermatologist'),
		('Migraine', 'General Physician')`)
	require.NoError(t, err)

	rows, err := store.Specializations(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Neurologist", rows[0].Name)
	assert.Equal(t, "General Physician", rows[2].Name)
}

func TestRegisterVerifyFlow(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	d, err := store.Register(ctx, Doctor{
		Username:       "eve",
		Email:          "eve@example.com",
		Specialization: "Neurologist",
		Experience:     4,
		Location:       "Pune",
		Status:         StatusVerified,
	})
	require.NoError(t, err)
	assert.NotZero(t, d.ID)
	assert.Equal(t, StatusPending, d.Status)

	found, err := store.FindVerified(ctx, []string{"Neurologist"}, "Pune")
	require.NoError(t, err)
	assert.Empty(t, found)

	pending, err := store.ListByStatus(ctx, StatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "eve", pending[0].Username)

	verified, err := store.Verify(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusVerified, verified.Status)

	found, err = store.FindVerified(ctx, []string{"Neurologist"}, "Pune")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, d.ID, found[0].ID)

	pending, err = store.ListByStatus(ctx, StatusPending)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	d := Doctor{Username: "fay", Email: "fay@example.com", Specialization: "GP", Location: "Pune"}
	_, err := store.Register(ctx, d)
	require.NoError(t, err)

	_, err = store.Register(ctx, d)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestVerifyUnknownDoctor(t *testing.T) {
	store := testStore(t)

	_, err := store.Verify(context.Background(), 4242)
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}
