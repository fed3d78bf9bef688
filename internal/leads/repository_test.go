package leads

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepository_CreateAssignsSequentialIDs(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	req := carlosRequest()
	first, err := repo.Create(ctx, &req)
	require.NoError(t, err)
	second, err := repo.Create(ctx, &req)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, StatusPending, first.Status)
	assert.False(t, first.CreatedAt.IsZero())
}

func TestInMemoryRepository_ListNewestFirst(t *testing.T) {
	repo := NewInMemoryRepository()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	repo.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	ctx := context.Background()
	for _, name := range []string{"primero", "segundo", "tercero"} {
		_, err := repo.Create(ctx, &CreateLeadRequest{Name: name, WhatsApp: "1", Classification: ClassificationCold})
		require.NoError(t, err)
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "tercero", list[0].Name)
	assert.Equal(t, "primero", list[2].Name)
}

func TestInMemoryRepository_ListReturnsCopies(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	req := carlosRequest()
	_, err := repo.Create(ctx, &req)
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	list[0].Status = StatusAttended

	again, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, again[0].Status)
}

func TestInMemoryRepository_ConcurrentCreates(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := carlosRequest()
			_, err := repo.Create(ctx, &req)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 50)
	seen := map[int64]bool{}
	for _, l := range list {
		assert.False(t, seen[l.ID], "duplicate id %d", l.ID)
		seen[l.ID] = true
	}
}

func TestSQLiteRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSQLiteRepository(db)
	fixed := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	mock.ExpectExec("INSERT INTO leads").
		WithArgs("Carlos", "5215512345678", "renta", "departamento", "Condesa", "$20,000 MXN", "", "1-3 meses", "WARM", "pending", "2024-06-01 12:30:00.000000").
		WillReturnResult(sqlmock.NewResult(1, 1))

	req := carlosRequest()
	lead, err := repo.Create(context.Background(), &req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), lead.ID)
	assert.Equal(t, StatusPending, lead.Status)
	assert.Equal(t, fixed, lead.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRepository_CreateFailureIsStorageError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO leads").WillReturnError(errors.New("disk I/O error"))

	req := carlosRequest()
	_, err = NewSQLiteRepository(db).Create(context.Background(), &req)
	require.Error(t, err)
	assert.True(t, IsStorageError(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	cols := []string{"id", "name", "whatsapp", "operation", "property_type", "zone", "budget", "financing", "timeline", "classification", "status", "created_at"}
	rows := sqlmock.NewRows(cols).
		AddRow(2, "Ana", "555-1234", "compra", "casa", "Polanco", "$1M", "no", "inmediato", "HOT", "attended", "2024-06-02 09:00:00.000000").
		AddRow(1, "Carlos", "5215512345678", "renta", "departamento", "Condesa", "$20,000 MXN", "sí", "1-3 meses", "WARM", "pending", "2024-06-01 12:30:00.000000")
	mock.ExpectQuery("SELECT id, name, whatsapp").WillReturnRows(rows)

	list, err := NewSQLiteRepository(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), list[0].ID)
	assert.Equal(t, ClassificationHot, list[0].Classification)
	assert.Equal(t, StatusAttended, list[0].Status)
	assert.Equal(t, time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC), list[0].CreatedAt)
	assert.Equal(t, "sí", list[1].Financing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE leads SET status").
		WithArgs("attended", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewSQLiteRepository(db).UpdateStatus(context.Background(), 7, StatusAttended)
	assert.NoError(t, err, "zero rows affected is not an error")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRepository_FileRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "leads.db")

	repo, err := OpenSQLiteRepository(ctx, path)
	require.NoError(t, err)

	req := carlosRequest()
	created, err := repo.Create(ctx, &req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	require.NoError(t, repo.UpdateStatus(ctx, created.ID, StatusAttended))
	require.NoError(t, repo.Close())

	// Reopening must not fail on the existing schema.
	repo, err = OpenSQLiteRepository(ctx, path)
	require.NoError(t, err)
	defer repo.Close()

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Carlos", list[0].Name)
	assert.Equal(t, StatusAttended, list[0].Status)
	assert.True(t, created.CreatedAt.Truncate(time.Microsecond).Equal(list[0].CreatedAt))
}

func TestPostgresRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	createdAt := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO leads").
		WithArgs("Carlos", "5215512345678", "renta", "departamento", "Condesa", "$20,000 MXN", "", "1-3 meses", "WARM").
		WillReturnRows(pgxmock.NewRows([]string{"id", "status", "created_at"}).AddRow(int64(1), "pending", createdAt))

	req := carlosRequest()
	lead, err := NewPostgresRepository(mock).Create(context.Background(), &req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), lead.ID)
	assert.Equal(t, StatusPending, lead.Status)
	assert.Equal(t, createdAt, lead.CreatedAt)
	assert.Equal(t, ClassificationWarm, lead.Classification)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_CreateValidatesFirst(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	req := carlosRequest()
	req.Classification = "LUKEWARM"
	_, err = NewPostgresRepository(mock).Create(context.Background(), &req)
	assert.ErrorIs(t, err, ErrInvalidClassification)
	assert.NoError(t, mock.ExpectationsWereMet(), "no query should be issued")
}

func TestPostgresRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	ts := time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC)
	cols := []string{"id", "name", "whatsapp", "operation", "property_type", "zone", "budget", "financing", "timeline", "classification", "status", "created_at"}
	mock.ExpectQuery("SELECT id, name, whatsapp").
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow(int64(5), "Ana", "555-1234", "compra", "casa", "Polanco", "$1M", "no", "inmediato", "HOT", "pending", ts))

	list, err := NewPostgresRepository(mock).List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(5), list[0].ID)
	assert.Equal(t, ClassificationHot, list[0].Classification)
	assert.Equal(t, ts, list[0].CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT id, name, whatsapp").WillReturnError(errors.New("connection refused"))

	_, err = NewPostgresRepository(mock).List(context.Background())
	require.Error(t, err)
	assert.True(t, IsStorageError(err))
}

func TestPostgresRepository_UpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("UPDATE leads SET status").
		WithArgs("attended", int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, NewPostgresRepository(mock).UpdateStatus(context.Background(), 1, StatusAttended))
	assert.NoError(t, mock.ExpectationsWereMet())
}
