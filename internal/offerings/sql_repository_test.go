package offerings

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var requestColumnList = []string{
	"id", "provider_id", "service_ids", "status", "reason",
	"decided_by", "decided_at", "created_at",
}

func TestSQLCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	req := &Request{
		ID: "r1", ProviderID: "prov-1",
		ServiceIDs: []string{"s1", "s2"},
		Status:     RequestPending,
		CreatedAt:  now,
	}

	mock.ExpectExec("INSERT INTO offering_requests").
		WithArgs("r1", "prov-1", pq.Array(req.ServiceIDs), "pending", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewSQLRepository(db)
	require.NoError(t, repo.Create(context.Background(), req))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM offering_requests WHERE id").
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows(requestColumnList).
			AddRow("r1", "prov-1", "{s1,s2}", "approved", "", "admin-1", now, now))

	repo := NewSQLRepository(db)
	got, err := repo.GetByID(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, RequestApproved, got.Status)
	assert.Equal(t, []string{"s1", "s2"}, got.ServiceIDs)
	assert.Equal(t, "admin-1", got.DecidedBy)
	require.NotNil(t, got.DecidedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM offering_requests WHERE id").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	repo := NewSQLRepository(db)
	_, err = repo.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLUpdateNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	req := &Request{ID: "ghost", Status: RequestRejected, Reason: "no", DecidedBy: "admin-1", DecidedAt: &now}

	mock.ExpectExec("UPDATE offering_requests").
		WithArgs("ghost", "rejected", "no", "admin-1", &now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewSQLRepository(db)
	assert.ErrorIs(t, repo.Update(context.Background(), req), ErrNotFound)
}

func TestSQLListPending(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM offering_requests WHERE status = 'pending'").
		WillReturnRows(sqlmock.NewRows(requestColumnList).
			AddRow("r1", "prov-1", "{s1}", "pending", "", nil, nil, now))

	repo := NewSQLRepository(db)
	got, err := repo.ListPending(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, RequestPending, got[0].Status)
	assert.Nil(t, got[0].DecidedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}
