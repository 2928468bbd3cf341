package cache_db

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "d6f644b19812e97b5d871658d6d3400ecd4787faeb9b8990c1e7608288664be7"

func newMockRepo(t *testing.T) (*CacheDBRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewCacheDBRepository(mock), mock
}

func TestHasImage(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(testKey).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.HasImage(context.Background(), testKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetImage_Found(t *testing.T) {
	repo, mock := newMockRepo(t)
	payload := []byte("cached-bytes")

	mock.ExpectQuery(`SELECT image_data FROM image_cache`).
		WithArgs(testKey).
		WillReturnRows(pgxmock.NewRows([]string{"image_data"}).AddRow(payload))

	data, err := repo.GetImage(context.Background(), testKey)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetImage_MissingReturnsNil(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT image_data FROM image_cache`).
		WithArgs(testKey).
		WillReturnRows(pgxmock.NewRows([]string{"image_data"}))

	data, err := repo.GetImage(context.Background(), testKey)
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveImage(t *testing.T) {
	repo, mock := newMockRepo(t)
	payload := []byte("transformed")

	mock.ExpectExec(`INSERT INTO image_cache`).
		WithArgs(testKey, payload).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.SaveImage(context.Background(), testKey, payload)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
