package image_cache_gateway

import (
	"context"
	"io"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imgd/driver/cache_db"
	"imgd/utils/errors"
)

const dbTestKey = "1906d1842b5aa17fa9ee86eb972ad8cdc56372acb2557aa4e29a21d5b3a5a21c"

func newMockGateway(t *testing.T) (*DBCacheGateway, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewDBCacheGateway(cache_db.NewCacheDBRepository(mock)), mock
}

func TestDBCacheGateway_ExistsHit(t *testing.T) {
	gateway, mock := newMockGateway(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(dbTestKey).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := gateway.Exists(context.Background(), dbTestKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBCacheGateway_OpenStreamsStoredBytes(t *testing.T) {
	gateway, mock := newMockGateway(t)
	payload := []byte("stored-webp-bytes")

	mock.ExpectQuery(`SELECT image_data FROM image_cache`).
		WithArgs(dbTestKey).
		WillReturnRows(pgxmock.NewRows([]string{"image_data"}).AddRow(payload))

	entry, err := gateway.Open(context.Background(), dbTestKey)
	require.NoError(t, err)
	defer entry.Close()

	data, err := io.ReadAll(entry)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBCacheGateway_OpenVanishedEntry(t *testing.T) {
	gateway, mock := newMockGateway(t)

	mock.ExpectQuery(`SELECT image_data FROM image_cache`).
		WithArgs(dbTestKey).
		WillReturnRows(pgxmock.NewRows([]string{"image_data"}))

	_, err := gateway.Open(context.Background(), dbTestKey)
	require.Error(t, err)
	assert.True(t, errors.IsCacheIOError(err))
}

func TestDBCacheGateway_CommitPersists(t *testing.T) {
	gateway, mock := newMockGateway(t)
	payload := []byte("transformed-bytes")

	mock.ExpectExec(`INSERT INTO image_cache`).
		WithArgs(dbTestKey, payload).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	sink, err := gateway.Create(context.Background(), dbTestKey)
	require.NoError(t, err)

	_, err = sink.Write(payload)
	require.NoError(t, err)
	require.NoError(t, sink.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBCacheGateway_AbortWritesNothing(t *testing.T) {
	gateway, mock := newMockGateway(t)

	sink, err := gateway.Create(context.Background(), dbTestKey)
	require.NoError(t, err)

	_, err = sink.Write([]byte("discarded"))
	require.NoError(t, err)
	require.NoError(t, sink.Abort())

	// No SQL expectations were set: the abort path must not reach the pool.
	assert.NoError(t, mock.ExpectationsWereMet())
}
