package database

import (
	"errors"
	"testing"

	"simplenotes/config"

	"github.com/stretchr/testify/assert"
)

type flakyPinger struct {
	failures int
	calls    int
}

func (p *flakyPinger) Ping() error {
	p.calls++
	if p.calls <= p.failures {
		return errors.New("connection refused")
	}
	return nil
}

func TestConnectWithoutDriverIsUnavailable(t *testing.T) {
	db, _, err := Connect(config.Database{})
	assert.Nil(t, db)
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestConnectUnknownDriverIsUnavailable(t *testing.T) {
	_, _, err := Connect(config.Database{Driver: "oracle", URL: "x"})
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestConnectMissingURLIsUnavailable(t *testing.T) {
	_, _, err := Connect(config.Database{Driver: "postgres"})
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestWaitForPingRetries(t *testing.T) {
	p := &flakyPinger{failures: 2}
	assert.NoError(t, waitForPing(p, 3, 0))
	assert.Equal(t, 3, p.calls)

	p = &flakyPinger{failures: 5}
	assert.Error(t, waitForPing(p, 2, 0))
	assert.Equal(t, 2, p.calls)

	p = &flakyPinger{}
	assert.NoError(t, waitForPing(p, 0, 0))
	assert.Equal(t, 1, p.calls)
}

func TestDialectDriverName(t *testing.T) {
	assert.Equal(t, "postgres", Postgres.driverName())
	assert.Equal(t, "sqlite3", SQLite.driverName())
}
