package job

import (
	"context"
	"errors"
)

// ErrHealthcheckFailed wraps every job health check failure.
var ErrHealthcheckFailed = errors.New("job: healthcheck failed")

// Healthcheck fails while the manager is stopped and when River's job table
// cannot be queried, which also catches a database missing River migrations.
func Healthcheck(m *Manager) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if m == nil || !m.running() {
			return errors.Join(ErrHealthcheckFailed, ErrNotStarted)
		}

		var n int
		if err := m.pool.QueryRow(ctx, "SELECT count(*) FROM (SELECT 1 FROM river_job LIMIT 1) j").Scan(&n); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}

func (m *Manager) running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}
