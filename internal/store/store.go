// Package store holds the two database handles of the pool.
//
// UserStore connects with the low-privilege anon credential and serves
// caller-initiated procedures. ServiceStore connects with the service-role
// credential and serves system work: fan-out, expiry, audit writes and
// account removal. The two types expose disjoint methods so a handler can
// never reach a procedure through the wrong credential.
package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"zing_pool/internal/models"
)

type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

type UserStore struct {
	exec *Executor
	now  Clock
}

func NewUserStore(db *gorm.DB, timeout time.Duration, now Clock) *UserStore {
	if now == nil {
		now = utcNow
	}
	return &UserStore{exec: NewExecutor(db, timeout), now: now}
}

type ServiceStore struct {
	exec *Executor
	now  Clock
}

func NewServiceStore(db *gorm.DB, timeout time.Duration, now Clock) *ServiceStore {
	if now == nil {
		now = utcNow
	}
	return &ServiceStore{exec: NewExecutor(db, timeout), now: now}
}

// Ping checks that the service connection is usable.
func (s *ServiceStore) Ping(ctx context.Context) error {
	return s.exec.Do(ctx, "ping", func(db *gorm.DB) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(db.Statement.Context)
	})
}

// Migrate creates the pool tables. Production schemas are owned elsewhere;
// this serves local development and tests.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(models.All()...)
}
