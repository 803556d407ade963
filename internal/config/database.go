package config

import (
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"zing_pool/internal/logger"
)

const connectAttempts = 10

// OpenUserDB connects with the low-privilege anon credential.
func (c *Config) OpenUserDB() (*gorm.DB, error) {
	dsn, err := c.dsn(c.AnonRole, c.AnonKey)
	if err != nil {
		return nil, err
	}
	return open("user", dsn)
}

// OpenServiceDB connects with the service-role credential.
func (c *Config) OpenServiceDB() (*gorm.DB, error) {
	dsn, err := c.dsn(c.ServiceRole, c.ServiceRoleKey)
	if err != nil {
		return nil, err
	}
	return open("service", dsn)
}

// dsn puts role and key into the userinfo of STORE_URL.
func (c *Config) dsn(role, key string) (string, error) {
	u, err := url.Parse(c.StoreURL)
	if err != nil {
		return "", fmt.Errorf("parse STORE_URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("STORE_URL: unsupported scheme %q", u.Scheme)
	}
	u.User = url.UserPassword(role, key)
	q := u.Query()
	if q.Get("sslmode") == "" {
		q.Set("sslmode", "disable")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func open(handle, dsn string) (*gorm.DB, error) {
	var (
		sqlDB *sql.DB
		err   error
	)
	for i := 1; i <= connectAttempts; i++ {
		sqlDB, err = sql.Open("postgres", dsn)
		if err == nil {
			err = sqlDB.Ping()
		}
		if err == nil {
			break
		}
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
		logrus.WithFields(logrus.Fields{"handle": handle, "attempt": i}).WithError(err).Warn("Database not ready yet")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("connect %s store: %w", handle, err)
	}

	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Gorm(),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", handle, err)
	}
	logrus.WithField("handle", handle).Info("Database connected")
	return db, nil
}
