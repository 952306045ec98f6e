package dao

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/btcsuite/btclog"
	"github.com/inscription-c/custody/internal/log"
	gormMysqlDriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is a struct that embeds gorm.DB to provide additional database functionality.
type DB struct {
	*gorm.DB
	keyName string
}

// DBOptions is a struct that holds the configuration options for the database.
type DBOptions struct {
	addr        string
	user        string
	password    string
	dbName      string
	keyName     string
	waitTimeout time.Duration

	log               btclog.Logger
	autoMigrateTables []interface{}
}

// DBOption is a function type that modifies DBOptions.
type DBOption func(*DBOptions)

// WithAddr returns a DBOption that sets the address of the database.
func WithAddr(addr string) DBOption {
	return func(o *DBOptions) {
		o.addr = addr
	}
}

// WithUser returns a DBOption that sets the user of the database.
func WithUser(user string) DBOption {
	return func(o *DBOptions) {
		o.user = user
	}
}

// WithPassword returns a DBOption that sets the password of the database.
func WithPassword(password string) DBOption {
	return func(o *DBOptions) {
		o.password = password
	}
}

// WithDBName returns a DBOption that sets the name of the database.
func WithDBName(dbName string) DBOption {
	return func(o *DBOptions) {
		o.dbName = dbName
	}
}

// WithKeyName returns a DBOption that sets the key name the master seed is
// stored under.
func WithKeyName(keyName string) DBOption {
	return func(o *DBOptions) {
		o.keyName = keyName
	}
}

// WithWaitTimeout returns a DBOption that sets how long to wait for a
// refusing server to come up.
func WithWaitTimeout(timeout time.Duration) DBOption {
	return func(o *DBOptions) {
		o.waitTimeout = timeout
	}
}

// WithLogger returns a DBOption that sets the logger of the database.
func WithLogger(log btclog.Logger) DBOption {
	return func(o *DBOptions) {
		o.log = log
	}
}

// WithAutoMigrateTables returns a DBOption that sets the tables to be auto migrated in the database.
func WithAutoMigrateTables(tables ...interface{}) DBOption {
	return func(o *DBOptions) {
		o.autoMigrateTables = tables
	}
}

// Transaction is a method on DB that executes a function within a database transaction.
func (d *DB) Transaction(fn func(tx *DB) error) error {
	return d.DB.Transaction(func(tx *gorm.DB) error {
		d := &DB{DB: tx, keyName: d.keyName}
		return fn(d)
	})
}

// NewDB is a function that creates a new DB instance with the provided options.
func NewDB(opts ...DBOption) (*DB, error) {
	options := &DBOptions{
		log:         log.DB,
		waitTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.dbName == "" {
		return nil, errors.New("db name is empty")
	}

	conn := "%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=Local"
	dsn := fmt.Sprintf(conn, options.user, options.password, options.addr, "")

	db, err := openWithRetry(dsn, options.waitTimeout)
	if err != nil {
		return nil, err
	}

	createDb := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`;", options.dbName)
	if err = db.Exec(createDb).Error; err != nil {
		return nil, fmt.Errorf("gorm create database :%v", err)
	}

	dsn = fmt.Sprintf(conn, options.user, options.password, options.addr, options.dbName)
	db, err = gorm.Open(gormMysqlDriver.Open(dsn), &gorm.Config{Logger: &GormLogger{Logger: options.log}})
	if err != nil {
		return nil, fmt.Errorf("gorm open :%v", err)
	}
	if err := db.AutoMigrate(options.autoMigrateTables...); err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm db :%v", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)

	return &DB{
		DB:      db,
		keyName: options.keyName,
	}, nil
}

// openWithRetry keeps dialing while the server refuses connections.
func openWithRetry(dsn string, timeout time.Duration) (*gorm.DB, error) {
	deadline := time.After(timeout)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		db, err := gorm.Open(gormMysqlDriver.Open(dsn), &gorm.Config{Logger: logger.Discard})
		if err == nil {
			return db, nil
		}
		if !connRefused(err) {
			return nil, err
		}
		select {
		case <-deadline:
			return nil, fmt.Errorf("gorm open timeout: %v", err)
		case <-ticker.C:
		}
	}
}

func connRefused(err error) bool {
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	var syscallErr *os.SyscallError
	return errors.As(opErr.Err, &syscallErr) && errors.Is(syscallErr.Err, syscall.ECONNREFUSED)
}

// Close releases the connection pool.
func (d *DB) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GormLogger is a struct that embeds btclog.Logger to provide additional logging functionality.
type GormLogger struct {
	btclog.Logger
}

// LogMode is a method on GormLogger that sets the log level.
func (g *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	switch level {
	case logger.Silent:
		g.Logger.SetLevel(btclog.LevelOff)
	case logger.Error:
		g.Logger.SetLevel(btclog.LevelError)
	case logger.Warn:
		g.Logger.SetLevel(btclog.LevelWarn)
	case logger.Info:
		g.Logger.SetLevel(btclog.LevelInfo)
	}
	return g
}

func (g *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	g.Logger.Info(append([]interface{}{msg}, data...)...)
}

func (g *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	g.Logger.Warn(append([]interface{}{msg}, data...)...)
}

func (g *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	g.Logger.Error(append([]interface{}{msg}, data...)...)
}

// Trace logs each statement at trace level, failed ones at error level.
func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	sql, rows := fc()
	sqlInfo := struct {
		Elapsed int64
		Rows    int64
		Err     string `json:",omitempty"`
		Sql     string
	}{
		Elapsed: time.Since(begin).Milliseconds(),
		Rows:    rows,
		Sql:     sql,
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		sqlInfo.Err = err.Error()
		sqlInfoByte, _ := json.Marshal(sqlInfo)
		g.Logger.Error(string(sqlInfoByte))
		return
	}
	sqlInfoByte, _ := json.Marshal(sqlInfo)
	g.Logger.Trace(string(sqlInfoByte))
}
