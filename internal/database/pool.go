package database

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"quiethours/internal/models"
	"quiethours/internal/utils"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// ConnState tracks the pool's connection lifecycle
type ConnState string

const (
	StateDisconnected ConnState = "disconnected"
	StateConnecting   ConnState = "connecting"
	StateConnected    ConnState = "connected"
)

// Pool owns the shared database handle. It connects lazily on first use and
// drops back to disconnected when a health check fails, so the next caller
// reconnects. Constructed once at bootstrap and passed to every component.
type Pool struct {
	mu         sync.Mutex
	state      ConnState
	db         *gorm.DB
	dialector  func() gorm.Dialector
	maxRetries int
	retryDelay time.Duration
}

// NewPool builds a pool that connects to Postgres using the environment
// configuration. The connection itself is deferred until DB is first called.
func NewPool() *Pool {
	dsn := buildDSN()
	return &Pool{
		state:      StateDisconnected,
		dialector:  func() gorm.Dialector { return postgres.Open(dsn) },
		maxRetries: 5,
		retryDelay: time.Second * 5,
	}
}

// NewPoolWithDialector builds a pool around an arbitrary gorm dialector.
// Used by tests to run against in-memory sqlite.
func NewPoolWithDialector(d gorm.Dialector) *Pool {
	return &Pool{
		state:      StateDisconnected,
		dialector:  func() gorm.Dialector { return d },
		maxRetries: 1,
		retryDelay: 0,
	}
}

func buildDSN() string {
	// In production, use the platform-provided DATABASE_URL
	if os.Getenv("GIN_MODE") == "release" {
		return getEnvRequired("DATABASE_URL")
	}

	// In development, use individual connection parameters
	host := getEnvRequired("DB_HOST")
	user := getEnvRequired("DB_USER")
	password := getEnvRequired("DB_PASSWORD")
	dbname := getEnvRequired("DB_NAME")
	port := getEnvRequired("DB_PORT")
	sslMode := os.Getenv("DB_SSL_MODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC connect_timeout=10",
		host, user, password, dbname, port, sslMode)
}

// DB returns the shared gorm handle, connecting first if necessary
func (p *Pool) DB() (*gorm.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == StateConnected {
		return p.db, nil
	}
	return p.connectLocked()
}

// connectLocked runs the disconnected -> connecting -> connected transition.
// Caller must hold p.mu.
func (p *Pool) connectLocked() (*gorm.DB, error) {
	p.state = StateConnecting

	baseLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags|log.Lshortfile),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	// Filter the dispatcher's periodic polling query out of the SQL log
	customLogger := utils.NewCustomGormLogger(
		baseLogger,
		"SELECT * FROM \"email_delivery\" WHERE status",
	)

	gormConfig := &gorm.Config{
		Logger: customLogger,
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
		PrepareStmt:            true,
		SkipDefaultTransaction: false,
		TranslateError:         true, // Surface duplicate-key violations as gorm.ErrDuplicatedKey
	}

	var db *gorm.DB
	var err error
	for i := 0; i < p.maxRetries; i++ {
		db, err = gorm.Open(p.dialector(), gormConfig)
		if err == nil {
			break
		}
		log.Printf("Database connection attempt %d failed: %v", i+1, err)
		if i < p.maxRetries-1 {
			log.Printf("Retrying in %v...", p.retryDelay)
			time.Sleep(p.retryDelay)
		}
	}
	if err != nil {
		p.state = StateDisconnected
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", p.maxRetries, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		p.state = StateDisconnected
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.StudyBlock{},
		&models.EmailDelivery{},
	); err != nil {
		p.state = StateDisconnected
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	p.db = db
	p.state = StateConnected
	log.Println("Database connection established and migrations completed")
	return p.db, nil
}

// Ping health-checks the current connection. A failed ping flips the pool
// back to disconnected so the next DB call reconnects.
func (p *Pool) Ping() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateConnected {
		if _, err := p.connectLocked(); err != nil {
			return err
		}
		return nil
	}

	sqlDB, err := p.db.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		log.Printf("Warning: database ping failed, marking pool disconnected: %v", err)
		p.state = StateDisconnected
		p.db = nil
		return err
	}
	return nil
}

// State returns the pool's current connection state
func (p *Pool) State() ConnState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// getEnvRequired returns environment variable value or exits if not set
func getEnvRequired(key string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Fatalf("Required environment variable %s is not set", key)
	return "" // This line will never execute due to the log.Fatalf above
}
