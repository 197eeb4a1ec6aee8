package warehouse

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/BarkinBalci/bi-warehouse/internal/config"
)

// Client wraps the warehouse connection and the SQL dialect it speaks
type Client struct {
	db      *sqlx.DB
	dialect Dialect
	log     *zap.Logger
}

// NewClient opens the warehouse selected by the configuration and verifies the connection
func NewClient(ctx context.Context, cfg *config.Warehouse, chCfg *config.ClickHouse, log *zap.Logger) (*Client, error) {
	var (
		db      *sqlx.DB
		dialect Dialect
		err     error
	)

	switch cfg.Driver {
	case config.DriverSQLite:
		db, err = openSQLite(cfg.Path, log)
		dialect = SQLite{}
	case config.DriverClickHouse:
		db = openClickHouse(chCfg, log)
		dialect = ClickHouse{}
	default:
		return nil, fmt.Errorf("unsupported warehouse driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	// Verify connection
	if err := db.PingContext(ctx); err != nil {
		log.Error("Failed to ping warehouse", zap.String("driver", cfg.Driver), zap.Error(err))
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping warehouse: %w", err)
	}

	log.Info("Warehouse connection established successfully", zap.String("driver", cfg.Driver))

	return NewClientFromDB(db, dialect, log), nil
}

// NewClientFromDB wraps an already opened connection
func NewClientFromDB(db *sqlx.DB, dialect Dialect, log *zap.Logger) *Client {
	return &Client{db: db, dialect: dialect, log: log}
}

func openSQLite(path string, log *zap.Logger) (*sqlx.DB, error) {
	log.Info("Opening SQLite warehouse", zap.String("path", path))

	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		log.Error("Failed to open SQLite warehouse", zap.Error(err))
		return nil, fmt.Errorf("failed to open SQLite warehouse: %w", err)
	}

	// one writer, one connection
	db.SetMaxOpenConns(1)

	return db, nil
}

func openClickHouse(cfg *config.ClickHouse, log *zap.Logger) *sqlx.DB {
	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)

	log.Info("Connecting to ClickHouse",
		zap.String("host", cfg.Host),
		zap.String("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.Bool("useTLS", cfg.UseTLS))

	var tlsConfig *tls.Config
	if cfg.UseTLS {
		tlsConfig = &tls.Config{
			InsecureSkipVerify: false,
		}
	}

	conn := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		TLS:             tlsConfig,
		DialTimeout:     5 * time.Second,
		ConnMaxLifetime: time.Duration(cfg.ConnMaxLifetimeSec) * time.Second,
	})
	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)

	return sqlx.NewDb(conn, "clickhouse")
}

// DB returns the underlying connection
func (c *Client) DB() *sqlx.DB {
	return c.db
}

// Dialect returns the SQL dialect of the connection
func (c *Client) Dialect() Dialect {
	return c.dialect
}

// Close closes the warehouse connection
func (c *Client) Close() error {
	c.log.Info("Closing warehouse connection")
	if err := c.db.Close(); err != nil {
		c.log.Error("Error closing warehouse connection", zap.Error(err))
		return err
	}
	c.log.Info("Warehouse connection closed successfully")
	return nil
}
