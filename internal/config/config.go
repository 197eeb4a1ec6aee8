package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	DriverSQLite     = "sqlite"
	DriverClickHouse = "clickhouse"

	RemoteKindHTTP  = "http"
	RemoteKindSQS   = "sqs"
	RemoteKindNone  = "none"
	EnvironmentProd = "production"
)

type Config struct {
	Service    Service
	Warehouse  Warehouse
	ClickHouse ClickHouse
	Sources    Sources
	Remote     Remote
	SQS        SQS
	Fallback   Fallback
	Tenancy    Tenancy
}

type Service struct {
	Environment string `split_words:"true" default:"development"`
	LogLevel    string `split_words:"true" default:"info"`
	APIPort     string `split_words:"true" default:"8080"`
}

// Warehouse selects the relational store. The SQLite file is reused across runs.
type Warehouse struct {
	Driver        string `split_words:"true" default:"sqlite"`
	Path          string `split_words:"true" default:"data_warehouse.db"`
	LoadBatchSize int    `split_words:"true" default:"1000"`
}

type ClickHouse struct {
	Host               string `split_words:"true" default:"localhost"`
	Port               string `split_words:"true" default:"9000"`
	Database           string `split_words:"true" default:"default"`
	User               string `split_words:"true" default:"default"`
	Password           string `split_words:"true" default:""`
	UseTLS             bool   `split_words:"true" default:"false"`
	MaxOpenConns       int    `split_words:"true" default:"5"`
	MaxIdleConns       int    `split_words:"true" default:"2"`
	ConnMaxLifetimeSec int    `split_words:"true" default:"3600"`
}

type Sources struct {
	CampaignsFile string `split_words:"true" default:"marketing_campaigns.csv"`
	TargetsFile   string `split_words:"true" default:"sales_targets.xlsx"`
	TargetsSheet  string `split_words:"true" default:""`
}

// Remote configures where customer records are fetched from. Any failure
// falls back to locally generated customers.
type Remote struct {
	Kind     string        `split_words:"true" default:"http"`
	Endpoint string        `split_words:"true" default:""`
	Timeout  time.Duration `split_words:"true" default:"10s"`
}

type SQS struct {
	Endpoint        string `split_words:"true"`
	QueueURL        string `split_words:"true"`
	Region          string `split_words:"true" default:"eu-central-1"`
	MaxMessages     int32  `split_words:"true" default:"10"`
	WaitTimeSeconds int32  `split_words:"true" default:"1"`
	MaxCustomers    int    `split_words:"true" default:"10000"`
}

type Fallback struct {
	Seed               uint64 `split_words:"true" default:"42"`
	CustomersPerTenant int    `split_words:"true" default:"50"`
}

// Tenancy holds the tenant, region and product enumerations shared by the
// fallback generator and the pipeline.
type Tenancy struct {
	Tenants  []string `split_words:"true" default:"tenant_a,tenant_b,tenant_c"`
	Regions  []string `split_words:"true" default:"North,South,East,West"`
	Products []string `split_words:"true" default:"Product A,Product B,Product C,Product D,Product E"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the enumerated settings that envconfig cannot express.
func (c *Config) Validate() error {
	switch c.Warehouse.Driver {
	case DriverSQLite, DriverClickHouse:
	default:
		return fmt.Errorf("unsupported warehouse driver: %s (supported: %s, %s)", c.Warehouse.Driver, DriverSQLite, DriverClickHouse)
	}

	switch c.Remote.Kind {
	case RemoteKindHTTP, RemoteKindSQS, RemoteKindNone:
	default:
		return fmt.Errorf("unsupported remote kind: %s (supported: %s, %s, %s)", c.Remote.Kind, RemoteKindHTTP, RemoteKindSQS, RemoteKindNone)
	}

	if c.Warehouse.LoadBatchSize <= 0 {
		return fmt.Errorf("warehouse load batch size must be positive, got %d", c.Warehouse.LoadBatchSize)
	}

	if len(c.Tenancy.Tenants) == 0 || len(c.Tenancy.Regions) == 0 || len(c.Tenancy.Products) == 0 {
		return fmt.Errorf("tenants, regions and products must not be empty")
	}

	return nil
}
