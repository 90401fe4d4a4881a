package config

import "time"

type Config struct {
	AppName    string `env:"APP_NAME" env-default:"clover"`
	LogLevel   string `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs bool   `env:"PRETTY_LOGS" env-default:"false"`

	// PostgreSQL (customer data)
	DatabaseDriver                string        `env:"DB_DRIVER" env-default:"postgres"`
	DatabaseHost                  string        `env:"DB_HOST" env-default:""`
	DatabasePort                  string        `env:"DB_PORT" env-default:"5432"`
	DatabaseUserName              string        `env:"DB_USER_NAME" env-default:""`
	DatabasePassword              string        `env:"DB_PASSWORD" env-default:""`
	DatabaseName                  string        `env:"DB_NAME" env-default:"clover"`
	DatabaseSSLMode               string        `env:"DB_SQL_MODE" env-default:"disable"`
	DatabaseMaxOpenConns          int           `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	DatabaseMaxIdleConns          int           `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	DatabaseConnMaxLifetime       time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"10s"`
	DatabaseMigrationFolderPath   string        `env:"DB_MIGRATION_FOLDER_PATH" env-default:"db/pg"`
	DatabaseMigrationVersion      int           `env:"DB_MIGRATION_VERSION" env-default:"0"`
	DatabaseMigrationForce        int           `env:"DB_MIGRATION_FORCE" env-default:"0"`
	DatabaseMigrationAutoRollback bool          `env:"DB_MIGRATION_AUTO_ROLLBACK" env-default:"true"`

	// Redis (resolution leases)
	RedisHost       string `env:"REDIS_HOST" env-default:"localhost"`
	RedisPort       int    `env:"REDIS_PORT" env-default:"6379"`
	RedisPassword   string `env:"REDIS_PASSWORD" env-default:""`
	RedisDB         int    `env:"REDIS_DB" env-default:"0"`
	RedisLockPrefix string `env:"REDIS_LOCK_PREFIX" env-default:"clover:lock:"`

	// Kafka Consumer (incoming customer intake)
	KafkaBrokers         []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	KafkaInputTopic      string   `env:"KAFKA_INPUT_TOPIC" env-default:"incoming-customers"`
	KafkaConsumerGroup   string   `env:"KAFKA_CONSUMER_GROUP" env-default:"clover-consumer"`
	KafkaConsumerEnabled bool     `env:"KAFKA_CONSUMER_ENABLED" env-default:"true"`

	// Kafka Producer settings
	KafkaOutputTopic  string `env:"KAFKA_OUTPUT_TOPIC" env-default:"match-events"`
	KafkaBatchSize    int    `env:"KAFKA_BATCH_SIZE" env-default:"100"`
	KafkaBatchTimeout int    `env:"KAFKA_BATCH_TIMEOUT_MS" env-default:"100"`
	KafkaRequiredAcks int    `env:"KAFKA_REQUIRED_ACKS" env-default:"1"`
	KafkaCompression  string `env:"KAFKA_COMPRESSION" env-default:"snappy"`

	// Exact matching
	ExactMatchMinScore     float64 `env:"EXACT_MATCH_MIN_SCORE" env-default:"0.4"`
	ExactCompanyNameWeight float64 `env:"EXACT_COMPANY_NAME_WEIGHT" env-default:"0.4"`
	ExactEmailWeight       float64 `env:"EXACT_EMAIL_WEIGHT" env-default:"0.4"`
	ExactPhoneWeight       float64 `env:"EXACT_PHONE_WEIGHT" env-default:"0.2"`

	// Vector matching
	VectorSimilarityThreshold float64 `env:"VECTOR_SIMILARITY_THRESHOLD" env-default:"0.7"`
	VectorMaxResults          int     `env:"VECTOR_MAX_RESULTS" env-default:"5"`

	// Fuzzy matching
	FuzzySimilarityThreshold float64 `env:"FUZZY_SIMILARITY_THRESHOLD" env-default:"0.8"`
	FuzzyMaxResults          int     `env:"FUZZY_MAX_RESULTS" env-default:"10"`
	FuzzyAlgorithm           string  `env:"FUZZY_ALGORITHM" env-default:"ratio"`

	// Classification thresholds
	ExactMatchThreshold     float64 `env:"EXACT_MATCH_THRESHOLD" env-default:"0.95"`
	HighConfidenceThreshold float64 `env:"HIGH_CONFIDENCE_THRESHOLD" env-default:"0.9"`
	PotentialMatchThreshold float64 `env:"POTENTIAL_MATCH_THRESHOLD" env-default:"0.75"`

	// Strategy toggles
	EnableExactMatching  bool `env:"ENABLE_EXACT_MATCHING" env-default:"true"`
	EnableVectorMatching bool `env:"ENABLE_VECTOR_MATCHING" env-default:"true"`
	EnableFuzzyMatching  bool `env:"ENABLE_FUZZY_MATCHING" env-default:"true"`

	// Business rules
	EnableBusinessRules    bool    `env:"ENABLE_BUSINESS_RULES" env-default:"true"`
	IndustryMatchBoost     float64 `env:"INDUSTRY_MATCH_BOOST" env-default:"1.2"`
	LocationMatchBoost     float64 `env:"LOCATION_MATCH_BOOST" env-default:"1.1"`
	CountryMismatchPenalty float64 `env:"COUNTRY_MISMATCH_PENALTY" env-default:"0.8"`
	RevenueSizeBoost       bool    `env:"REVENUE_SIZE_BOOST" env-default:"true"`

	// Resolution
	ResolveTimeout     time.Duration `env:"RESOLVE_TIMEOUT" env-default:"30s"`
	ResolveLockTTL     time.Duration `env:"RESOLVE_LOCK_TTL" env-default:"1m"`
	ResolveMaxAttempts int           `env:"RESOLVE_MAX_ATTEMPTS" env-default:"3"`

	// Backlog sweep
	BacklogSweepEnabled  bool          `env:"BACKLOG_SWEEP_ENABLED" env-default:"true"`
	BacklogSweepInterval time.Duration `env:"BACKLOG_SWEEP_INTERVAL" env-default:"1m"`
	BacklogBatchSize     int           `env:"BACKLOG_BATCH_SIZE" env-default:"50"`
}
