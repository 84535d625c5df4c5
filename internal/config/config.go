package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Policy holds the business constants of the authorization flow and the
// calculators.
type Policy struct {
	MinimumTransferAmount decimal.Decimal `toml:"minimum_transfer_amount"`
	ChallengeTTL          time.Duration   `toml:"challenge_ttl"`
	MaxVerifyAttempts     int             `toml:"max_verify_attempts"`
	AmortizationTermYears int             `toml:"amortization_term_years"`
}

// DefaultPolicy returns the policy used when no policy file is configured.
func DefaultPolicy() Policy {
	return Policy{
		MinimumTransferAmount: decimal.NewFromInt(10000),
		ChallengeTTL:          5 * time.Minute,
		MaxVerifyAttempts:     3,
		AmortizationTermYears: 20,
	}
}

// LoadPolicy overlays the keys present in a TOML file on top of DefaultPolicy.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()
	if _, err := toml.DecodeFile(path, &policy); err != nil {
		return Policy{}, fmt.Errorf("load policy %s: %w", path, err)
	}
	if err := policy.Validate(); err != nil {
		return Policy{}, fmt.Errorf("load policy %s: %w", path, err)
	}
	return policy, nil
}

func (p Policy) Validate() error {
	if p.MinimumTransferAmount.IsNegative() {
		return errors.New("minimum_transfer_amount must not be negative")
	}
	if p.ChallengeTTL <= 0 {
		return errors.New("challenge_ttl must be positive")
	}
	if p.MaxVerifyAttempts < 1 {
		return errors.New("max_verify_attempts must be at least 1")
	}
	if p.AmortizationTermYears < 1 {
		return errors.New("amortization_term_years must be at least 1")
	}
	return nil
}

type Config struct {
	LogLevel string

	// Client side
	BackendURL      string
	BackendTimeout  time.Duration
	BreakerFailures uint32
	BreakerCooldown time.Duration
	SessionToken    string
	SessionOwnerID  string
	FallbackFile    string
	OperatorWorkers int
	Policy          Policy

	// Sandbox backend
	SandboxPort      string
	JWTSecret        string
	StepUpThreshold  decimal.Decimal
	OTPTTL           time.Duration
	MigrationsPath   string
	PostgresAddress  string
	PostgresPort     string
	PostgresDB       string
	PostgresUsername string
	PostgresPassword string
}

// ProcessEnvironmentVariables loads a .env file when present, then reads the
// environment over the defaults.
func ProcessEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	// In all cases the default behavior should be for the docker compose setup
	env := Config{
		LogLevel:         "info",
		BackendURL:       "http://localhost:9446/v1",
		BackendTimeout:   10 * time.Second,
		BreakerFailures:  5,
		BreakerCooldown:  30 * time.Second,
		OperatorWorkers:  4,
		Policy:           DefaultPolicy(),
		SandboxPort:      "9446",
		JWTSecret:        "sandbox-secret",
		StepUpThreshold:  decimal.NewFromInt(1000000),
		OTPTTL:           5 * time.Minute,
		MigrationsPath:   "file://migrations",
		PostgresAddress:  "localhost",
		PostgresPort:     "5433",
		PostgresDB:       "postgres",
		PostgresUsername: "postgres",
		PostgresPassword: "testpassword",
	}

	setString(&env.LogLevel, "LOG_LEVEL")
	setString(&env.BackendURL, "BACKEND_URL")
	setString(&env.SessionToken, "SESSION_TOKEN")
	setString(&env.SessionOwnerID, "SESSION_OWNER_ID")
	setString(&env.FallbackFile, "FALLBACK_FILE")
	setString(&env.SandboxPort, "SANDBOX_PORT")
	setString(&env.JWTSecret, "JWT_SECRET")
	setString(&env.MigrationsPath, "MIGRATIONS_PATH")
	setString(&env.PostgresAddress, "POSTGRES_ADDRESS")
	setString(&env.PostgresPort, "POSTGRES_PORT")
	setString(&env.PostgresDB, "POSTGRES_DB")
	setString(&env.PostgresUsername, "POSTGRES_USERNAME")
	setString(&env.PostgresPassword, "POSTGRES_PASSWORD")

	var err error
	if env.BackendTimeout, err = durationEnv("BACKEND_TIMEOUT", env.BackendTimeout); err != nil {
		return nil, err
	}
	if env.BreakerCooldown, err = durationEnv("BREAKER_COOLDOWN", env.BreakerCooldown); err != nil {
		return nil, err
	}
	if env.OTPTTL, err = durationEnv("SANDBOX_OTP_TTL", env.OTPTTL); err != nil {
		return nil, err
	}
	if env.OperatorWorkers, err = intEnv("OPERATOR_WORKERS", env.OperatorWorkers); err != nil {
		return nil, err
	}
	if env.OperatorWorkers < 1 {
		return nil, fmt.Errorf("OPERATOR_WORKERS must be at least 1, got %d", env.OperatorWorkers)
	}

	breakerFailures, err := intEnv("BREAKER_FAILURES", int(env.BreakerFailures))
	if err != nil {
		return nil, err
	}
	if breakerFailures < 1 {
		return nil, fmt.Errorf("BREAKER_FAILURES must be at least 1, got %d", breakerFailures)
	}
	env.BreakerFailures = uint32(breakerFailures)

	if v := os.Getenv("SANDBOX_STEP_UP_THRESHOLD"); len(v) != 0 {
		threshold, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("SANDBOX_STEP_UP_THRESHOLD: %w", err)
		}
		env.StepUpThreshold = threshold
	}

	if path := os.Getenv("POLICY_FILE"); len(path) != 0 {
		policy, err := LoadPolicy(path)
		if err != nil {
			return nil, err
		}
		env.Policy = policy
	}

	return &env, nil
}

// PostgresURL builds the connection string for the sandbox database.
func (c *Config) PostgresURL() string {
	return "postgres://" + c.PostgresUsername + ":" +
		c.PostgresPassword + "@" + c.PostgresAddress + ":" +
		c.PostgresPort + "/" + c.PostgresDB + "?sslmode=disable"
}

func setString(field *string, key string) {
	if v := os.Getenv(key); len(v) != 0 {
		*field = v
	}
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if len(v) == 0 {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if len(v) == 0 {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return i, nil
}
