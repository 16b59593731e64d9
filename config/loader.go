package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/theoremus-urban-solutions/transit-fol-planner/fare"
	"github.com/theoremus-urban-solutions/transit-fol-planner/fol"
	"github.com/theoremus-urban-solutions/transit-fol-planner/gtfs"
	"github.com/theoremus-urban-solutions/transit-fol-planner/prover"
)

// DefaultPaths are tried in order when Load is given no path.
var DefaultPaths = []string{"config.yml", "./config/config.yml"}

// Default returns the built-in configuration.
func Default() *AppConfig {
	gopts := gtfs.DefaultOptions()
	popts := prover.DefaultOptions()
	return &AppConfig{
		Server: ServerConfig{Port: 16181, Environment: "development"},
		Feed: FeedConfig{
			GTFSPath:       "gtfs.zip",
			DefaultMinutes: gopts.DefaultMinutes,
			SpeedKMH:       gopts.SpeedKMH,
			TimeoutMS:      30000,
		},
		Fare: FareConfig{
			ValidityMinutes: fare.DefaultValidityMinutes,
			Price:           fare.DefaultPrice,
			Currency:        fare.DefaultCurrency,
		},
		Prover: ProverConfig{
			Mace4Path:         "mace4",
			Prover9Path:       "prover9",
			Mace4TimeoutMS:    60000,
			Prover9TimeoutMS:  60000,
			MaxConcurrent:     popts.MaxConcurrent,
			BreakerFailures:   popts.BreakerFailures,
			BreakerCooldownMS: int(popts.BreakerCooldown / time.Millisecond),
			Budget:            fol.DefaultBudget(),
		},
		Artifacts: ArtifactsConfig{Dir: "artifacts", Catalog: "artifacts/catalog.db"},
	}
}

// Load reads YAML over the defaults, applies .env and PLANNER_* overrides
// and validates the result. With an empty path the DefaultPaths are tried
// and a missing file is not an error.
func Load(path string) (*AppConfig, error) {
	cfg := Default()

	data, err := readConfig(path)
	if err != nil {
		return nil, err
	}
	if data != nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse: %w", err)
		}
	}

	// .env is optional; real environment variables win
	_ = godotenv.Load()
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readConfig(path string) ([]byte, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		return data, nil
	}
	for _, p := range DefaultPaths {
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	return nil, nil
}

func applyEnv(cfg *AppConfig) error {
	if v := os.Getenv("PLANNER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: PLANNER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("PLANNER_ENV"); v != "" {
		cfg.Server.Environment = v
	}
	if v := os.Getenv("PLANNER_MACE4_PATH"); v != "" {
		cfg.Prover.Mace4Path = v
	}
	if v := os.Getenv("PLANNER_PROVER9_PATH"); v != "" {
		cfg.Prover.Prover9Path = v
	}
	if v := os.Getenv("PLANNER_GTFS_PATH"); v != "" {
		cfg.Feed.GTFSPath = v
	}
	if v := os.Getenv("PLANNER_ARTIFACT_DIR"); v != "" {
		cfg.Artifacts.Dir = v
		cfg.Artifacts.Catalog = filepath.Join(v, "catalog.db")
	}
	return nil
}

// Validate checks struct tags and the cross-field rules.
func (c *AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := c.FarePolicy(); err != nil {
		return err
	}
	budgetMS := c.Prover.Budget.MaxSeconds * 1000
	if c.Prover.Prover9TimeoutMS <= budgetMS {
		return fmt.Errorf("config: prover9TimeoutMS (%d) must exceed maxSeconds (%ds)", c.Prover.Prover9TimeoutMS, c.Prover.Budget.MaxSeconds)
	}
	if c.Prover.Mace4TimeoutMS <= budgetMS {
		return fmt.Errorf("config: mace4TimeoutMS (%d) must exceed maxSeconds (%ds)", c.Prover.Mace4TimeoutMS, c.Prover.Budget.MaxSeconds)
	}
	return nil
}

// FarePolicy returns the validated tariff.
func (c *AppConfig) FarePolicy() (fare.Policy, error) {
	return fare.NewPolicy(c.Fare.ValidityMinutes, c.Fare.Price, c.Fare.Currency)
}

// GTFSOptions returns the connection duration options.
func (c *AppConfig) GTFSOptions() gtfs.Options {
	return gtfs.Options{DefaultMinutes: c.Feed.DefaultMinutes, SpeedKMH: c.Feed.SpeedKMH}
}

// Engines returns the model finder and the prover.
func (c *AppConfig) Engines() (prover.Engine, prover.Engine) {
	return prover.NewMace4(c.Prover.Mace4Path, time.Duration(c.Prover.Mace4TimeoutMS)*time.Millisecond),
		prover.NewProver9(c.Prover.Prover9Path, time.Duration(c.Prover.Prover9TimeoutMS)*time.Millisecond)
}

// OrchestratorOptions returns the engine concurrency and breaker settings.
func (c *AppConfig) OrchestratorOptions() prover.Options {
	return prover.Options{
		MaxConcurrent:   c.Prover.MaxConcurrent,
		BreakerFailures: c.Prover.BreakerFailures,
		BreakerCooldown: time.Duration(c.Prover.BreakerCooldownMS) * time.Millisecond,
	}
}
