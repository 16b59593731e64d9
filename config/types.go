package config

import (
	"github.com/theoremus-urban-solutions/transit-fol-planner/fol"
)

// ServerConfig contains server configuration
type ServerConfig struct {
	Port           int      `yaml:"port" validate:"gt=0,lte=65535"`
	Environment    string   `yaml:"environment" validate:"omitempty,oneof=development production"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// FeedConfig describes where the static feed and its alerts come from.
type FeedConfig struct {
	GTFSPath         string  `yaml:"gtfsPath" validate:"required_without=StaticURL"`
	StaticURL        string  `yaml:"staticURL" validate:"omitempty,url"`
	ServiceAlertsURL string  `yaml:"serviceAlertsURL" validate:"omitempty,url"`
	SnapshotPath     string  `yaml:"snapshotPath"`
	DefaultMinutes   int     `yaml:"defaultMinutes" validate:"gte=1"`
	SpeedKMH         float64 `yaml:"speedKMH" validate:"gte=0"`
	TimeoutMS        int     `yaml:"timeoutMS" validate:"gte=0"`
	Watch            bool    `yaml:"watch"`
}

// FareConfig is validated by fare.NewPolicy rather than by tags.
type FareConfig struct {
	ValidityMinutes int     `yaml:"validityMinutes"`
	Price           float64 `yaml:"price"`
	Currency        string  `yaml:"currency"`
}

// ProverConfig locates the engines and bounds their work.
type ProverConfig struct {
	Mace4Path         string     `yaml:"mace4Path" validate:"required"`
	Prover9Path       string     `yaml:"prover9Path" validate:"required"`
	Mace4TimeoutMS    int        `yaml:"mace4TimeoutMS" validate:"gt=0"`
	Prover9TimeoutMS  int        `yaml:"prover9TimeoutMS" validate:"gt=0"`
	MaxConcurrent     int64      `yaml:"maxConcurrent" validate:"gte=1"`
	BreakerFailures   uint32     `yaml:"breakerFailures" validate:"gte=1"`
	BreakerCooldownMS int        `yaml:"breakerCooldownMS" validate:"gte=0"`
	Budget            fol.Budget `yaml:",inline"`
}

// ArtifactsConfig controls where engine inputs and transcripts are kept.
type ArtifactsConfig struct {
	Dir     string `yaml:"dir" validate:"required"`
	Catalog string `yaml:"catalog"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Feed      FeedConfig      `yaml:"feed"`
	Fare      FareConfig      `yaml:"fare"`
	Prover    ProverConfig    `yaml:"prover"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
}
