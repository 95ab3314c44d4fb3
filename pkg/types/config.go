// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DefaultRegistryEndpoint is the ClinicalTrials.gov v2 studies endpoint.
const DefaultRegistryEndpoint = "https://clinicaltrials.gov/api/v2/studies"

// DefaultModules lists the registry modules requested on every query.
var DefaultModules = []string{
	"IdentificationModule",
	"StatusModule",
	"SponsorCollaboratorsModule",
	"OversightModule",
	"DescriptionModule",
	"ConditionsModule",
	"DesignModule",
	"ArmsInterventionsModule",
	"OutcomesModule",
	"EligibilityModule",
	"ContactsLocationsModule",
	"ReferencesModule",
	"IPDSharingStatementModule",
	"ParticipantFlowModule",
	"BaselineCharacteristicsModule",
	"OutcomeMeasuresModule",
	"AdverseEventsModule",
}

// HTTPConfig holds shared HTTP settings used for registry requests.
type HTTPConfig struct {
	// Timeout bounds each individual HTTP request.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// RegistryConfig holds settings for querying the trial registry.
type RegistryConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Endpoint is the registry studies endpoint.
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`

	// Modules is the registry field list; validated at startup.
	Modules []string `json:"modules" yaml:"modules" mapstructure:"modules"`

	// PageSize is the number of studies requested per query (default 100).
	PageSize int `json:"page_size" yaml:"page_size" mapstructure:"page_size"`

	// MaxAttempts is the total number of tries per request (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" mapstructure:"max_attempts"`

	// BaseDelay scales the linear backoff: attempt n waits BaseDelay*(n-1).
	BaseDelay time.Duration `json:"base_delay" yaml:"base_delay" mapstructure:"base_delay"`
}

// AnalyzerConfig holds settings for the analysis pipeline.
type AnalyzerConfig struct {
	// FilterPrimary drops primary-query records that fail the relevance
	// check from the final study list. When false, the registry's own
	// match is trusted and relevance only gates drug-code mining.
	FilterPrimary bool `json:"filter_primary" yaml:"filter_primary" mapstructure:"filter_primary"`

	// DrugQueryInterval is the minimum spacing between drug-code queries.
	// Zero disables pacing.
	DrugQueryInterval time.Duration `json:"drug_query_interval" yaml:"drug_query_interval" mapstructure:"drug_query_interval"`
}

// StoreConfig holds settings for the analysis store.
type StoreConfig struct {
	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// File, when set, receives log output in addition to stderr.
	File string `json:"file" yaml:"file" mapstructure:"file"`
}

// Config groups all configuration for the trial-analyzer binary.
type Config struct {
	Registry RegistryConfig `json:"registry" yaml:"registry" mapstructure:"registry"`
	Analyzer AnalyzerConfig `json:"analyzer" yaml:"analyzer" mapstructure:"analyzer"`
	Store    StoreConfig    `json:"store" yaml:"store" mapstructure:"store"`
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	modules := make([]string, len(DefaultModules))
	copy(modules, DefaultModules)
	return Config{
		Registry: RegistryConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "trial-analyzer/0.1",
			},
			Endpoint:    DefaultRegistryEndpoint,
			Modules:     modules,
			PageSize:    100,
			MaxAttempts: 3,
			BaseDelay:   time.Second,
		},
		Store: StoreConfig{Path: "data/trials.db"},
		Log:   LogConfig{Level: "info"},
	}
}
