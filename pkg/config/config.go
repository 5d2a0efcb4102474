package config

import (
	"time"
)

// Config represents the complete configuration for the foodtour CLI.
type Config struct {
	Julep    JulepConfig    `koanf:"julep"    validate:"required"`
	Agent    AgentConfig    `koanf:"agent"    validate:"required"`
	Task     TaskConfig     `koanf:"task"     validate:"required"`
	Poll     PollConfig     `koanf:"poll"     validate:"required"`
	Tour     TourConfig     `koanf:"tour"`
	Artifact ArtifactConfig `koanf:"artifact" validate:"required"`
	Runtime  RuntimeConfig  `koanf:"runtime"  validate:"required"`
	CLI      CLIConfig      `koanf:"cli"`
}

// JulepConfig contains the remote workflow service connection settings.
type JulepConfig struct {
	BaseURL    string        `koanf:"base_url"    validate:"required,url"      env:"JULEP_BASE_URL"`
	APIKeyEnv  string        `koanf:"api_key_env" validate:"required,env_name" env:"FOODTOUR_API_KEY_ENV"`
	Timeout    time.Duration `koanf:"timeout"                                  env:"JULEP_TIMEOUT"`
	RetryCount int           `koanf:"retry_count" validate:"min=0,max=10"      env:"JULEP_RETRY_COUNT"`
}

// AgentConfig describes the agent provisioned for each run.
type AgentConfig struct {
	Name  string `koanf:"name"  validate:"required" env:"FOODTOUR_AGENT_NAME"`
	About string `koanf:"about"                     env:"FOODTOUR_AGENT_ABOUT"`
	Model string `koanf:"model" validate:"required" env:"FOODTOUR_AGENT_MODEL"`
}

// TaskConfig points at the declarative task definition.
type TaskConfig struct {
	DefinitionFile string `koanf:"definition_file" validate:"required" env:"FOODTOUR_TASK_FILE"`
}

// PollConfig is the execution polling policy.
type PollConfig struct {
	MaxAttempts int           `koanf:"max_attempts" validate:"min=1" env:"FOODTOUR_POLL_MAX_ATTEMPTS"`
	Interval    time.Duration `koanf:"interval"                      env:"FOODTOUR_POLL_INTERVAL"`
}

// TourConfig holds the default execution input.
type TourConfig struct {
	Cities             []string `koanf:"cities"              env:"FOODTOUR_CITIES"`
	DietaryPreferences []string `koanf:"dietary_preferences" env:"FOODTOUR_DIETARY_PREFERENCES"`
	BudgetLevel        string   `koanf:"budget_level"        env:"FOODTOUR_BUDGET_LEVEL"`
}

// ArtifactConfig controls where and how results are persisted.
type ArtifactConfig struct {
	Dir        string `koanf:"dir"         validate:"required"             env:"FOODTOUR_OUTPUT_DIR"`
	Prefix     string `koanf:"prefix"      validate:"required,file_prefix" env:"FOODTOUR_ARTIFACT_PREFIX"`
	GuideField string `koanf:"guide_field" validate:"required"             env:"FOODTOUR_GUIDE_FIELD"`
}

// RuntimeConfig contains logging behavior.
type RuntimeConfig struct {
	LogLevel  string `koanf:"log_level"  validate:"oneof=debug info warn error disabled" env:"FOODTOUR_LOG_LEVEL"`
	LogJSON   bool   `koanf:"log_json"                                                   env:"FOODTOUR_LOG_JSON"`
	LogSource bool   `koanf:"log_source"                                                 env:"FOODTOUR_LOG_SOURCE"`
}

// CLIConfig contains CLI-specific configuration.
type CLIConfig struct {
	Format string `koanf:"format" validate:"oneof=auto json tui" env:"FOODTOUR_FORMAT"`
}

// Default returns a Config with the reference values.
func Default() *Config {
	return &Config{
		Julep: JulepConfig{
			BaseURL:    "https://api.julep.ai/api",
			APIKeyEnv:  "JULEP_API_KEY",
			Timeout:    30 * time.Second,
			RetryCount: 2,
		},
		Agent: AgentConfig{
			Name:  "Global Foodie Tour Planner",
			About: "A streamlined agent that creates complete foodie tours quickly using AI knowledge",
			Model: "gpt-4o-mini",
		},
		Task: TaskConfig{
			DefinitionFile: "foodie_tour.yaml",
		},
		Poll: PollConfig{
			MaxAttempts: 20,
			Interval:    10 * time.Second,
		},
		Tour: TourConfig{
			Cities:             []string{"Tokyo", "Istanbul"},
			DietaryPreferences: []string{"vegetarian"},
			BudgetLevel:        "mid-range",
		},
		Artifact: ArtifactConfig{
			Dir:        ".",
			Prefix:     "foodie_tour_results",
			GuideField: "complete_foodie_guide",
		},
		Runtime: RuntimeConfig{
			LogLevel: "info",
		},
		CLI: CLIConfig{
			Format: "auto",
		},
	}
}
