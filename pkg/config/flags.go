package config

// CLIFlagMapping maps CLI flag names to configuration paths.
func CLIFlagMapping() map[string]string {
	return map[string]string{
		"base-url":     "julep.base_url",
		"api-key-env":  "julep.api_key_env",
		"timeout":      "julep.timeout",
		"retry-count":  "julep.retry_count",
		"agent-name":   "agent.name",
		"model":        "agent.model",
		"task-file":    "task.definition_file",
		"max-attempts": "poll.max_attempts",
		"interval":     "poll.interval",
		"city":         "tour.cities",
		"diet":         "tour.dietary_preferences",
		"budget":       "tour.budget_level",
		"output-dir":   "artifact.dir",
		"guide-field":  "artifact.guide_field",
		"log-level":    "runtime.log_level",
		"log-json":     "runtime.log_json",
		"log-source":   "runtime.log_source",
		"format":       "cli.format",
	}
}
