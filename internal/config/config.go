// Package config loads the process-wide configuration: remediation
// policy, severity threshold, quarantine target, Slack channel, and
// the callback signing secret. Loaded once at startup, immutable
// thereafter; components receive the values they need through their
// constructors, never by ambient lookup.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sentinelops/macieguard/internal/model"
)

// SlackConfig is the chat channel the workflow reports to.
type SlackConfig struct {
	Channel       string `yaml:"channel"`
	WebhookURL    string `yaml:"webhook_url"`
	SigningSecret string `yaml:"signing_secret"`
}

// InvokerConfig selects the transport to the execution stage.
// Mode "lambda" invokes the remediator function asynchronously;
// mode "inbox" drops payload files into a watched local directory.
type InvokerConfig struct {
	Mode     string `yaml:"mode"`
	Function string `yaml:"function"`
	InboxDir string `yaml:"inbox_dir"`
}

// LogConfig controls structured log output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "console"
}

// Config holds all configurable parameters.
type Config struct {
	MinSeverity      model.Threshold   `yaml:"min_severity"`
	AutoRemediate    map[string]string `yaml:"auto_remediate"`
	QuarantineBucket string            `yaml:"quarantine_bucket"`
	ConsoleBaseURL   string            `yaml:"console_base_url"`
	Listen           string            `yaml:"listen"`
	AuditLog         string            `yaml:"audit_log"`
	Slack            SlackConfig       `yaml:"slack"`
	Invoker          InvokerConfig     `yaml:"invoker"`
	Log              LogConfig         `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		MinSeverity:    model.ThresholdMedium,
		AutoRemediate:  map[string]string{},
		ConsoleBaseURL: "https://console.aws.amazon.com/macie",
		Listen:         ":8080",
		Invoker: InvokerConfig{
			Mode:     "lambda",
			Function: "macieguard-remediator",
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads configuration from a YAML file, overlays it on defaults,
// then applies environment overrides. A missing file is not an error;
// Lambda deployments configure entirely through the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables. The unprefixed names match
// what the deployed functions have historically been configured with.
func applyEnv(cfg *Config) error {
	if v := firstEnv("MACIEGUARD_MIN_SEVERITY", "minSeverityLevel"); v != "" {
		cfg.MinSeverity = model.Threshold(v)
	}
	if v := firstEnv("MACIEGUARD_AUTO_REMEDIATE", "autoRemediateConfig"); v != "" {
		m := map[string]string{}
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			return fmt.Errorf("parse auto-remediate config: %w", err)
		}
		cfg.AutoRemediate = m
	}
	if v := firstEnv("MACIEGUARD_QUARANTINE_BUCKET", "quarantineBucket"); v != "" {
		cfg.QuarantineBucket = v
	}
	if v := firstEnv("MACIEGUARD_SLACK_CHANNEL", "slackChannel"); v != "" {
		cfg.Slack.Channel = v
	}
	if v := firstEnv("MACIEGUARD_SLACK_WEBHOOK_URL", "slackWebHookUrl"); v != "" {
		cfg.Slack.WebhookURL = v
	}
	if v := firstEnv("MACIEGUARD_SLACK_SIGNING_SECRET", "slackSigningSecret"); v != "" {
		cfg.Slack.SigningSecret = v
	}
	if v := os.Getenv("MACIEGUARD_REMEDIATOR_FUNCTION"); v != "" {
		cfg.Invoker.Function = v
	}
	if v := os.Getenv("MACIEGUARD_INVOKER_MODE"); v != "" {
		cfg.Invoker.Mode = v
	}
	if v := os.Getenv("MACIEGUARD_INBOX_DIR"); v != "" {
		cfg.Invoker.InboxDir = v
	}
	if v := os.Getenv("MACIEGUARD_AUDIT_LOG"); v != "" {
		cfg.AuditLog = v
	}
	if v := os.Getenv("MACIEGUARD_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

// Validate checks structural invariants. Fields only some stages need
// (webhook URL, quarantine bucket) are checked by the stage that uses
// them, so a triage-only deployment does not have to configure the
// executor's surface.
func (c *Config) Validate() error {
	if _, err := model.ParseThreshold(string(c.MinSeverity)); err != nil {
		return err
	}
	for ft, action := range c.AutoRemediate {
		switch model.PolicyAction(action) {
		case model.ActionAuto, model.ActionManual:
		default:
			return fmt.Errorf("auto_remediate[%s]: unknown action %q", ft, action)
		}
	}
	switch c.Invoker.Mode {
	case "lambda", "inbox":
	default:
		return fmt.Errorf("invoker mode must be \"lambda\" or \"inbox\", got %q", c.Invoker.Mode)
	}
	return nil
}

// Policy returns the typed remediation policy map. Absent finding
// types default to manual at lookup time.
func (c *Config) Policy() map[string]model.PolicyAction {
	m := make(map[string]model.PolicyAction, len(c.AutoRemediate))
	for ft, action := range c.AutoRemediate {
		m[ft] = model.PolicyAction(action)
	}
	return m
}

// DefaultYAML returns a commented config template for init-config.
func DefaultYAML() string {
	return `# macieguard configuration
#
# Findings are eligible for any action only when their category is
# CLASSIFICATION and their severity score meets min_severity.

# Minimum severity level: LOW | MEDIUM | HIGH
min_severity: MEDIUM

# Remediation policy per finding type. AUTO quarantines without human
# approval; MANUAL (and any type not listed) requests authorisation in
# Slack first.
auto_remediate:
  SensitiveData:S3Object/Credentials: AUTO
  SensitiveData:S3Object/Personal: MANUAL

# Bucket that receives quarantined objects, keyed by
# "{original_bucket}/{original_key}".
quarantine_bucket: ""

slack:
  channel: "#dlp-alerts"
  webhook_url: ""
  signing_secret: ""

# Transport to the execution stage.
#   lambda: async Event invoke of the remediator function
#   inbox:  drop payload files into inbox_dir (consumed by "daemon")
invoker:
  mode: lambda
  function: macieguard-remediator
  inbox_dir: ""

# Address for the approval callback endpoint ("serve").
listen: ":8080"

# Optional hash-chained audit trail (JSONL). Empty disables.
audit_log: ""

log:
  level: info
  format: json
`
}
