package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/velkovb/taskforge/pkg/service"
)

// Config is the full engine + server configuration. Policies are fixed here
// at startup; the engine never re-reads them.
type Config struct {
	HTTPPort      string
	DBConnStr     string
	CascadePolicy service.CascadePolicy
	DeleteMode    service.DeleteMode
	GateMode      service.GateMode
	RejectPastDue bool
	BulkWorkers   int
}

// Load reads configuration from a taskforge.yaml file (working directory or
// /etc/taskforge) and TASKFORGE_* environment variables. Env vars win over
// the file; defaults cover everything else.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("taskforge")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/taskforge")

	v.SetEnvPrefix("taskforge")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.port", "8080")
	v.SetDefault("db.conn", "")
	v.SetDefault("policy.cascade", string(service.BlockCascadePolicy))
	v.SetDefault("policy.delete_mode", string(service.SoftDeleteMode))
	v.SetDefault("policy.gate_mode", string(service.CompletionGateMode))
	v.SetDefault("policy.reject_past_due", false)
	v.SetDefault("bulk.workers", 0)

	if err := v.ReadInConfig(); err != nil {
		// Missing file is fine; anything else is a real failure.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, errors.Wrap(err, "read config file")
		}
	}

	cfg := Config{
		HTTPPort:      v.GetString("http.port"),
		DBConnStr:     v.GetString("db.conn"),
		CascadePolicy: service.CascadePolicy(v.GetString("policy.cascade")),
		DeleteMode:    service.DeleteMode(v.GetString("policy.delete_mode")),
		GateMode:      service.GateMode(v.GetString("policy.gate_mode")),
		RejectPastDue: v.GetBool("policy.reject_past_due"),
		BulkWorkers:   v.GetInt("bulk.workers"),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.CascadePolicy {
	case service.BlockCascadePolicy, service.ArchiveCascadePolicy, service.DetachCascadePolicy:
	default:
		return errors.Errorf("invalid cascade policy %q", c.CascadePolicy)
	}
	switch c.DeleteMode {
	case service.SoftDeleteMode, service.HardDeleteMode:
	default:
		return errors.Errorf("invalid delete mode %q", c.DeleteMode)
	}
	switch c.GateMode {
	case service.CompletionGateMode, service.StartGateMode:
	default:
		return errors.Errorf("invalid gate mode %q", c.GateMode)
	}
	return nil
}

// Engine converts the loaded configuration into the engine's policy config.
func (c Config) Engine() service.Config {
	return service.Config{
		CascadePolicy: c.CascadePolicy,
		DeleteMode:    c.DeleteMode,
		GateMode:      c.GateMode,
		RejectPastDue: c.RejectPastDue,
		BulkWorkers:   c.BulkWorkers,
	}
}
