package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// WorkflowConfig carries approval-workflow tunables that operators adjust
// without restarting the service.
type WorkflowConfig struct {
	// BulkMaxRecords caps how many record IDs a single bulk call accepts.
	BulkMaxRecords int `mapstructure:"bulkMaxRecords"`
	// RecentActivityLimit bounds the supervisor dashboard activity feed.
	RecentActivityLimit int `mapstructure:"recentActivityLimit"`
	// TopPerformerCount bounds the per-employee leaderboard query.
	TopPerformerCount int `mapstructure:"topPerformerCount"`
}

func DefaultWorkflowConfig() WorkflowConfig {
	return WorkflowConfig{
		BulkMaxRecords:      500,
		RecentActivityLimit: 10,
		TopPerformerCount:   5,
	}
}

// WorkflowConfigHolder keeps the current workflow config behind an
// atomic.Value so request handlers read it lock-free.
type WorkflowConfigHolder struct {
	current atomic.Value // holds WorkflowConfig
}

func NewWorkflowConfigHolder() (*WorkflowConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("workflow")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/sewtrack/config")
	v.AddConfigPath("/etc/sewtrack")
	v.AddConfigPath(".")

	v.SetEnvPrefix("SEWTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultWorkflowConfig()
	v.SetDefault("workflow.bulkMaxRecords", defaults.BulkMaxRecords)
	v.SetDefault("workflow.recentActivityLimit", defaults.RecentActivityLimit)
	v.SetDefault("workflow.topPerformerCount", defaults.TopPerformerCount)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg WorkflowConfig
	if err := v.UnmarshalKey("workflow", &cfg); err != nil {
		return nil, err
	}
	if err := validateWorkflowConfig(cfg); err != nil {
		return nil, err
	}

	holder := &WorkflowConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated WorkflowConfig
		if err := v.UnmarshalKey("workflow", &updated); err != nil {
			log.Printf("[workflow-config] reload failed: %v", err)
			return
		}
		if err := validateWorkflowConfig(updated); err != nil {
			log.Printf("[workflow-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[workflow-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticWorkflowConfigHolder wraps a fixed config, bypassing the
// file watcher. Used by tests and one-shot tools.
func NewStaticWorkflowConfigHolder(cfg WorkflowConfig) *WorkflowConfigHolder {
	holder := &WorkflowConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *WorkflowConfigHolder) Get() WorkflowConfig {
	return h.current.Load().(WorkflowConfig)
}

func validateWorkflowConfig(cfg WorkflowConfig) error {
	if cfg.BulkMaxRecords <= 0 {
		return errors.New("workflow.bulkMaxRecords must be positive")
	}
	if cfg.RecentActivityLimit <= 0 {
		return errors.New("workflow.recentActivityLimit must be positive")
	}
	if cfg.TopPerformerCount <= 0 {
		return errors.New("workflow.topPerformerCount must be positive")
	}
	return nil
}
