// Package config loads the cronjob CLI configuration with viper.
package config

import (
	"fmt"
	"time"

	"github.com/TimeWtr/cronjob"
	"github.com/spf13/viper"
)

type Config struct {
	// Tick 后台协程检查间隔
	Tick time.Duration `mapstructure:"tick"`
	// Limiter 同时执行的回调数量
	Limiter int64 `mapstructure:"limiter"`
	// Location 时区名称，为空时使用本地时区
	Location string `mapstructure:"location"`
	// DB 触发历史的 sqlite 文件路径，为空时不记录
	DB string `mapstructure:"db"`
	// Jobs 任务列表
	Jobs []Job `mapstructure:"jobs"`
}

type Job struct {
	Name       string `mapstructure:"name"`
	Expression string `mapstructure:"expression"`
	// Count 触发多少次后停止，0表示不限制
	Count int `mapstructure:"count"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("tick", cronjob.DefaultTickInterval)
	v.SetDefault("limiter", 1)
	v.SetDefault("location", "")
	v.SetDefault("db", "")
}

// Load 读取配置文件，文件格式由扩展名决定
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return LoadWithViper(v)
}

func LoadWithViper(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate 检查任务名称唯一、表达式合法
func (c *Config) Validate() error {
	if c.Tick <= 0 {
		return fmt.Errorf("tick must be positive, got %s", c.Tick)
	}
	if c.Limiter <= 0 {
		return fmt.Errorf("limiter must be positive, got %d", c.Limiter)
	}
	if _, err := c.TimeZone(); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(c.Jobs))
	for i, job := range c.Jobs {
		if job.Name == "" {
			return fmt.Errorf("jobs[%d]: missing name", i)
		}
		if _, ok := seen[job.Name]; ok {
			return fmt.Errorf("jobs[%d]: duplicate name %q", i, job.Name)
		}
		seen[job.Name] = struct{}{}
		if _, err := cronjob.Parse(job.Expression); err != nil {
			return fmt.Errorf("jobs[%d] %q: %w", i, job.Name, err)
		}
		if job.Count < 0 {
			return fmt.Errorf("jobs[%d] %q: count must not be negative", i, job.Name)
		}
	}
	return nil
}

func (c *Config) TimeZone() (*time.Location, error) {
	if c.Location == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Location)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", c.Location, err)
	}
	return loc, nil
}
