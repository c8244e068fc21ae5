package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TimeWtr/cronjob"
	"github.com/TimeWtr/cronjob/internal/config"
	"github.com/TimeWtr/cronjob/repository"
	"github.com/TimeWtr/cronjob/repository/dao"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "cronjob",
	Short: "Second/minute/hour cron scheduler",
	Long: `cronjob schedules callbacks on "<second> <minute> <hour>" expressions.

Examples:
  cronjob next --expr "0 0 0" -n 3          # next three midnights
  cronjob run --expr "02,59 39 17" --count 2
  cronjob run --config jobs.yaml`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.AddCommand(newNextCmd(), newRunCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	return cfg.Build()
}

func newNextCmd() *cobra.Command {
	var (
		expr  string
		count int
	)
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Print the next fire times of an expression",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := cronjob.Parse(expr)
			if err != nil {
				return err
			}
			t := time.Now()
			for i := 0; i < count; i++ {
				t = e.Next(t)
				fmt.Fprintln(cmd.OutOrStdout(), t.Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&expr, "expr", "0 * *", "schedule expression")
	cmd.Flags().IntVarP(&count, "count", "n", 5, "number of fire times")
	return cmd
}

func newRunCmd() *cobra.Command {
	var (
		cfgPath string
		v       = viper.New()
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run jobs and print every fire",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath, v)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cmd, cfg)
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "config file (yaml, toml or json)")
	cmd.Flags().String("expr", "0 * *", "schedule expression of the single job")
	cmd.Flags().Int("count", 0, "stop the single job after this many fires, 0 runs forever")
	cmd.Flags().Duration("tick", cronjob.DefaultTickInterval, "worker tick interval")
	cmd.Flags().String("db", "", "sqlite file recording fire history")
	_ = v.BindPFlag("tick", cmd.Flags().Lookup("tick"))
	_ = v.BindPFlag("db", cmd.Flags().Lookup("db"))
	_ = v.BindPFlag("expr", cmd.Flags().Lookup("expr"))
	_ = v.BindPFlag("count", cmd.Flags().Lookup("count"))
	return cmd
}

// loadConfig 没有配置文件时使用命令行参数构造单个任务
func loadConfig(path string, v *viper.Viper) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}

	config.SetDefaults(v)
	v.Set("jobs", []map[string]any{{
		"name":       "default",
		"expression": v.GetString("expr"),
		"count":      v.GetInt("count"),
	}})
	return config.LoadWithViper(v)
}

func run(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	zl, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = zl.Sync() }()
	logger := cronjob.NewZapLogger(zl)

	loc, err := cfg.TimeZone()
	if err != nil {
		return err
	}
	opts := []cronjob.Options{
		cronjob.WithLimiter(cfg.Limiter),
		cronjob.WithSchedulerTick(cfg.Tick),
		cronjob.WithTimeZone(loc),
	}
	if cfg.DB != "" {
		recorder, err := openHistory(cfg.DB)
		if err != nil {
			return err
		}
		opts = append(opts, cronjob.WithHistory(recorder))
	}

	s := cronjob.NewScheduler(logger, opts...)
	out := cmd.OutOrStdout()
	for _, job := range cfg.Jobs {
		fired := 0
		limit := job.Count
		err = s.Register(job.Name, job.Expression, func(j *cronjob.CronJob, fire time.Time) bool {
			fired++
			fmt.Fprintf(out, "%s\t%s\n", j.Name(), fire.Format(time.RFC3339))
			return limit == 0 || fired < limit
		})
		if err != nil {
			return err
		}
	}

	for _, u := range s.Upcoming(time.Now(), len(cfg.Jobs)) {
		logger.Info("upcoming", cronjob.JobField(u.JobName), cronjob.TimeField("at", u.At))
	}

	err = s.Run(ctx)
	if ctx.Err() != nil {
		// 收到退出信号属于正常停止
		return nil
	}
	return err
}

func openHistory(path string) (*repository.FireRepository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open history db %s: %w", path, err)
	}
	if err = dao.InitTables(db); err != nil {
		return nil, fmt.Errorf("failed to migrate history db: %w", err)
	}
	return repository.NewFireRepository(dao.NewGormFireDAO(db),
		repository.WithRetry(100*time.Millisecond, 3)), nil
}
