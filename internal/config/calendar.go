package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"worktime-bot/internal/calendar"
)

// HalfDayEntry is one configured half day.
type HalfDayEntry struct {
	Date        string `mapstructure:"date"`
	Value       string `mapstructure:"value"`
	Mode        string `mapstructure:"mode"`
	Description string `mapstructure:"description"`
}

type LeaveTypes struct {
	Vacation []string `mapstructure:"vacation"`
	Sick     []string `mapstructure:"sick"`
	Special  []string `mapstructure:"special"`
}

// CalendarConfig is the optional calendar file: half days and the mapping
// of attendance-system leave types.
type CalendarConfig struct {
	HalfDays   []HalfDayEntry `mapstructure:"half_days"`
	LeaveTypes LeaveTypes     `mapstructure:"leave_types"`
}

// LoadCalendar reads path with viper. A missing file yields the defaults.
// Leave type lists can be overridden with WORKTIME_LEAVE_TYPES_VACATION etc.
func LoadCalendar(path string) (*CalendarConfig, error) {
	v := viper.New()

	defaults := calendar.DefaultKindMapper()
	v.SetDefault("half_days", []map[string]any{})
	v.SetDefault("leave_types.vacation", defaults.Vacation)
	v.SetDefault("leave_types.sick", defaults.Sick)
	v.SetDefault("leave_types.special", defaults.Special)

	v.SetEnvPrefix("WORKTIME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read calendar file %s: %w", path, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("stat calendar file %s: %w", path, err)
		}
	}

	var cfg CalendarConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse calendar file: %w", err)
	}
	// env overrides arrive as one comma separated string
	cfg.LeaveTypes.Vacation = splitList(cfg.LeaveTypes.Vacation)
	cfg.LeaveTypes.Sick = splitList(cfg.LeaveTypes.Sick)
	cfg.LeaveTypes.Special = splitList(cfg.LeaveTypes.Special)
	return &cfg, nil
}

func splitList(in []string) []string {
	var out []string
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// KindMapper builds the leave type mapper from the configured names.
func (c *CalendarConfig) KindMapper() calendar.KindMapper {
	return calendar.KindMapper{
		Vacation: c.LeaveTypes.Vacation,
		Sick:     c.LeaveTypes.Sick,
		Special:  c.LeaveTypes.Special,
	}
}

// ApplyHalfDays adds the configured half days to store. Entries without a
// mode use defaultMode; malformed entries end up in store.Skipped().
func (c *CalendarConfig) ApplyHalfDays(store *calendar.Store, defaultMode calendar.HalfDayMode) int {
	added := 0
	for _, h := range c.HalfDays {
		mode := defaultMode
		if h.Mode != "" {
			m, err := calendar.ParseHalfDayMode(h.Mode)
			if err != nil {
				// let the store record it as skipped
				m = calendar.HalfDayMode(h.Mode)
			}
			mode = m
		}
		if store.AddRawHalfDay(h.Date, h.Value, mode, h.Description) {
			added++
		}
	}
	return added
}
