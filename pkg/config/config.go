// Package config defines default configuration for conversion jobs and
// loads overrides through viper.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the fully resolved job configuration.
type Config struct {
	Correction CorrectionConfig   `mapstructure:"correction"`
	UnitHours  map[string]float64 `mapstructure:"unit_hours"`
	Reference  ReferenceConfig    `mapstructure:"reference"`
	Bridge     BridgeConfig       `mapstructure:"bridge"`
	Export     ExportConfig       `mapstructure:"export"`
	Review     ReviewConfig       `mapstructure:"review"`
	Storage    StorageConfig      `mapstructure:"storage"`
	Telemetry  TelemetryConfig    `mapstructure:"telemetry"`

	// Workers bounds the correction fan-out. Zero means GOMAXPROCS.
	Workers int `mapstructure:"workers"`
}

// CorrectionConfig holds the decision thresholds of the duration
// correction engine. The values are empirical.
type CorrectionConfig struct {
	DayUnitMin        float64 `mapstructure:"day_unit_min"`
	DayUnitMax        float64 `mapstructure:"day_unit_max"`
	AgreementMin      float64 `mapstructure:"agreement_min"`
	AgreementMax      float64 `mapstructure:"agreement_max"`
	ElapsedHoursMax   float64 `mapstructure:"elapsed_hours_max"`
	ElapsedHoursScale float64 `mapstructure:"elapsed_hours_scale"`
}

type ReferenceConfig struct {
	// Path is a local file or s3:// URL. Empty disables the reference table.
	Path         string   `mapstructure:"path"`
	Sheet        string   `mapstructure:"sheet"`
	IDColumns    []string `mapstructure:"id_columns"`
	HoursColumns []string `mapstructure:"hours_columns"`
	NameColumns  []string `mapstructure:"name_columns"`
}

type BridgeConfig struct {
	// Java is the JVM launcher, resolved through PATH when not absolute.
	Java string `mapstructure:"java"`
	// LibDir holds the MPXJ jars plus the task dumper jar.
	LibDir string `mapstructure:"lib_dir"`
	// MainClass reads a schedule file and writes the JSON task dump.
	MainClass string   `mapstructure:"main_class"`
	JVMArgs   []string `mapstructure:"jvm_args"`
	// TimeoutSeconds bounds a single read.
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

type ExportConfig struct {
	Format         string `mapstructure:"format"`
	MaxColumnWidth int    `mapstructure:"max_column_width"`
	// Examples is the number of corrections listed in verbose mode.
	Examples int `mapstructure:"examples"`
}

type ReviewConfig struct {
	RulesFile string `mapstructure:"rules_file"`
}

// StorageConfig tunes the S3 client used for s3:// inputs and outputs.
// Credentials always come from the default AWS chain.
type StorageConfig struct {
	Region  string `mapstructure:"region"`
	Profile string `mapstructure:"profile"`
	// Endpoint overrides the S3 endpoint, e.g. for LocalStack or MinIO.
	Endpoint     string `mapstructure:"endpoint"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
}

type TelemetryConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Disabled bool   `mapstructure:"disabled"`
}

// Default returns a configuration with the thresholds the correction
// engine was calibrated with.
func Default() Config {
	return Config{
		Correction: CorrectionConfig{
			DayUnitMin:        20,
			DayUnitMax:        28,
			AgreementMin:      0.8,
			AgreementMax:      1.2,
			ElapsedHoursMax:   100,
			ElapsedHoursScale: 24,
		},
		UnitHours: map[string]float64{
			"eh": 1,
			"d":  24,
			"ed": 24,
		},
		Reference: ReferenceConfig{
			IDColumns:    []string{"ID"},
			HoursColumns: []string{"Duración(horas)", "Duration (hours)", "Hours"},
			NameColumns:  []string{"Nombre", "Name"},
		},
		Bridge: BridgeConfig{
			Java:           "java",
			LibDir:         "lib",
			MainClass:      "org.mppkit.dump.TaskDump",
			TimeoutSeconds: 300,
		},
		Export: ExportConfig{
			Format:         "xlsx",
			MaxColumnWidth: 50,
			Examples:       10,
		},
	}
}

// EnvPrefix prefixes every environment override, e.g.
// MPPCONVERT_REFERENCE_PATH for reference.path.
const EnvPrefix = "MPPCONVERT"

// envKeys are the scalar settings that can be overridden from the
// environment. Unmarshal only sees env values for keys viper knows about.
var envKeys = []string{
	"workers",
	"reference.path", "reference.sheet",
	"bridge.java", "bridge.lib_dir", "bridge.main_class", "bridge.timeout_seconds",
	"export.format", "export.max_column_width", "export.examples",
	"review.rules_file",
	"storage.region", "storage.profile", "storage.endpoint", "storage.use_path_style",
	"telemetry.endpoint", "telemetry.disabled",
}

// BindEnv wires MPPCONVERT_* environment variables into v.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, k := range envKeys {
		if err := v.BindEnv(k); err != nil {
			return fmt.Errorf("failed to bind %s: %w", k, err)
		}
	}
	return nil
}

// Load decodes viper settings on top of Default.
func Load(v *viper.Viper) (Config, error) {
	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects threshold sets the decision engine cannot use.
func (c Config) Validate() error {
	var errs []error
	cc := c.Correction
	if cc.DayUnitMin <= 0 || cc.DayUnitMin > cc.DayUnitMax {
		errs = append(errs, fmt.Errorf("correction: invalid day-unit band [%g, %g]", cc.DayUnitMin, cc.DayUnitMax))
	}
	if cc.AgreementMin <= 0 || cc.AgreementMin > cc.AgreementMax {
		errs = append(errs, fmt.Errorf("correction: invalid agreement band [%g, %g]", cc.AgreementMin, cc.AgreementMax))
	}
	if cc.AgreementMax >= cc.DayUnitMin {
		errs = append(errs, errors.New("correction: agreement and day-unit bands overlap"))
	}
	if cc.ElapsedHoursScale <= 0 {
		errs = append(errs, fmt.Errorf("correction: elapsed_hours_scale must be positive, got %g", cc.ElapsedHoursScale))
	}
	for unit, hours := range c.UnitHours {
		if hours < 0 {
			errs = append(errs, fmt.Errorf("unit_hours: %q must not be negative", unit))
		}
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	switch c.Export.Format {
	case "xlsx", "csv", "json":
	default:
		errs = append(errs, fmt.Errorf("export: unsupported format %q", c.Export.Format))
	}
	return errors.Join(errs...)
}
