package main

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"scenario-visualizer/internal/log"
	"scenario-visualizer/internal/playback"
)

const (
	envPrefix = "SCENARIO_VISUALIZER"

	// defaultScenarioURL is used when no data source flag is given.
	defaultScenarioURL = "http://localhost:4000"
)

// ServeOptions configures the board server.
type ServeOptions struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`

	ScenarioURL string `mapstructure:"scenario-url"`
	GtfsRtURL   string `mapstructure:"gtfsrt-url"`
	SiriXmlURL  string `mapstructure:"siri-xml-url"`

	ScenarioID       int           `mapstructure:"scenario-id"`
	FetchTimeout     time.Duration `mapstructure:"fetch-timeout"`
	RefreshInterval  time.Duration `mapstructure:"refresh-interval"`
	SnapshotDuration float64       `mapstructure:"snapshot-duration"`

	AutoComplete bool   `mapstructure:"auto-complete"`
	GridOverlay  bool   `mapstructure:"grid-overlay"`
	ColorMode    string `mapstructure:"color-mode"`

	Log *log.Options `mapstructure:"log"`
}

func NewServeOptions() *ServeOptions {
	return &ServeOptions{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
		ScenarioID:      playback.DefaultScenarioID,
		FetchTimeout:    10 * time.Second,
		AutoComplete:    true,
		GridOverlay:     true,
		ColorMode:       "hsl",
		Log:             log.NewOptions(),
	}
}

func (o *ServeOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Addr, "addr", o.Addr, "HTTP listen address of the board server.")
	fs.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", o.ShutdownTimeout, "HTTP server shutdown timeout.")
	fs.StringVar(&o.ScenarioURL, "scenario-url", o.ScenarioURL, "Base URL of the scenario REST API (serves /scenarios/{id}). Defaults to "+defaultScenarioURL+".")
	fs.StringVar(&o.GtfsRtURL, "gtfsrt-url", o.GtfsRtURL, "GTFS-RT vehicle positions URL (protobuf) to build a snapshot scenario from.")
	fs.StringVar(&o.SiriXmlURL, "siri-xml-url", o.SiriXmlURL, "SIRI VehicleMonitoring XML URL to build a snapshot scenario from.")
	fs.IntVar(&o.ScenarioID, "scenario-id", o.ScenarioID, "Scenario to load.")
	fs.DurationVar(&o.FetchTimeout, "fetch-timeout", o.FetchTimeout, "Timeout of one scenario fetch.")
	fs.DurationVar(&o.RefreshInterval, "refresh-interval", o.RefreshInterval, "Refetch the scenario at this interval; 0 fetches once.")
	fs.Float64Var(&o.SnapshotDuration, "snapshot-duration", o.SnapshotDuration, "Scenario time in seconds for feed snapshots; 0 disables auto-completion for them.")
	fs.BoolVar(&o.AutoComplete, "auto-complete", o.AutoComplete, "Stop playback when the scenario time elapses and refuse restarts afterwards.")
	fs.BoolVar(&o.GridOverlay, "grid-overlay", o.GridOverlay, "Draw the grid cells on the board.")
	fs.StringVar(&o.ColorMode, "color-mode", o.ColorMode, "Random vehicle colour format: 'hsl' or 'hex'.")
	o.Log.AddFlags(fs)
}

// Complete fills defaults that depend on other options.
func (o *ServeOptions) Complete() {
	if o.ScenarioURL == "" && o.GtfsRtURL == "" && o.SiriXmlURL == "" {
		o.ScenarioURL = defaultScenarioURL
	}
}

func (o *ServeOptions) Validate() error {
	var errs []error

	count := 0
	for _, u := range []string{o.ScenarioURL, o.GtfsRtURL, o.SiriXmlURL} {
		if u != "" {
			count++
		}
	}
	if count != 1 {
		errs = append(errs, fmt.Errorf("provide exactly one of --scenario-url, --gtfsrt-url, --siri-xml-url"))
	}
	if err := validateAddress(o.Addr); err != nil {
		errs = append(errs, err)
	}
	if o.ScenarioID <= 0 {
		errs = append(errs, fmt.Errorf("--scenario-id must be positive, got %d", o.ScenarioID))
	}
	if o.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("--fetch-timeout must be positive"))
	}
	if o.RefreshInterval < 0 {
		errs = append(errs, fmt.Errorf("--refresh-interval must not be negative"))
	}
	if o.SnapshotDuration < 0 {
		errs = append(errs, fmt.Errorf("--snapshot-duration must not be negative"))
	}
	if o.ColorMode != "hsl" && o.ColorMode != "hex" {
		errs = append(errs, fmt.Errorf("--color-mode must be 'hsl' or 'hex', got %q", o.ColorMode))
	}
	errs = append(errs, o.Log.Validate()...)
	return utilerrors.NewAggregate(errs)
}

// source builds the configured scenario source and its metrics label.
func (o *ServeOptions) source() (playback.Source, string) {
	switch {
	case o.GtfsRtURL != "":
		return NewGtfsRtScenarioSource(o.GtfsRtURL, o.FetchTimeout, o.SnapshotDuration), "gtfsrt"
	case o.SiriXmlURL != "":
		return NewSiriXmlScenarioSource(o.SiriXmlURL, o.FetchTimeout, o.SnapshotDuration), "siri-xml"
	default:
		return NewRestScenarioSource(o.ScenarioURL, o.FetchTimeout), "rest"
	}
}

// FixtureOptions configures the fixture scenario server.
type FixtureOptions struct {
	Addr string       `mapstructure:"addr"`
	File string       `mapstructure:"file"`
	Log  *log.Options `mapstructure:"log"`
}

func NewFixtureOptions() *FixtureOptions {
	return &FixtureOptions{
		Addr: ":4000",
		File: "scenarios.yaml",
		Log:  log.NewOptions(),
	}
}

func (o *FixtureOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Addr, "addr", o.Addr, "HTTP listen address of the fixture server.")
	fs.StringVar(&o.File, "file", o.File, "YAML or JSON file holding the scenarios.")
	o.Log.AddFlags(fs)
}

func (o *FixtureOptions) Validate() error {
	var errs []error
	if err := validateAddress(o.Addr); err != nil {
		errs = append(errs, err)
	}
	if o.File == "" {
		errs = append(errs, fmt.Errorf("--file is required"))
	}
	errs = append(errs, o.Log.Validate()...)
	return utilerrors.NewAggregate(errs)
}

func validateAddress(addr string) error {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return fmt.Errorf("invalid address %q: %w", addr, err)
	}
	return nil
}

// loadOptions layers flags, SCENARIO_VISUALIZER_* environment variables and the
// optional config file into opts. Explicit flags win over env, env over the file.
func loadOptions(cmd *cobra.Command, opts any) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	if err := v.Unmarshal(opts); err != nil {
		return fmt.Errorf("decode options: %w", err)
	}
	return nil
}
