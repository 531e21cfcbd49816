package state

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/hcl"
	"github.com/joho/godotenv"
	"github.com/juju/errors"
	"github.com/robfig/cron/v3"
	"github.com/temoto/spotlcd/hardware/i2c"
	"github.com/temoto/spotlcd/helpers"
	"github.com/temoto/spotlcd/internal/engine"
	"github.com/temoto/spotlcd/internal/price"
	"github.com/temoto/spotlcd/internal/tele"
	"github.com/temoto/spotlcd/internal/ui"
	"github.com/temoto/spotlcd/log2"
)

const (
	DefaultConfigName = "spotlcd.hcl"
	DefaultEnvFile    = ".env"

	EnvHostname     = "SPOTLCD_HOSTNAME"
	EnvTelePassword = "SPOTLCD_TELE_PASSWORD"
)

var DefaultDisplayHosts = []string{"malina"}

type Config struct {
	// includeSeen contains absolute paths to prevent include loops
	includeSeen map[string]struct{}
	// only used for Unmarshal, do not access
	XXX_Include []ConfigSource `hcl:"include"`

	Location string `hcl:"location"` // IANA zone name, empty is local
	EnvFile  string `hcl:"env_file"`

	Price    PriceConfig   `hcl:"price"`
	Schedule engine.Config `hcl:"schedule"`
	Display  DisplayConfig `hcl:"display"`
	Tele     tele.Config   `hcl:"tele"`

	loc *time.Location
	env map[string]string
}

type PriceConfig struct {
	BaseURL      string `hcl:"base_url"`
	Path         string `hcl:"path"`
	PriceListKey int    `hcl:"price_list_key"`
	MaxCount     int    `hcl:"max_count"` // <0 no limit
	DaysOffset   int    `hcl:"days_offset"`
	TimeoutSec   int    `hcl:"timeout_sec"`
	SourceOffset string `hcl:"source_offset"` // startDate zone, like "+02:00"
}

type DisplayConfig struct { //nolint:maligned
	Hosts      []string `hcl:"hosts"` // display is only used on these hostnames, "*" matches any
	BusDriver  string   `hcl:"bus_driver"`
	Bus        int      `hcl:"bus"` // <0 probe candidates
	Candidates []string `hcl:"candidates"`
	Codepage   string   `hcl:"codepage"`
	SettleMs   int      `hcl:"settle_ms"`
	QuietFrom  int      `hcl:"quiet_from"`
	QuietTo    int      `hcl:"quiet_to"`
	Brightness int      `hcl:"brightness"`
	HideErrors bool     `hcl:"hide_errors"`
	LogDebug   bool     `hcl:"log_debug"`
}

type ConfigSource struct {
	Name     string `hcl:"name,key"`
	Optional bool   `hcl:"optional"`
}

// NewConfig returns config with defaults, hcl sources only overwrite keys they set.
func NewConfig() *Config {
	c := &Config{includeSeen: make(map[string]struct{})}
	c.EnvFile = DefaultEnvFile
	c.Price = PriceConfig{
		BaseURL:      price.DefaultBaseURL,
		Path:         price.DefaultPath,
		PriceListKey: price.DefaultPriceListKey,
		MaxCount:     price.DefaultMaxCount,
		TimeoutSec:   int(price.DefaultTimeout / time.Second),
	}
	c.Schedule = engine.Config{Cron: engine.DefaultCron, RetrySec: int(engine.DefaultRetry / time.Second)}
	c.Display = DisplayConfig{
		BusDriver:  i2c.DriverPeriph,
		Bus:        -1,
		QuietFrom:  ui.DefaultConfig.QuietFrom,
		QuietTo:    ui.DefaultConfig.QuietTo,
		Brightness: ui.DefaultConfig.Brightness,
	}
	c.Tele.Topic = tele.DefaultTopic
	return c
}

func (c *Config) read(log *log2.Log, fs FullReader, source ConfigSource, errs *[]error) {
	norm := fs.Normalize(source.Name)
	if _, ok := c.includeSeen[norm]; ok {
		*errs = append(*errs, errors.Errorf("config duplicate source=%s", source.Name))
		return
	}
	log.Debugf("config reading source='%s' path=%s", source.Name, norm)
	c.includeSeen[source.Name] = struct{}{}
	c.includeSeen[norm] = struct{}{}

	bs, err := fs.ReadAll(norm)
	if bs == nil && err == nil {
		if !source.Optional {
			err = errors.NotFoundf("config required name=%s path=%s", source.Name, norm)
			*errs = append(*errs, err)
		}
		return
	}
	if err != nil {
		*errs = append(*errs, errors.Annotatef(err, "config source=%s", source.Name))
		return
	}

	err = hcl.Unmarshal(bs, c)
	if err != nil {
		err = errors.Annotatef(err, "config unmarshal source=%s content='%s'", source.Name, string(bs))
		*errs = append(*errs, err)
		return
	}

	var includes []ConfigSource
	includes, c.XXX_Include = c.XXX_Include, nil
	for _, include := range includes {
		includeNorm := fs.Normalize(include.Name)
		if _, ok := c.includeSeen[includeNorm]; ok {
			err = errors.Errorf("config include loop: from=%s include=%s", source.Name, include.Name)
			*errs = append(*errs, err)
			continue
		}
		c.read(log, fs, include, errs)
	}
}

// readEnv loads optional dotenv file, process environment wins.
func (c *Config) readEnv(fs FullReader) error {
	c.env = make(map[string]string)
	if c.EnvFile != "" {
		bs, err := fs.ReadAll(fs.Normalize(c.EnvFile))
		if err != nil {
			return errors.Annotatef(err, "env file=%s", c.EnvFile)
		}
		if bs != nil {
			m, err := godotenv.UnmarshalBytes(bs)
			if err != nil {
				return errors.Annotatef(err, "env file=%s", c.EnvFile)
			}
			c.env = m
		}
	}
	for _, key := range []string{EnvHostname, EnvTelePassword} {
		if v, ok := os.LookupEnv(key); ok {
			c.env[key] = v
		}
	}
	if v := c.env[EnvTelePassword]; v != "" {
		c.Tele.Password = v
	}
	return nil
}

func (c *Config) Env(key string) string { return c.env[key] }

// Hostname for display detection, env override first.
func (c *Config) Hostname() (string, error) {
	if h := c.Env(EnvHostname); h != "" {
		return h, nil
	}
	h, err := os.Hostname()
	return h, errors.Annotate(err, "hostname")
}

func (c *Config) DisplayHost(hostname string) bool {
	for _, h := range c.Display.Hosts {
		if h == "*" || h == hostname {
			return true
		}
	}
	return false
}

func (c *Config) Loc() *time.Location {
	if c.loc == nil {
		return time.Local
	}
	return c.loc
}

// Validate resolves zones and checks ranges. Empty slices get defaults.
func (c *Config) Validate() error {
	errs := make([]error, 0, 8)
	if c.Display.Hosts == nil {
		c.Display.Hosts = DefaultDisplayHosts
	}
	if len(c.Display.Candidates) == 0 {
		c.Display.Candidates = i2c.DefaultCandidates
	}

	c.loc = time.Local
	if c.Location != "" {
		loc, err := time.LoadLocation(c.Location)
		if err != nil {
			errs = append(errs, errors.Annotatef(err, "config: location=%s", c.Location))
		} else {
			c.loc = loc
		}
	}
	if _, err := price.FixedZone(c.Price.SourceOffset); err != nil {
		errs = append(errs, errors.Annotate(err, "config: price.source_offset"))
	}
	if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
		errs = append(errs, errors.Annotatef(err, "config: schedule.cron=%q", c.Schedule.Cron))
	}
	check := func(name string, v, min, max int) {
		if v < min || v > max {
			errs = append(errs, errors.NotValidf("config: %s=%d expected %d..%d", name, v, min, max))
		}
	}
	check("display.quiet_from", c.Display.QuietFrom, 0, 23)
	check("display.quiet_to", c.Display.QuietTo, 0, 23)
	check("display.brightness", c.Display.Brightness, 0, 127)
	check("price.days_offset", c.Price.DaysOffset, -30, 30)
	if c.Price.TimeoutSec < 0 {
		errs = append(errs, errors.NotValidf("config: price.timeout_sec=%d", c.Price.TimeoutSec))
	}
	switch c.Display.BusDriver {
	case "", i2c.DriverPeriph, i2c.DriverDevfs:
	default:
		errs = append(errs, errors.NotValidf("config: display.bus_driver=%s", c.Display.BusDriver))
	}
	if c.Tele.Enabled && c.Tele.Broker == "" {
		errs = append(errs, errors.NotValidf("config: tele.enable=true tele.broker=empty"))
	}
	return helpers.FoldErrors(errs)
}

func (c *Config) String() string {
	return fmt.Sprintf("location=%s price=%+v schedule=%+v display=%+v tele.enable=%t tele.broker=%s",
		c.Loc(), c.Price, c.Schedule, c.Display, c.Tele.Enabled, c.Tele.Broker)
}

// ReadConfig reads names in order, later sources override earlier.
// Missing first source is allowed, defaults apply.
func ReadConfig(log *log2.Log, fs FullReader, names ...string) (*Config, error) {
	if len(names) == 0 {
		log.Fatal("code error [Must]ReadConfig() without names")
	}

	if osfs, ok := fs.(*OsFullReader); ok {
		dir, name := filepath.Split(names[0])
		osfs.SetBase(dir)
		names[0] = name
	}
	c := NewConfig()
	errs := make([]error, 0, 8)
	for i, name := range names {
		c.read(log, fs, ConfigSource{Name: name, Optional: i == 0}, &errs)
	}
	if err := c.readEnv(fs); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		if err := c.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return c, helpers.FoldErrors(errs)
}

func MustReadConfig(log *log2.Log, fs FullReader, names ...string) *Config {
	c, err := ReadConfig(log, fs, names...)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	return c
}
