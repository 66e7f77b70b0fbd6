// Package config defines the run configuration. Values are taken from
// a config yaml file or environment variables or both.
package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jakopako/visawatch/internal/browser"
)

const dateLayout = "2006-01-02"

// Selectors holds the selector strategies for every UI target the
// workflow interacts with. Each target is a list of alternative
// strategies, tried in order; each strategy is a chain of selector
// steps resolved left to right (descending into shadow roots along
// the way). The portal changes its markup from time to time, so
// adding a fallback is a config change, not a code change.
type Selectors struct {
	Username    []browser.Strategy `yaml:"username"`
	Password    []browser.Strategy `yaml:"password"`
	Policy      []browser.Strategy `yaml:"policy"`
	Submit      []browser.Strategy `yaml:"submit"`
	AccountPage []browser.Strategy `yaml:"account_page"`
}

// Config defines the overall structure of the visawatch configuration.
type Config struct {
	BaseURL            string    `yaml:"base_url" env:"VISAWATCH_BASE_URL" env-default:"https://ais.usvisa-info.com"`
	Region             string    `yaml:"region" env:"VISAWATCH_REGION" env-default:"ca"`
	Username           string    `yaml:"username" env:"VISAWATCH_USERNAME"`
	Password           string    `yaml:"password" env:"VISAWATCH_PASSWORD"`
	ScheduleID         int       `yaml:"schedule_id" env:"VISAWATCH_SCHEDULE_ID"`
	FacilityID         int       `yaml:"facility_id" env:"VISAWATCH_FACILITY_ID"`
	CurrentAppointment string    `yaml:"current_appointment" env:"VISAWATCH_CURRENT_APPOINTMENT"`
	PushToken          string    `yaml:"push_token" env:"VISAWATCH_PUSH_TOKEN"`
	UserAgent          string    `yaml:"user_agent" env:"VISAWATCH_USER_AGENT"`
	Headless           bool      `yaml:"headless" env:"VISAWATCH_HEADLESS" env-default:"true"`
	StepTimeoutMS      int       `yaml:"step_timeout_ms" env:"VISAWATCH_STEP_TIMEOUT_MS" env-default:"5000"`
	RunTimeoutMS       int       `yaml:"run_timeout_ms" env:"VISAWATCH_RUN_TIMEOUT_MS" env-default:"60000"`
	PageLoadWaitMS     int       `yaml:"page_load_wait_ms" env:"VISAWATCH_PAGE_LOAD_WAIT_MS" env-default:"2000"`
	Selectors          Selectors `yaml:"selectors"`
}

// New reads the configuration from the given file, merges in
// environment variables, fills in selector defaults and validates the
// result.
func New(configPath string) (*Config, error) {
	var config Config
	if err := cleanenv.ReadConfig(configPath, &config); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	if len(c.Selectors.Username) == 0 {
		c.Selectors.Username = []browser.Strategy{
			{"#user_email"},
			{"form#sign_in_form", "input[name='user[email]']"},
			{"form", "input[type=email]"},
		}
	}
	if len(c.Selectors.Password) == 0 {
		c.Selectors.Password = []browser.Strategy{
			{"#user_password"},
			{"form#sign_in_form", "input[name='user[password]']"},
			{"form", "input[type=password]"},
		}
	}
	if len(c.Selectors.Policy) == 0 {
		c.Selectors.Policy = []browser.Strategy{
			{"#policy_confirmed"},
			{"form#sign_in_form", "div.icheckbox"},
			{"input[name='policy_confirmed']"},
		}
	}
	if len(c.Selectors.Submit) == 0 {
		c.Selectors.Submit = []browser.Strategy{
			{"#new_user input[name=commit]"},
			{"form#sign_in_form", "input[type=submit]"},
			{"input[type=submit]"},
		}
	}
	if len(c.Selectors.AccountPage) == 0 {
		c.Selectors.AccountPage = []browser.Strategy{
			{"a[href*='continue_actions']"},
			{".attend_appointment"},
			{"a[href*='/niv/schedule']"},
		}
	}
}

func (c *Config) validate() error {
	if c.Username == "" || c.Password == "" {
		return fmt.Errorf("username and password must both be set")
	}
	if c.ScheduleID == 0 {
		return fmt.Errorf("schedule_id must be set")
	}
	if c.FacilityID == 0 {
		return fmt.Errorf("facility_id must be set")
	}
	if c.CurrentAppointment == "" {
		return fmt.Errorf("current_appointment must be set")
	}
	if _, err := time.Parse(dateLayout, c.CurrentAppointment); err != nil {
		return fmt.Errorf("current_appointment must be of the form YYYY-MM-DD: %w", err)
	}
	return nil
}

// CurrentAppointmentDate returns the threshold date. The zero time is
// returned if the configured value does not parse; New validates the
// value, so that only happens for hand-built configs.
func (c *Config) CurrentAppointmentDate() time.Time {
	d, _ := time.Parse(dateLayout, c.CurrentAppointment)
	return d
}

// SignInURL returns the login page of the configured portal region.
func (c *Config) SignInURL() string {
	return fmt.Sprintf("%s/en-%s/niv/users/sign_in", c.BaseURL, c.Region)
}

func (c *Config) StepTimeout() time.Duration {
	return time.Duration(c.StepTimeoutMS) * time.Millisecond
}

func (c *Config) RunTimeout() time.Duration {
	return time.Duration(c.RunTimeoutMS) * time.Millisecond
}

func (c *Config) PageLoadWait() time.Duration {
	return time.Duration(c.PageLoadWaitMS) * time.Millisecond
}
