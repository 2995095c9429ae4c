/*
Copyright © 2022, 2023 woog.life

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package conf

// This source file contains definition of data type named ConfigStruct that
// represents configuration of the lake temperature tweeter. This source file
// also contains function named LoadConfiguration that can be used to load
// configuration from provided configuration file and/or from environment
// variables. Additionally several specific functions named
// GetBackendConfiguration, GetLoggingConfiguration, GetTwitterConfiguration,
// GetMastodonConfiguration, GetTelegramConfiguration,
// GetPagerDutyConfiguration and GetMetricsConfiguration are to be used to
// return specific configuration options.

// Generated documentation is available at:
// https://pkg.go.dev/github.com/woog-life/tweeter/conf

// Default name of configuration file is config.toml
// It can be changed via environment variable TWEETER_CONFIG_FILE

// An example of configuration file that can be used in devel environment:
//
// [backend]
// address = "https://api.woog.life"
// path_template = "lake/{}/temperature"
// lake_id = "69c8438b-5aef-442f-a70d-e0d783ea2b38"
// timeout = "10s"
//
// [logging]
// debug = true
// log_level = ""
//
// Environment variables that can be used to override configuration file
// settings follow the TWEETER_ prefix convention, e.g.
// TWEETER_BACKEND__LAKE_ID overrides backend.lake_id

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Common constants used by the configuration module
const (
	// ConfigFileEnvVariableName is name of environment variable that
	// might contain name of configuration file
	ConfigFileEnvVariableName = "TWEETER_CONFIG_FILE"

	// DefaultConfigFileName is name of config file without file extension
	DefaultConfigFileName = "config"
)

// ConfigStruct is a structure holding the whole tweeter configuration
type ConfigStruct struct {
	Logging   LoggingConfiguration   `mapstructure:"logging" toml:"logging"`
	Backend   BackendConfiguration   `mapstructure:"backend" toml:"backend"`
	Message   MessageConfiguration   `mapstructure:"message" toml:"message"`
	Twitter   TwitterConfiguration   `mapstructure:"twitter" toml:"twitter"`
	Mastodon  MastodonConfiguration  `mapstructure:"mastodon" toml:"mastodon"`
	Telegram  TelegramConfiguration  `mapstructure:"telegram" toml:"telegram"`
	PagerDuty PagerDutyConfiguration `mapstructure:"pagerduty" toml:"pagerduty"`
	Metrics   MetricsConfiguration   `mapstructure:"metrics" toml:"metrics"`
}

// LoggingConfiguration represents configuration for logging in general
type LoggingConfiguration struct {
	// Debug enables pretty colored logging
	Debug bool `mapstructure:"debug" toml:"debug"`

	// LogLevel sets logging level to show. Possible values are:
	// "debug"
	// "info"
	// "warn", "warning"
	// "error"
	// "fatal"
	//
	// logging level won't be changed if value is not one of listed above
	LogLevel string `mapstructure:"log_level" toml:"log_level"`
}

// BackendConfiguration represents configuration of the backend service that
// provides lake temperature readings
type BackendConfiguration struct {
	// Address is the base URL of the backend service
	Address string `mapstructure:"address" toml:"address"`

	// PathTemplate is the endpoint path with a `{}` placeholder for the
	// lake identifier
	PathTemplate string `mapstructure:"path_template" toml:"path_template"`

	// LakeID identifies the lake whose temperature is published
	LakeID string `mapstructure:"lake_id" toml:"lake_id"`

	// Precision is the number of decimal places requested from the
	// backend
	Precision int `mapstructure:"precision" toml:"precision"`

	// FormatRegion selects the number format used by the backend when
	// rendering the temperature value, e.g. "DE"
	FormatRegion string `mapstructure:"format_region" toml:"format_region"`

	Timeout time.Duration `mapstructure:"timeout" toml:"timeout"`

	// MaxReadingAge is the maximal accepted age of a reading. Older
	// readings are not published.
	MaxReadingAge time.Duration `mapstructure:"max_reading_age" toml:"max_reading_age"`
}

// MessageConfiguration represents the configuration specific to the content
// of published messages
type MessageConfiguration struct {
	// Template is the message template with `{temperature}` and `{time}`
	// placeholders
	Template string `mapstructure:"template" toml:"template"`

	// TimeFormat is the Go reference layout used to render the reading
	// timestamp
	TimeFormat string `mapstructure:"time_format" toml:"time_format"`

	// TimeLocation is the IANA name of the time zone the timestamp is
	// rendered in
	TimeLocation string `mapstructure:"time_location" toml:"time_location"`
}

// TwitterConfiguration represents configuration of the Twitter publisher
type TwitterConfiguration struct {
	Enabled           bool          `mapstructure:"enabled" toml:"enabled"`
	ConsumerKey       string        `mapstructure:"consumer_key" toml:"consumer_key"`
	ConsumerSecret    string        `mapstructure:"consumer_secret" toml:"consumer_secret"`
	AccessToken       string        `mapstructure:"access_token" toml:"access_token"`
	AccessTokenSecret string        `mapstructure:"access_token_secret" toml:"access_token_secret"`
	Timeout           time.Duration `mapstructure:"timeout" toml:"timeout"`
}

// MastodonConfiguration represents configuration of the Mastodon publisher
type MastodonConfiguration struct {
	Enabled     bool          `mapstructure:"enabled" toml:"enabled"`
	InstanceURL string        `mapstructure:"instance_url" toml:"instance_url"`
	AccessToken string        `mapstructure:"access_token" toml:"access_token"`
	Timeout     time.Duration `mapstructure:"timeout" toml:"timeout"`
}

// TelegramConfiguration represents configuration of the Telegram alert
// channel
type TelegramConfiguration struct {
	Enabled bool   `mapstructure:"enabled" toml:"enabled"`
	Token   string `mapstructure:"token" toml:"token"`

	// ChatIDs is the list of chats the alert message is delivered to
	ChatIDs []int64       `mapstructure:"chat_ids" toml:"chat_ids"`
	Timeout time.Duration `mapstructure:"timeout" toml:"timeout"`
}

// PagerDutyConfiguration represents configuration of the PagerDuty alert
// channel
type PagerDutyConfiguration struct {
	Enabled    bool          `mapstructure:"enabled" toml:"enabled"`
	RoutingKey string        `mapstructure:"routing_key" toml:"routing_key"`
	Timeout    time.Duration `mapstructure:"timeout" toml:"timeout"`
}

// MetricsConfiguration holds metrics related configuration
type MetricsConfiguration struct {
	Job              string        `mapstructure:"job_name" toml:"job_name"`
	Namespace        string        `mapstructure:"namespace" toml:"namespace"`
	Subsystem        string        `mapstructure:"subsystem" toml:"subsystem"`
	GatewayURL       string        `mapstructure:"gateway_url" toml:"gateway_url"`
	GatewayAuthToken string        `mapstructure:"gateway_auth_token" toml:"gateway_auth_token"`
	Retries          int           `mapstructure:"retries" toml:"retries"`
	RetryAfter       time.Duration `mapstructure:"retry_after" toml:"retry_after"`
}

// LoadConfiguration loads configuration from defaultConfigFile, file set in
// configFileEnvVariableName or from env
func LoadConfiguration(configFileEnvVariableName, defaultConfigFile string) (ConfigStruct, error) {
	var config ConfigStruct

	// env. variable holding name of configuration file
	configFile, specified := os.LookupEnv(configFileEnvVariableName)
	if specified {
		// we need to separate the directory name and filename without
		// extension
		directory, basename := filepath.Split(configFile)
		file := strings.TrimSuffix(basename, filepath.Ext(basename))
		// parse the configuration
		viper.SetConfigName(file)
		viper.AddConfigPath(directory)
	} else {
		log.Info().Str("filename", defaultConfigFile).Msg("Parsing configuration file")
		// parse the configuration
		viper.SetConfigName(defaultConfigFile)
		viper.AddConfigPath(".")
	}

	// try to read the whole configuration
	err := viper.ReadInConfig()
	if _, isNotFoundError := err.(viper.ConfigFileNotFoundError); !specified && isNotFoundError {
		// If config file is not present (which might be correct in
		// some environment) we need to read configuration from
		// environment variables. The problem is that Viper is not smart
		// enough to understand the structure of config by itself, so
		// we need to read fake config file
		fakeTomlConfigWriter := new(bytes.Buffer)

		err := toml.NewEncoder(fakeTomlConfigWriter).Encode(config)
		if err != nil {
			return config, err
		}

		fakeTomlConfig := fakeTomlConfigWriter.String()

		viper.SetConfigType("toml")

		err = viper.ReadConfig(strings.NewReader(fakeTomlConfig))
		if err != nil {
			return config, err
		}
	} else if err != nil {
		// error is processed on caller side
		return config, fmt.Errorf("fatal error config file: %s", err)
	}

	// override config from env if there's variable in env

	const envPrefix = "TWEETER_"

	viper.AutomaticEnv()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "__"))

	err = viper.Unmarshal(&config)
	return config, err
}

// GetLoggingConfiguration returns logging configuration
func GetLoggingConfiguration(config *ConfigStruct) LoggingConfiguration {
	return config.Logging
}

// GetBackendConfiguration returns backend service configuration
func GetBackendConfiguration(config *ConfigStruct) BackendConfiguration {
	return config.Backend
}

// GetMessageConfiguration returns configuration related with message content
func GetMessageConfiguration(config *ConfigStruct) MessageConfiguration {
	return config.Message
}

// GetTwitterConfiguration returns Twitter publisher configuration
func GetTwitterConfiguration(config *ConfigStruct) TwitterConfiguration {
	return config.Twitter
}

// GetMastodonConfiguration returns Mastodon publisher configuration
func GetMastodonConfiguration(config *ConfigStruct) MastodonConfiguration {
	return config.Mastodon
}

// GetTelegramConfiguration returns Telegram alert channel configuration
func GetTelegramConfiguration(config *ConfigStruct) TelegramConfiguration {
	return config.Telegram
}

// GetPagerDutyConfiguration returns PagerDuty alert channel configuration
func GetPagerDutyConfiguration(config *ConfigStruct) PagerDutyConfiguration {
	return config.PagerDuty
}

// GetMetricsConfiguration returns metrics configuration
func GetMetricsConfiguration(config *ConfigStruct) MetricsConfiguration {
	return config.Metrics
}
