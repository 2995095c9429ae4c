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

// Package tweeter implements one fetch-format-publish cycle of the lake
// temperature tweeter. On each invocation the current water temperature of
// the configured lake is fetched from the backend service, rendered into a
// fixed-template message and published to the enabled social platforms. Any
// fetch or publish failure is reported to operators on all configured alert
// channels and results in a non-zero exit status. The external scheduler is
// responsible for the next attempt, no retries happen within a single run.
package tweeter

// Generated documentation is available at:
// https://pkg.go.dev/github.com/woog-life/tweeter/tweeter

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/woog-life/tweeter/alerter"
	pagerdutyalerter "github.com/woog-life/tweeter/alerter/pagerduty"
	telegramalerter "github.com/woog-life/tweeter/alerter/telegram"
	"github.com/woog-life/tweeter/conf"
	"github.com/woog-life/tweeter/publisher"
	"github.com/woog-life/tweeter/publisher/disabled"
	"github.com/woog-life/tweeter/publisher/mastodon"
	"github.com/woog-life/tweeter/publisher/twitter"
	"github.com/woog-life/tweeter/types"
)

// Exit codes
const (
	// ExitStatusOK means that the tool finished with success
	ExitStatusOK = iota
	// ExitStatusConfiguration is an error code related to program configuration
	ExitStatusConfiguration
	// ExitStatusFetchError is returned in case the temperature reading cannot be retrieved
	ExitStatusFetchError
	// ExitStatusPublishError is returned in case a social platform rejected the message
	ExitStatusPublishError
	// ExitStatusMetricsError is raised when prometheus metrics cannot be pushed
	ExitStatusMetricsError
)

// Messages
const (
	separator                = "------------------------------------------------------------"
	operationFailedMessage   = "Operation failed"
	metricsPushFailedMessage = "Couldn't push prometheus metrics"
	destinationNotSet        = "No social platform enabled. Aborting."
	fetchFailureSummary      = "Couldn't retrieve temperature reading from backend"
	staleReadingSummary      = "Temperature reading is too old to be published"
	publishFailureSummary    = "Couldn't publish temperature message"
	platformAttribute        = "platform"
	channelAttribute         = "channel"
	lakeAttribute            = "lake"
	messageAttribute         = "message"
)

var (
	publishers []publisher.Publisher
	alerters   []alerter.Alerter
)

// ShowConfiguration function displays actual configuration.
func ShowConfiguration(config *conf.ConfigStruct) {
	backendConfig := conf.GetBackendConfiguration(config)
	log.Info().
		Str("Address", backendConfig.Address).
		Str("Path template", backendConfig.PathTemplate).
		Str("Lake ID", backendConfig.LakeID).
		Int("Precision", backendConfig.Precision).
		Str("Format region", backendConfig.FormatRegion).
		Str("Timeout", backendConfig.Timeout.String()).
		Str("Max reading age", backendConfig.MaxReadingAge.String()).
		Msg("Backend configuration")

	messageConfig := conf.GetMessageConfiguration(config)
	log.Info().
		Str("Template", messageConfig.Template).
		Str("Time format", messageConfig.TimeFormat).
		Str("Time location", messageConfig.TimeLocation).
		Msg("Message configuration")

	// credentials and tokens are omitted on purpose
	twitterConfig := conf.GetTwitterConfiguration(config)
	log.Info().
		Bool("Enabled", twitterConfig.Enabled).
		Str("Timeout", twitterConfig.Timeout.String()).
		Msg("Twitter configuration")

	mastodonConfig := conf.GetMastodonConfiguration(config)
	log.Info().
		Bool("Enabled", mastodonConfig.Enabled).
		Str("Instance URL", mastodonConfig.InstanceURL).
		Str("Timeout", mastodonConfig.Timeout.String()).
		Msg("Mastodon configuration")

	telegramConfig := conf.GetTelegramConfiguration(config)
	log.Info().
		Bool("Enabled", telegramConfig.Enabled).
		Int("Chats", len(telegramConfig.ChatIDs)).
		Msg("Telegram configuration")

	pagerDutyConfig := conf.GetPagerDutyConfiguration(config)
	log.Info().
		Bool("Enabled", pagerDutyConfig.Enabled).
		Msg("PagerDuty configuration")

	loggingConfig := conf.GetLoggingConfiguration(config)
	log.Info().
		Str("Level", loggingConfig.LogLevel).
		Bool("Pretty colored debug logging", loggingConfig.Debug).
		Msg("Logging configuration")

	metricsConfig := conf.GetMetricsConfiguration(config)
	log.Info().
		Str("Namespace", metricsConfig.Namespace).
		Str("Subsystem", metricsConfig.Subsystem).
		Str("Push Gateway", metricsConfig.GatewayURL).
		Int("Retries", metricsConfig.Retries).
		Str("Retry after", metricsConfig.RetryAfter.String()).
		Msg("Metrics configuration")
}

// registerMetrics registers metrics using the provided namespace, if any
func registerMetrics(metricsConfig conf.MetricsConfiguration) {
	if metricsConfig.Namespace != "" {
		log.Info().Str("namespace", metricsConfig.Namespace).Msg("Setting metrics namespace")
		AddMetricsWithNamespaceAndSubsystem(
			metricsConfig.Namespace,
			metricsConfig.Subsystem)
	}
}

// setupPublishers function creates a publisher for every enabled social
// platform using the provided configuration
func setupPublishers(config *conf.ConfigStruct) error {
	publishers = nil

	// platform enable/disable is very important information, let's
	// inform admins about the state
	twitterConfig := conf.GetTwitterConfiguration(config)
	if twitterConfig.Enabled {
		log.Info().Msg("Twitter publisher is enabled")
		twitterPublisher, err := twitter.New(twitterConfig)
		if err != nil {
			PublisherSetupErrors.Inc()
			log.Error().Err(err).Msg("Couldn't initialize Twitter publisher with the provided config.")
			return err
		}
		publishers = append(publishers, twitterPublisher)
	} else {
		log.Info().Msg("Twitter publisher is disabled")
	}

	mastodonConfig := conf.GetMastodonConfiguration(config)
	if mastodonConfig.Enabled {
		log.Info().Msg("Mastodon publisher is enabled")
		mastodonPublisher, err := mastodon.New(mastodonConfig)
		if err != nil {
			PublisherSetupErrors.Inc()
			log.Error().Err(err).Msg("Couldn't initialize Mastodon publisher with the provided config.")
			return err
		}
		publishers = append(publishers, mastodonPublisher)
	} else {
		log.Info().Msg("Mastodon publisher is disabled")
	}

	if len(publishers) == 0 {
		log.Error().Msg(destinationNotSet)
		return fmt.Errorf("no social platform enabled")
	}
	return nil
}

// setupAlerters function creates an alerter for every configured alert
// channel. A channel that cannot be set up is skipped: alerting is
// best-effort and must not abort the run.
func setupAlerters(config *conf.ConfigStruct) {
	alerters = nil

	telegramConfig := conf.GetTelegramConfiguration(config)
	if telegramConfig.Enabled {
		telegramAlerter, err := telegramalerter.New(telegramConfig)
		if err != nil {
			log.Error().Err(err).Msg("Couldn't initialize Telegram alerter with the provided config.")
		} else {
			alerters = append(alerters, telegramAlerter)
		}
	}

	pagerDutyConfig := conf.GetPagerDutyConfiguration(config)
	if pagerDutyConfig.Enabled {
		pagerDutyAlerter, err := pagerdutyalerter.New(pagerDutyConfig)
		if err != nil {
			log.Error().Err(err).Msg("Couldn't initialize PagerDuty alerter with the provided config.")
		} else {
			alerters = append(alerters, pagerDutyAlerter)
		}
	}

	if len(alerters) == 0 {
		log.Warn().Msg("No alert channel configured, failures will only be visible in logs")
	}
}

// alertFailure function notifies all configured alert channels about a
// failed run. Each channel is treated independently: a channel failure is
// counted and logged, it never changes the outcome of the run.
func alertFailure(summary string, failure error) {
	for _, alrt := range alerters {
		err := alrt.SendAlert(summary, failure.Error())
		if err != nil {
			AlertErrors.Inc()
			log.Error().Err(err).Str(channelAttribute, alrt.Channel()).Msg("Unable to deliver alert")
			continue
		}
		AlertsSent.Inc()
	}
}

// publishMessage function submits the message to every enabled platform.
// All platforms are attempted even after one of them failed, so that an
// outage of one platform does not silence the others.
func publishMessage(message types.Message) error {
	var failures []string

	for _, pub := range publishers {
		log.Info().
			Str(platformAttribute, pub.Platform()).
			Str(messageAttribute, string(message)).
			Msg("Publishing message")
		_, err := pub.Publish(message)
		if err != nil {
			PublishErrors.Inc()
			log.Error().Err(err).Str(platformAttribute, pub.Platform()).Msg(operationFailedMessage)
			failures = append(failures, fmt.Sprintf("%s: %s", pub.Platform(), err))
			continue
		}
		PostsPublished.Inc()
	}

	if len(failures) > 0 {
		return &PublishError{Msg: strings.Join(failures, "; ")}
	}
	return nil
}

// closePublishers releases all publishers created for this run
func closePublishers() {
	for _, pub := range publishers {
		err := pub.Close()
		if err != nil {
			log.Error().Err(err).Str(platformAttribute, pub.Platform()).Msg(operationFailedMessage)
		}
	}
}

// run function executes one fetch-format-publish cycle using the already
// prepared publishers and alerters, and returns the process exit status
func run(config *conf.ConfigStruct, cliFlags types.CliFlags) int {
	messageConfig := conf.GetMessageConfiguration(config)
	settings, err := resolveMessageSettings(&messageConfig)
	if err != nil {
		return ExitStatusConfiguration
	}

	backendConfig := conf.GetBackendConfiguration(config)
	reading, err := fetchReading(&backendConfig)
	if err != nil {
		FetchReadingErrors.Inc()
		log.Err(err).Msg(operationFailedMessage)
		alertFailure(fetchFailureSummary, err)
		return ExitStatusFetchError
	}
	LastTemperature.Set(float64(reading.Temperature))

	err = checkReadingAge(reading, backendConfig.MaxReadingAge, time.Now())
	if err != nil {
		StaleReadings.Inc()
		log.Err(err).Str(lakeAttribute, string(reading.Lake)).Msg(operationFailedMessage)
		alertFailure(staleReadingSummary, err)
		return ExitStatusFetchError
	}

	message := formatMessage(settings, reading)
	log.Info().Str(messageAttribute, string(message)).Msg("Message rendered")

	if cliFlags.DryRun {
		fmt.Println(message)
		return ExitStatusOK
	}

	err = publishMessage(message)
	if err != nil {
		alertFailure(publishFailureSummary, err)
		return ExitStatusPublishError
	}

	return ExitStatusOK
}

// pushMetrics delivers the metrics collected during this run to the
// configured prometheus push gateway, retrying as configured
func pushMetrics(metricsConf conf.MetricsConfiguration) error {
	err := PushCollectedMetrics(&metricsConf)
	if err == nil {
		log.Info().Msg("Metrics pushed successfully")
		return nil
	}
	log.Err(err).Msg(metricsPushFailedMessage)
	if metricsConf.RetryAfter == 0 || metricsConf.Retries == 0 {
		return err
	}
	for i := metricsConf.Retries; i > 0; i-- {
		time.Sleep(metricsConf.RetryAfter)
		log.Info().Msgf("Push metrics. Retrying (%d/%d attempts left)", i, metricsConf.Retries)
		err = PushCollectedMetrics(&metricsConf)
		if err == nil {
			log.Info().Msg("Metrics pushed successfully")
			return nil
		}
		log.Err(err).Msg(metricsPushFailedMessage)
	}
	return err
}

// Run function is entry point to the tweeter. It returns the process exit
// status: ExitStatusOK only when both fetch and publish succeeded.
func Run(config conf.ConfigStruct, cliFlags types.CliFlags) int {
	log.Info().Msg("Tweeter started")
	log.Info().Msg(separator)

	if cliFlags.Verbose {
		ShowConfiguration(&config)
	}

	registerMetrics(conf.GetMetricsConfiguration(&config))

	if cliFlags.DryRun {
		// a dry run renders the message without touching any social
		// platform or alert channel
		publishers = []publisher.Publisher{&disabled.Publisher{}}
		alerters = nil
	} else {
		err := setupPublishers(&config)
		if err != nil {
			return ExitStatusConfiguration
		}
		setupAlerters(&config)
	}
	log.Info().Msg(separator)

	exitStatus := run(&config, cliFlags)

	closePublishers()
	log.Info().Msg(separator)

	metricsConfig := conf.GetMetricsConfiguration(&config)
	if metricsConfig.GatewayURL != "" {
		log.Info().Msg("Tweeter finished. Pushing metrics to the configured prometheus gateway.")
		err := pushMetrics(metricsConfig)
		// a metrics push failure must never mask the failure that
		// already determined the outcome of this run
		if err != nil && exitStatus == ExitStatusOK {
			exitStatus = ExitStatusMetricsError
		}
	} else {
		log.Info().Msg("Tweeter finished")
	}

	return exitStatus
}
