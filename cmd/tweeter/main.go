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

// Entry point to the lake temperature tweeter.
//
// The purpose of this tool is to publish the current water temperature of a
// configured lake as a social media post. It runs as a cronjob: on each
// invocation it fetches one temperature reading from the woog.life backend,
// renders a human-readable message and publishes it to the enabled social
// platforms (Twitter and/or Mastodon). When fetching or publishing fails,
// operators are alerted via the configured channels (Telegram chats and/or
// a PagerDuty incident) and the process exits with a non-zero status so the
// failure is also visible to the scheduler.
//
// Additionally this tool collects several metrics about performed fetches,
// published posts and delivered alerts. These metrics are pushed to a
// Prometheus push gateway at the end of each run and can be displayed by
// Grafana tools.
package main

// Generated documentation is available at:
// https://pkg.go.dev/github.com/woog-life/tweeter/

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/woog-life/tweeter/conf"
	"github.com/woog-life/tweeter/tweeter"
)

// Configuration-related constants
const (
	loadConfigurationMessage = "Load configuration"
)

func main() {
	cliFlags := setupCliFlags()
	checkArgs(&cliFlags)

	// config has exactly the same structure as *.toml file
	config, err := conf.LoadConfiguration(conf.ConfigFileEnvVariableName, conf.DefaultConfigFileName)
	if err != nil {
		log.Err(err).Msg(loadConfigurationMessage)
		os.Exit(tweeter.ExitStatusConfiguration)
	}

	// configuration is loaded, so it would be possible to display it if
	// asked by user
	if cliFlags.ShowConfiguration {
		tweeter.ShowConfiguration(&config)
		os.Exit(tweeter.ExitStatusOK)
	}

	if config.Logging.Debug {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// set log level
	logLevel := convertLogLevel(config.Logging.LogLevel)
	zerolog.SetGlobalLevel(logLevel)
	log.Info().
		Str("configured", config.Logging.LogLevel).
		Int("internal", int(logLevel)).
		Msg("Log level")

	os.Exit(tweeter.Run(config, cliFlags))
}
