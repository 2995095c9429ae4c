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

package tweeter

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/woog-life/tweeter/conf"
	"github.com/woog-life/tweeter/types"
)

// Default values applied when the message configuration leaves the
// corresponding option unset
const (
	DefaultMessageTemplate = "Der Woog hat eine Temperatur von {temperature}°C ({time}) #woog #wooglife #darmstadt"
	DefaultTimeFormat      = "15:04 02.01.2006"
	DefaultTimeLocation    = "Europe/Berlin"
	DefaultMaxReadingAge   = 115 * time.Minute
)

// Placeholders recognized in the message template
const (
	temperaturePlaceholder = "{temperature}"
	timePlaceholder        = "{time}"
)

// messageSettings holds the fully resolved message rendering options
type messageSettings struct {
	template   string
	timeFormat string
	location   *time.Location
}

// resolveMessageSettings applies defaults to the message configuration and
// loads the configured time zone
func resolveMessageSettings(config *conf.MessageConfiguration) (messageSettings, error) {
	settings := messageSettings{
		template:   config.Template,
		timeFormat: config.TimeFormat,
	}
	if settings.template == "" {
		settings.template = DefaultMessageTemplate
	}
	if settings.timeFormat == "" {
		settings.timeFormat = DefaultTimeFormat
	}

	locationName := config.TimeLocation
	if locationName == "" {
		locationName = DefaultTimeLocation
	}
	location, err := time.LoadLocation(locationName)
	if err != nil {
		log.Error().Err(err).Str("location", locationName).Msg("Unknown time zone")
		return settings, err
	}
	settings.location = location
	return settings, nil
}

// formatMessage renders the fixed message template over a valid Reading.
// Pure string formatting, this step cannot fail.
func formatMessage(settings messageSettings, reading types.Reading) types.Message {
	replacer := strings.NewReplacer(
		temperaturePlaceholder, reading.RenderedTemperature(),
		timePlaceholder, reading.Time.In(settings.location).Format(settings.timeFormat),
	)
	return types.Message(replacer.Replace(settings.template))
}

// checkReadingAge verifies that the reading is recent enough to be worth
// publishing. The job runs on a schedule, an old timestamp means the backend
// stopped receiving updates.
func checkReadingAge(reading types.Reading, maxAge time.Duration, now time.Time) error {
	if maxAge <= 0 {
		maxAge = DefaultMaxReadingAge
	}
	age := now.Sub(reading.Time)
	if age > maxAge {
		return &StaleReadingError{Age: age.Round(time.Minute), MaxAge: maxAge}
	}
	return nil
}
