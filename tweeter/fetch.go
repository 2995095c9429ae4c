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
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/woog-life/tweeter/conf"
	"github.com/woog-life/tweeter/types"
	"github.com/woog-life/tweeter/utils"
)

// Default values applied when the backend configuration leaves the
// corresponding option unset
const (
	DefaultBackendPathTemplate = "lake/{}/temperature"
	DefaultBackendPrecision    = 2
	DefaultFormatRegion        = "DE"
	DefaultFetchTimeout        = 10 * time.Second
)

// lakeIDPlaceholder is substituted with the configured lake identifier in
// the backend path template
const lakeIDPlaceholder = "{}"

// temperatureResponse is the payload returned by the backend temperature
// endpoint
type temperatureResponse struct {
	Temperature        *float64 `json:"temperature"`
	PreciseTemperature string   `json:"preciseTemperature"`
	Time               string   `json:"time"`
}

// backendURL builds the request URL by substituting the lake identifier into
// the configured path template appended to the backend base address
func backendURL(config *conf.BackendConfiguration) string {
	pathTemplate := config.PathTemplate
	if pathTemplate == "" {
		pathTemplate = DefaultBackendPathTemplate
	}
	path := strings.Replace(pathTemplate, lakeIDPlaceholder, config.LakeID, 1)
	return utils.SetHTTPPrefix(strings.TrimSuffix(config.Address, "/")) + "/" + path
}

// fetchReading function retrieves the current temperature reading for the
// configured lake from the backend service
func fetchReading(config *conf.BackendConfiguration) (types.Reading, error) {
	precision := config.Precision
	if precision <= 0 {
		precision = DefaultBackendPrecision
	}
	formatRegion := config.FormatRegion
	if formatRegion == "" {
		formatRegion = DefaultFormatRegion
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}

	url := backendURL(config)
	log.Info().Str("url", url).Msg("Fetching temperature reading")

	client := resty.New().SetTimeout(timeout)
	response, err := client.R().
		SetQueryParams(map[string]string{
			"precision":    strconv.Itoa(precision),
			"formatRegion": formatRegion,
		}).
		Get(url)
	if err != nil {
		log.Error().Err(err).Msg("Error while connecting to backend")
		return types.Reading{}, &FetchError{Msg: fmt.Sprintf("error while connecting to backend: %s", err)}
	}

	if !response.IsSuccess() {
		log.Error().
			Int("code", response.StatusCode()).
			Str("body", string(response.Body())).
			Msg("Request to backend was unsuccessful")
		return types.Reading{}, &FetchError{Msg: fmt.Sprintf(
			"request to backend was unsuccessful: %s: %s", response.Status(), response.Body())}
	}

	return parseReading(response.Body(), types.LakeID(config.LakeID))
}

// parseReading decodes the backend payload into a Reading. A Reading is
// valid only if the payload contains a numeric temperature and a parseable
// timestamp.
func parseReading(body []byte, lake types.LakeID) (types.Reading, error) {
	var payload temperatureResponse
	err := json.Unmarshal(body, &payload)
	if err != nil {
		log.Error().Err(err).Msg("Deserialization error - Couldn't create reading object")
		return types.Reading{}, &FetchError{Msg: fmt.Sprintf("unable to decode backend response: %s", err)}
	}

	reading := types.Reading{Lake: lake}

	switch {
	case payload.PreciseTemperature != "":
		value, err := parseRegionalFloat(payload.PreciseTemperature)
		if err != nil {
			return types.Reading{}, &FetchError{Msg: fmt.Sprintf(
				"backend returned non-numeric temperature %q", payload.PreciseTemperature)}
		}
		reading.Precise = payload.PreciseTemperature
		reading.Temperature = types.Temperature(value)
	case payload.Temperature != nil:
		reading.Temperature = types.Temperature(*payload.Temperature)
	default:
		return types.Reading{}, &FetchError{Msg: "backend response contains no temperature field"}
	}

	reading.Time, err = parseReadingTime(payload.Time)
	if err != nil {
		return types.Reading{}, &FetchError{Msg: fmt.Sprintf("unable to parse reading timestamp: %s", err)}
	}

	log.Debug().
		Float64("temperature", float64(reading.Temperature)).
		Time("time", reading.Time).
		Msg("reading")
	return reading, nil
}

// parseRegionalFloat parses a number rendered with either a decimal point or
// a decimal comma, depending on the backend format region
func parseRegionalFloat(value string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(value, ",", ".", 1), 64)
}

// parseReadingTime parses the reading timestamp. The backend reports UTC
// timestamps, some historical versions without an explicit zone designator.
func parseReadingTime(value string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return parsed, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05", strings.TrimSuffix(value, "Z"), time.UTC)
}
