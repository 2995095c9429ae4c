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

package types

// Generated documentation is available at:
// https://pkg.go.dev/github.com/woog-life/tweeter/types

import (
	"strconv"
	"time"
)

// LakeID data type represents the identifier of a lake as used by the
// backend service, in format c8590f31-e97e-4b85-b506-c45ce1911a12 (ie. in
// UUID format).
type LakeID string

// Temperature data type represents a water temperature in degrees Celsius.
type Temperature float64

// Message represents the formatted text published to a social platform.
// Immutable once constructed, exists only within a single run.
type Message string

// PostID data type represents the identifier of a post created on a social
// platform. Empty when the platform does not report one.
type PostID string

// Reading represents a single temperature observation for a given lake,
// obtained from the backend service.
type Reading struct {
	Lake        LakeID
	Temperature Temperature
	// Precise is the temperature value pre-rendered by the backend
	// according to the configured format region, for example "21,4" for
	// region DE. Empty when the backend did not provide one.
	Precise string
	Time    time.Time
}

// RenderedTemperature returns the temperature value to be embedded in a
// published message. The backend-rendered value takes precedence as it
// already respects the configured precision and region.
func (reading Reading) RenderedTemperature() string {
	if reading.Precise != "" {
		return reading.Precise
	}
	return strconv.FormatFloat(float64(reading.Temperature), 'f', -1, 64)
}

// CliFlags represents structure holding all command line arguments/flags.
type CliFlags struct {
	ShowVersion       bool
	ShowAuthors       bool
	ShowConfiguration bool
	Verbose           bool
	DryRun            bool
}
