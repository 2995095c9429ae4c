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

// Package alerter contains the interface implemented by all channels used to
// notify operators about a failed run. Alerting is best-effort: errors
// returned by an alerter are counted and logged by the caller, they never
// change the outcome of the run.
package alerter

// Alerter represents any channel able to deliver a failure alert to
// operators
type Alerter interface {
	// Channel returns the name of the alert channel, used in logs
	Channel() string

	// SendAlert delivers the given failure summary and descriptive body
	// to the channel
	SendAlert(summary, body string) error
}
