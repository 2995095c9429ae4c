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
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/woog-life/tweeter/conf"
	"github.com/woog-life/tweeter/publisher"
	"github.com/woog-life/tweeter/types"
)

// mockPublisher is a test implementation of the Publisher interface that
// records all published messages
type mockPublisher struct {
	platform string
	err      error
	messages []types.Message
	closed   bool
}

func (m *mockPublisher) Platform() string {
	return m.platform
}

func (m *mockPublisher) Publish(message types.Message) (types.PostID, error) {
	m.messages = append(m.messages, message)
	if m.err != nil {
		return "", m.err
	}
	return "1", nil
}

func (m *mockPublisher) Close() error {
	m.closed = true
	return nil
}

// mockAlerter is a test implementation of the Alerter interface that records
// all delivered alerts
type mockAlerter struct {
	err       error
	summaries []string
	bodies    []string
}

func (m *mockAlerter) Channel() string {
	return "mock"
}

func (m *mockAlerter) SendAlert(summary, body string) error {
	m.summaries = append(m.summaries, summary)
	m.bodies = append(m.bodies, body)
	return m.err
}

// newBackendServer starts a test backend returning the given status code
// and payload
func newBackendServer(statusCode int, payload string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(payload))
	}))
}

func configForBackend(serverURL string) conf.ConfigStruct {
	return conf.ConfigStruct{
		Backend: conf.BackendConfiguration{
			Address:      serverURL,
			PathTemplate: "lake/{}/temperature",
			LakeID:       "42",
			Timeout:      5 * time.Second,
		},
		Message: conf.MessageConfiguration{
			Template:     "current lake temperature: {temperature}°C",
			TimeLocation: "UTC",
		},
	}
}

func freshReadingPayload() string {
	return fmt.Sprintf(`{"temperature": 21.4, "time": "%s"}`,
		time.Now().UTC().Format(time.RFC3339))
}

// TestRunHappyPath checks the full fetch-format-publish sequence: the
// message carrying the fetched value is published once and no alert is
// delivered
func TestRunHappyPath(t *testing.T) {
	server := newBackendServer(http.StatusOK, freshReadingPayload())
	defer server.Close()

	pub := &mockPublisher{platform: "twitter"}
	alrt := &mockAlerter{}
	publishers = []publisher.Publisher{pub}
	alerters = nil
	alerters = append(alerters, alrt)

	config := configForBackend(server.URL)
	exitStatus := run(&config, types.CliFlags{})

	assert.Equal(t, ExitStatusOK, exitStatus)
	assert.Equal(t, []types.Message{"current lake temperature: 21.4°C"}, pub.messages)
	assert.Empty(t, alrt.summaries)
}

// TestRunFetchFailure checks that a failing backend terminates the run
// before any publish call and triggers the alert path exactly once
func TestRunFetchFailure(t *testing.T) {
	server := newBackendServer(http.StatusInternalServerError, "")
	defer server.Close()

	pub := &mockPublisher{platform: "twitter"}
	alrt := &mockAlerter{}
	publishers = []publisher.Publisher{pub}
	alerters = nil
	alerters = append(alerters, alrt)

	config := configForBackend(server.URL)
	exitStatus := run(&config, types.CliFlags{})

	assert.Equal(t, ExitStatusFetchError, exitStatus)
	assert.Empty(t, pub.messages)
	assert.Equal(t, []string{fetchFailureSummary}, alrt.summaries)
}

// TestRunPublishFailure checks that a rejecting platform terminates the run
// with a publish failure distinguishable from a fetch failure
func TestRunPublishFailure(t *testing.T) {
	server := newBackendServer(http.StatusOK, freshReadingPayload())
	defer server.Close()

	pub := &mockPublisher{
		platform: "twitter",
		err:      fmt.Errorf("received unexpected response status code - 403 Forbidden"),
	}
	alrt := &mockAlerter{}
	publishers = []publisher.Publisher{pub}
	alerters = nil
	alerters = append(alerters, alrt)

	config := configForBackend(server.URL)
	exitStatus := run(&config, types.CliFlags{})

	assert.Equal(t, ExitStatusPublishError, exitStatus)
	assert.Len(t, pub.messages, 1)
	assert.Equal(t, []string{publishFailureSummary}, alrt.summaries)
	assert.Contains(t, alrt.bodies[0], "twitter")
	assert.Contains(t, alrt.bodies[0], "403")
}

// TestRunAlertFailureDoesNotMaskFailure checks that a failing alert channel
// never turns a failed run into a successful exit
func TestRunAlertFailureDoesNotMaskFailure(t *testing.T) {
	server := newBackendServer(http.StatusInternalServerError, "")
	defer server.Close()

	alrt := &mockAlerter{err: fmt.Errorf("chat not found")}
	publishers = []publisher.Publisher{&mockPublisher{platform: "twitter"}}
	alerters = nil
	alerters = append(alerters, alrt)

	config := configForBackend(server.URL)
	exitStatus := run(&config, types.CliFlags{})

	assert.Equal(t, ExitStatusFetchError, exitStatus)
	assert.Len(t, alrt.summaries, 1)
}

// TestRunStaleReading checks that an outdated reading is not published and
// alerts the operator
func TestRunStaleReading(t *testing.T) {
	payload := fmt.Sprintf(`{"temperature": 21.4, "time": "%s"}`,
		time.Now().UTC().Add(-3*time.Hour).Format(time.RFC3339))
	server := newBackendServer(http.StatusOK, payload)
	defer server.Close()

	pub := &mockPublisher{platform: "twitter"}
	alrt := &mockAlerter{}
	publishers = []publisher.Publisher{pub}
	alerters = nil
	alerters = append(alerters, alrt)

	config := configForBackend(server.URL)
	exitStatus := run(&config, types.CliFlags{})

	assert.Equal(t, ExitStatusFetchError, exitStatus)
	assert.Empty(t, pub.messages)
	assert.Equal(t, []string{staleReadingSummary}, alrt.summaries)
}

// TestRunDryRun checks that a dry run renders the message but neither
// publishes nor alerts
func TestRunDryRun(t *testing.T) {
	server := newBackendServer(http.StatusOK, freshReadingPayload())
	defer server.Close()

	pub := &mockPublisher{platform: "twitter"}
	alrt := &mockAlerter{}
	publishers = []publisher.Publisher{pub}
	alerters = nil
	alerters = append(alerters, alrt)

	config := configForBackend(server.URL)
	exitStatus := run(&config, types.CliFlags{DryRun: true})

	assert.Equal(t, ExitStatusOK, exitStatus)
	assert.Empty(t, pub.messages)
	assert.Empty(t, alrt.summaries)
}

// TestRunUnknownTimeLocation checks that a broken message configuration is
// reported as a configuration problem
func TestRunUnknownTimeLocation(t *testing.T) {
	publishers = nil
	alerters = nil

	config := conf.ConfigStruct{
		Message: conf.MessageConfiguration{TimeLocation: "Atlantis/Lost_City"},
	}
	exitStatus := run(&config, types.CliFlags{})

	assert.Equal(t, ExitStatusConfiguration, exitStatus)
}

// TestPublishMessageAllPlatformsAttempted checks that an outage of one
// platform does not prevent publishing to the remaining ones
func TestPublishMessageAllPlatformsAttempted(t *testing.T) {
	failing := &mockPublisher{platform: "twitter", err: fmt.Errorf("rate limited")}
	working := &mockPublisher{platform: "mastodon"}
	publishers = []publisher.Publisher{failing, working}

	err := publishMessage("message")

	assert.Len(t, failing.messages, 1)
	assert.Len(t, working.messages, 1)
	assert.Error(t, err)
	assert.IsType(t, &PublishError{}, err)
	assert.Contains(t, err.Error(), "twitter: rate limited")
}

// TestPublishMessageAllPlatformsSucceed checks the result when every
// platform accepts the message
func TestPublishMessageAllPlatformsSucceed(t *testing.T) {
	first := &mockPublisher{platform: "twitter"}
	second := &mockPublisher{platform: "mastodon"}
	publishers = []publisher.Publisher{first, second}

	assert.NoError(t, publishMessage("message"))
}

// TestAlertFailureNotifiesAllChannels checks that every configured channel
// is notified independently
func TestAlertFailureNotifiesAllChannels(t *testing.T) {
	failing := &mockAlerter{err: fmt.Errorf("unreachable")}
	working := &mockAlerter{}
	alerters = nil
	alerters = append(alerters, failing, working)

	alertFailure("summary", fmt.Errorf("failure detail"))

	assert.Equal(t, []string{"summary"}, failing.summaries)
	assert.Equal(t, []string{"summary"}, working.summaries)
	assert.Equal(t, []string{"failure detail"}, working.bodies)
}

// TestSetupPublishersNoPlatformEnabled checks that a configuration without
// any enabled platform is rejected
func TestSetupPublishersNoPlatformEnabled(t *testing.T) {
	config := conf.ConfigStruct{}
	err := setupPublishers(&config)
	assert.Error(t, err)
}

// TestSetupPublishersIncompleteTwitterCredentials checks that enabled
// platforms with incomplete credentials are rejected
func TestSetupPublishersIncompleteTwitterCredentials(t *testing.T) {
	config := conf.ConfigStruct{
		Twitter: conf.TwitterConfiguration{Enabled: true},
	}
	err := setupPublishers(&config)
	assert.Error(t, err)
}

// TestRunEndToEnd checks a complete Run invocation with a real publisher
// set up from configuration
func TestRunEndToEnd(t *testing.T) {
	server := newBackendServer(http.StatusOK, freshReadingPayload())
	defer server.Close()

	config := configForBackend(server.URL)
	config.Mastodon = conf.MastodonConfiguration{
		Enabled:     true,
		InstanceURL: server.URL,
		AccessToken: "token",
	}

	// the backend test server also accepts the status creation request,
	// any JSON object is a valid answer for the mastodon client
	exitStatus := Run(config, types.CliFlags{})
	assert.Equal(t, ExitStatusOK, exitStatus)
}
