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

package twitter_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woog-life/tweeter/conf"
	"github.com/woog-life/tweeter/publisher/twitter"
	"github.com/woog-life/tweeter/types"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
}

func fullConfiguration() conf.TwitterConfiguration {
	return conf.TwitterConfiguration{
		Enabled:           true,
		ConsumerKey:       "consumer-key",
		ConsumerSecret:    "consumer-secret",
		AccessToken:       "access-token",
		AccessTokenSecret: "access-token-secret",
	}
}

// TestNewIncompleteCredentials checks that a publisher cannot be constructed
// with incomplete credentials
func TestNewIncompleteCredentials(t *testing.T) {
	configurations := []conf.TwitterConfiguration{
		{},
		{ConsumerKey: "consumer-key"},
		{ConsumerKey: "consumer-key", ConsumerSecret: "consumer-secret"},
		{ConsumerKey: "consumer-key", ConsumerSecret: "consumer-secret", AccessToken: "access-token"},
	}
	for _, configuration := range configurations {
		_, err := twitter.New(configuration)
		assert.Error(t, err)
	}
}

// TestPlatform checks the platform name of the publisher
func TestPlatform(t *testing.T) {
	publisher, err := twitter.New(fullConfiguration())
	require.NoError(t, err)
	assert.Equal(t, "twitter", publisher.Platform())
}

// TestPublish checks creating a tweet: the message must be form-posted as
// status parameter with an OAuth authorization header
func TestPublish(t *testing.T) {
	var status string
	var authorizationHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		err := r.ParseForm()
		assert.NoError(t, err)
		status = r.PostFormValue("status")
		authorizationHeader = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id_str": "1700000000000000000"}`))
	}))
	defer server.Close()

	publisher, err := twitter.New(fullConfiguration())
	require.NoError(t, err)
	publisher.URL = server.URL

	postID, err := publisher.Publish("Der Woog hat eine Temperatur von 21,40°C")
	assert.NoError(t, err)
	assert.Equal(t, "1700000000000000000", string(postID))
	assert.Equal(t, "Der Woog hat eine Temperatur von 21,40°C", status)
	assert.Contains(t, authorizationHeader, "OAuth")
	assert.Contains(t, authorizationHeader, `oauth_consumer_key="consumer-key"`)
}

// TestPublishTruncatesLongMessage checks that a message over the platform
// limit is truncated to 280 characters, not bytes
func TestPublishTruncatesLongMessage(t *testing.T) {
	var status string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := r.ParseForm()
		assert.NoError(t, err)
		status = r.PostFormValue("status")
		_, _ = w.Write([]byte(`{"id_str": "1"}`))
	}))
	defer server.Close()

	publisher, err := twitter.New(fullConfiguration())
	require.NoError(t, err)
	publisher.URL = server.URL

	longMessage := strings.Repeat("°", 300)
	_, err = publisher.Publish(types.Message(longMessage))
	assert.NoError(t, err)
	assert.Equal(t, 280, utf8.RuneCountInString(status))
}

// TestPublishRejectedByPlatform checks the behaviour when the platform
// rejects the request
func TestPublishRejectedByPlatform(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	publisher, err := twitter.New(fullConfiguration())
	require.NoError(t, err)
	publisher.URL = server.URL

	_, err = publisher.Publish("message")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

// TestPublishBrokenResponse checks that an undecodable response does not
// fail the publish, the tweet already exists at that point
func TestPublishBrokenResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("this is not JSON"))
	}))
	defer server.Close()

	publisher, err := twitter.New(fullConfiguration())
	require.NoError(t, err)
	publisher.URL = server.URL

	postID, err := publisher.Publish("message")
	assert.NoError(t, err)
	assert.Empty(t, string(postID))
}

// TestClose checks that closing the publisher does not fail
func TestClose(t *testing.T) {
	publisher, err := twitter.New(fullConfiguration())
	require.NoError(t, err)
	assert.NoError(t, publisher.Close())
}
