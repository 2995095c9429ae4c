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

// Package twitter contains an implementation of Publisher interface that
// creates tweets via the Twitter API v1.1 statuses/update endpoint using
// OAuth1 user credentials.
package twitter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/dghubble/oauth1"
	"github.com/rs/zerolog/log"

	"github.com/woog-life/tweeter/conf"
	"github.com/woog-life/tweeter/types"
	"github.com/woog-life/tweeter/utils"
)

// StatusUpdateURL is the Twitter API v1.1 endpoint for creating tweets
const StatusUpdateURL = "https://api.twitter.com/1.1/statuses/update.json"

// Twitter counts characters, not bytes. Messages longer than this limit are
// rejected by the platform, so they are truncated before submission.
const maxTweetLength = 280

// Publisher is an implementation of Publisher interface for Twitter
type Publisher struct {
	Configuration conf.TwitterConfiguration

	// URL of the statuses/update endpoint, overridable in tests
	URL string

	httpClient *http.Client
}

// status update response, only the post identifier is of interest
type statusResponse struct {
	IDStr string `json:"id_str"`
}

// New constructs new implementation of Publisher interface
func New(config conf.TwitterConfiguration) (*Publisher, error) {
	if config.ConsumerKey == "" || config.ConsumerSecret == "" ||
		config.AccessToken == "" || config.AccessTokenSecret == "" {
		return nil, fmt.Errorf("incomplete Twitter credentials")
	}

	oauthConfig := oauth1.NewConfig(config.ConsumerKey, config.ConsumerSecret)
	token := oauth1.NewToken(config.AccessToken, config.AccessTokenSecret)

	httpClient := oauthConfig.Client(oauth1.NoContext, token)
	httpClient.Timeout = config.Timeout

	return &Publisher{
		Configuration: config,
		URL:           StatusUpdateURL,
		httpClient:    httpClient,
	}, nil
}

// Platform returns the name of the platform
func (publisher *Publisher) Platform() string {
	return "twitter"
}

// Publish creates a tweet with the given message. It returns the identifier
// of the created tweet or an error value in case the platform rejected the
// request.
func (publisher *Publisher) Publish(message types.Message) (types.PostID, error) {
	status := utils.TruncateRunes(string(message), maxTweetLength)

	form := url.Values{}
	form.Set("status", status)

	response, err := publisher.httpClient.Post(
		publisher.URL,
		"application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()))
	if err != nil {
		log.Error().Err(err).Msg("Error making the HTTP request to Twitter")
		return "", err
	}
	defer func() {
		err := response.Body.Close()
		if err != nil {
			log.Error().Err(err).Msg("Error closing response body")
		}
	}()

	if response.StatusCode != http.StatusOK {
		err = fmt.Errorf("received unexpected response status code - %s", response.Status)
		log.Error().Err(err).Msg("Tweet was not created")
		return "", err
	}

	var created statusResponse
	err = json.NewDecoder(response.Body).Decode(&created)
	if err != nil {
		// the tweet exists at this point, a decode failure only loses
		// its identifier
		log.Error().Err(err).Msg("Unable to decode statuses/update response")
		return "", nil
	}

	log.Info().Str("id", created.IDStr).Msg("tweet created")
	return types.PostID(created.IDStr), nil
}

// Close closes Publisher (in case of Twitter implementation, it does not do
// anything)
func (publisher *Publisher) Close() error {
	return nil
}
