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

// Package mastodon contains an implementation of Publisher interface that
// creates statuses ("toots") on a configured Mastodon instance.
package mastodon

import (
	"context"
	"fmt"

	"github.com/mattn/go-mastodon"
	"github.com/rs/zerolog/log"

	"github.com/woog-life/tweeter/conf"
	"github.com/woog-life/tweeter/types"
	"github.com/woog-life/tweeter/utils"
)

// Publisher is an implementation of Publisher interface for Mastodon
type Publisher struct {
	Configuration conf.MastodonConfiguration

	client *mastodon.Client
}

// New constructs new implementation of Publisher interface
func New(config conf.MastodonConfiguration) (*Publisher, error) {
	if config.AccessToken == "" {
		return nil, fmt.Errorf("Mastodon access token not provided")
	}

	client := mastodon.NewClient(&mastodon.Config{
		Server:      utils.SetHTTPPrefix(config.InstanceURL),
		AccessToken: config.AccessToken,
	})
	client.Timeout = config.Timeout

	return &Publisher{
		Configuration: config,
		client:        client,
	}, nil
}

// Platform returns the name of the platform
func (publisher *Publisher) Platform() string {
	return "mastodon"
}

// Publish creates a status with the given message on the configured
// instance. It returns the identifier of the created status or an error
// value in case the instance rejected the request.
func (publisher *Publisher) Publish(message types.Message) (types.PostID, error) {
	ctx := context.Background()
	if publisher.Configuration.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, publisher.Configuration.Timeout)
		defer cancel()
	}

	status, err := publisher.client.PostStatus(ctx, &mastodon.Toot{
		Status: string(message),
	})
	if err != nil {
		log.Error().Err(err).Msg("Status was not created")
		return "", err
	}

	log.Info().Str("id", string(status.ID)).Msg("status created")
	return types.PostID(status.ID), nil
}

// Close closes Publisher (in case of Mastodon implementation, it does not do
// anything)
func (publisher *Publisher) Close() error {
	return nil
}
