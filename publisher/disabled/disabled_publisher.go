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

// Package disabled contains an implementation of Publisher interface that
// does not publish anywhere. It is used in dry runs and in tests.
package disabled

import (
	"github.com/rs/zerolog/log"

	"github.com/woog-life/tweeter/types"
)

// Publisher is an implementation of Publisher interface that discards all
// messages
type Publisher struct{}

// Platform returns the name of the platform
func (publisher *Publisher) Platform() string {
	return "disabled"
}

// Publish does not publish anything anywhere
func (publisher *Publisher) Publish(message types.Message) (types.PostID, error) {
	log.Info().Str("message", string(message)).Msg("publisher disabled, message discarded")
	return "", nil
}

// Close closes the publisher
func (publisher *Publisher) Close() error {
	return nil
}
