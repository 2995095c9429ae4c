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

// Package publisher contains the interface implemented by all social
// platforms a temperature message can be published to.
package publisher

import (
	"github.com/woog-life/tweeter/types"
)

// Publisher represents any social platform able to publish a message
type Publisher interface {
	// Platform returns the name of the platform, used in logs and alert
	// messages
	Platform() string

	// Publish creates a post containing the given message and returns
	// the identifier of the created post
	Publish(message types.Message) (types.PostID, error)

	// Close releases resources held by the publisher
	Close() error
}
