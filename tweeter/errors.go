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
	"time"
)

// FetchError occurs when the temperature reading cannot be retrieved from
// the backend: network error, non-2xx status or unparsable payload
type FetchError struct {
	Msg string
}

func (e *FetchError) Error() string {
	return e.Msg
}

// StaleReadingError occurs when the reading returned by the backend is older
// than the configured maximal age
type StaleReadingError struct {
	Age    time.Duration
	MaxAge time.Duration
}

func (e *StaleReadingError) Error() string {
	return fmt.Sprintf("last reading is %s old, maximum accepted age is %s", e.Age, e.MaxAge)
}

// PublishError occurs when at least one enabled social platform rejected the
// message
type PublishError struct {
	Msg string
}

func (e *PublishError) Error() string {
	return e.Msg
}
