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

// Package pagerduty contains an implementation of Alerter interface that
// triggers an incident via the PagerDuty Events API v2.
package pagerduty

import (
	"context"
	"fmt"

	"github.com/PagerDuty/go-pagerduty"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/woog-life/tweeter/conf"
)

// alertSource is reported to PagerDuty as the origin of triggered incidents
const alertSource = "tweeter"

// Alerter is an implementation of Alerter interface for PagerDuty
type Alerter struct {
	Configuration conf.PagerDutyConfiguration

	client *pagerduty.Client
}

// New constructs new implementation of Alerter interface
func New(config conf.PagerDutyConfiguration) (*Alerter, error) {
	if config.RoutingKey == "" {
		return nil, fmt.Errorf("PagerDuty routing key not provided")
	}

	// the Events API is authenticated by the routing key carried in each
	// event, no account token is needed
	return &Alerter{
		Configuration: config,
		client:        pagerduty.NewClient(""),
	}, nil
}

// NewWithEndpoint constructs an Alerter that talks to the given Events API
// endpoint instead of the default one
func NewWithEndpoint(config conf.PagerDutyConfiguration, endpoint string) (*Alerter, error) {
	alerter, err := New(config)
	if err != nil {
		return nil, err
	}
	alerter.client = pagerduty.NewClient("", pagerduty.WithV2EventsAPIEndpoint(endpoint))
	return alerter, nil
}

// Channel returns the name of the alert channel
func (alerter *Alerter) Channel() string {
	return "pagerduty"
}

// SendAlert triggers an incident carrying the alert text. Every run failure
// produces a fresh dedup key so that repeated failures of the scheduled job
// are visible as separate incidents.
func (alerter *Alerter) SendAlert(summary, body string) error {
	ctx := context.Background()
	if alerter.Configuration.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, alerter.Configuration.Timeout)
		defer cancel()
	}

	event := pagerduty.V2Event{
		RoutingKey: alerter.Configuration.RoutingKey,
		Action:     "trigger",
		DedupKey:   uuid.NewString(),
		Payload: &pagerduty.V2Payload{
			Summary:  summary,
			Source:   alertSource,
			Severity: "critical",
			Details: map[string]interface{}{
				"alert_body": body,
			},
		},
	}

	response, err := alerter.client.ManageEventWithContext(ctx, &event)
	if err != nil {
		log.Error().Err(err).Msg("Unable to trigger PagerDuty incident")
		return err
	}

	log.Info().Str("status", response.Status).Str("dedup key", event.DedupKey).Msg("incident triggered")
	return nil
}
