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

// File metrics contains all metrics that needs to be exposed to Prometheus
// and indirectly to Grafana. As the tweeter is a run-to-completion job, the
// metrics are pushed to the configured Prometheus push gateway at the end of
// each run.

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rs/zerolog/log"

	"github.com/woog-life/tweeter/conf"
)

// Metrics names
const (
	FetchReadingErrorsName   = "fetch_reading_errors"
	StaleReadingsName        = "stale_readings"
	PublisherSetupErrorsName = "publisher_setup_errors"
	PublishErrorsName        = "publish_errors"
	PostsPublishedName       = "posts_published"
	AlertErrorsName          = "alert_errors"
	AlertsSentName           = "alerts_sent"
	LastTemperatureName      = "last_reading_temperature_celsius"
)

// Metrics helps
const (
	FetchReadingErrorsHelp   = "The total number of errors during fetch from the backend service"
	StaleReadingsHelp        = "The total number of readings not published because they were too old"
	PublisherSetupErrorsHelp = "The total number of errors when setting up a social platform publisher"
	PublishErrorsHelp        = "The total number of errors when publishing a message to a social platform"
	PostsPublishedHelp       = "The total number of posts created on social platforms"
	AlertErrorsHelp          = "The total number of errors while delivering a failure alert"
	AlertsSentHelp           = "The total number of failure alerts delivered to operators"
	LastTemperatureHelp      = "The last temperature reading retrieved from the backend service"
)

// PushGatewayClient is a simple wrapper over http.Client so that prometheus
// can do HTTP requests with the given authentication header
type PushGatewayClient struct {
	AuthToken string

	httpClient http.Client
}

// Do is a simple wrapper over http.Client.Do method that includes
// the authentication header configured in the PushGatewayClient instance
func (pgc *PushGatewayClient) Do(request *http.Request) (*http.Response, error) {
	if pgc.AuthToken != "" {
		log.Debug().Msg("Adding authorization header to HTTP request")
		request.Header.Set("Authorization", "Basic "+pgc.AuthToken)
	} else {
		log.Debug().Msg("No authorization token provided. Making HTTP request without credentials.")
	}
	log.Debug().Str("request", request.URL.String()).Str("method", request.Method).Msg("Pushing metrics to Prometheus push gateway")
	resp, err := pgc.httpClient.Do(request)
	if resp != nil {
		log.Debug().Int("code", resp.StatusCode).Msg("Returned status code")
	}
	return resp, err
}

// FetchReadingErrors shows number of errors during fetch from the backend service
var FetchReadingErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: FetchReadingErrorsName,
	Help: FetchReadingErrorsHelp,
})

// StaleReadings shows number of readings not published because they were too old
var StaleReadings = promauto.NewCounter(prometheus.CounterOpts{
	Name: StaleReadingsName,
	Help: StaleReadingsHelp,
})

// PublisherSetupErrors shows number of errors when setting up a social platform publisher
var PublisherSetupErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: PublisherSetupErrorsName,
	Help: PublisherSetupErrorsHelp,
})

// PublishErrors shows number of errors when publishing a message to a social platform
var PublishErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: PublishErrorsName,
	Help: PublishErrorsHelp,
})

// PostsPublished shows number of posts created on social platforms
var PostsPublished = promauto.NewCounter(prometheus.CounterOpts{
	Name: PostsPublishedName,
	Help: PostsPublishedHelp,
})

// AlertErrors shows number of errors while delivering a failure alert
var AlertErrors = promauto.NewCounter(prometheus.CounterOpts{
	Name: AlertErrorsName,
	Help: AlertErrorsHelp,
})

// AlertsSent shows number of failure alerts delivered to operators
var AlertsSent = promauto.NewCounter(prometheus.CounterOpts{
	Name: AlertsSentName,
	Help: AlertsSentHelp,
})

// LastTemperature shows the last temperature reading retrieved from the backend service
var LastTemperature = promauto.NewGauge(prometheus.GaugeOpts{
	Name: LastTemperatureName,
	Help: LastTemperatureHelp,
})

// AddMetricsWithNamespaceAndSubsystem register the desired metrics using a
// given namespace and subsystem
func AddMetricsWithNamespaceAndSubsystem(namespace, subsystem string) {
	// Unregister all metrics and register them again

	prometheus.Unregister(FetchReadingErrors)
	prometheus.Unregister(StaleReadings)
	prometheus.Unregister(PublisherSetupErrors)
	prometheus.Unregister(PublishErrors)
	prometheus.Unregister(PostsPublished)
	prometheus.Unregister(AlertErrors)
	prometheus.Unregister(AlertsSent)
	prometheus.Unregister(LastTemperature)

	FetchReadingErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      FetchReadingErrorsName,
		Help:      FetchReadingErrorsHelp,
	})

	StaleReadings = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      StaleReadingsName,
		Help:      StaleReadingsHelp,
	})

	PublisherSetupErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      PublisherSetupErrorsName,
		Help:      PublisherSetupErrorsHelp,
	})

	PublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      PublishErrorsName,
		Help:      PublishErrorsHelp,
	})

	PostsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      PostsPublishedName,
		Help:      PostsPublishedHelp,
	})

	AlertErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      AlertErrorsName,
		Help:      AlertErrorsHelp,
	})

	AlertsSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      AlertsSentName,
		Help:      AlertsSentHelp,
	})

	LastTemperature = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      LastTemperatureName,
		Help:      LastTemperatureHelp,
	})
}

// PushCollectedMetrics function pushes the metrics to the configured
// prometheus push gateway
func PushCollectedMetrics(metricsConf *conf.MetricsConfiguration) error {
	client := PushGatewayClient{metricsConf.GatewayAuthToken, http.Client{}}

	// Creates a pusher to the gateway "$PUSHGW_URL/metrics/job/$(job_name)
	return push.New(metricsConf.GatewayURL, metricsConf.Job).
		Collector(FetchReadingErrors).
		Collector(StaleReadings).
		Collector(PublisherSetupErrors).
		Collector(PublishErrors).
		Collector(PostsPublished).
		Collector(AlertErrors).
		Collector(AlertsSent).
		Collector(LastTemperature).
		Client(&client).
		Push()
}
