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

// Package telegram contains an implementation of Alerter interface that
// delivers the alert text to a configured list of Telegram chats via the
// Telegram bot API.
package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/woog-life/tweeter/conf"
)

// Alerter is an implementation of Alerter interface for Telegram
type Alerter struct {
	Configuration conf.TelegramConfiguration

	// APIEndpoint is the bot API endpoint template, overridable in tests
	APIEndpoint string
}

// New constructs new implementation of Alerter interface
func New(config conf.TelegramConfiguration) (*Alerter, error) {
	if config.Token == "" {
		return nil, fmt.Errorf("Telegram bot token not provided")
	}
	if len(config.ChatIDs) == 0 {
		return nil, fmt.Errorf("Telegram chat list is empty")
	}

	return &Alerter{
		Configuration: config,
		APIEndpoint:   tgbotapi.APIEndpoint,
	}, nil
}

// Channel returns the name of the alert channel
func (alerter *Alerter) Channel() string {
	return "telegram"
}

// SendAlert delivers the alert text to every configured chat. The bot
// session is established inside this method so that network failures stay
// within the best-effort alert path.
func (alerter *Alerter) SendAlert(summary, body string) error {
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(alerter.Configuration.Token, alerter.APIEndpoint)
	if err != nil {
		log.Error().Err(err).Msg("Unable to connect to Telegram bot API")
		return err
	}

	text := fmt.Sprintf("%s: %s", summary, body)

	// alert all configured chats, a failed chat does not stop delivery
	// to the remaining ones
	var lastErr error
	for _, chatID := range alerter.Configuration.ChatIDs {
		message := tgbotapi.NewMessage(chatID, text)
		_, err := bot.Send(message)
		if err != nil {
			log.Error().Err(err).Int64("chat", chatID).Msg("Unable to deliver alert to chat")
			lastErr = err
			continue
		}
		log.Info().Int64("chat", chatID).Msg("alert delivered")
	}
	return lastErr
}
