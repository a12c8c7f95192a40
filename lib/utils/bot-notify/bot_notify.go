package botnotify

import (
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/slack-go/slack"
	"hr-timesheet-backend/config"
)

type Provider interface {
	SendError(message string) error
}

var Instance Provider

// NewHandler без токена оповещения отключены, Instance остается nil
func NewHandler() {
	token := config.Conf.Notify.SlackToken
	channelID := config.Conf.Notify.SlackErrorChannelID
	if token == "" || channelID == "" {
		log.Warn("оповещения об ошибках в Slack отключены")
		return
	}
	Instance = NewInstance(slack.New(token), channelID)
}

type poster interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
}

func NewInstance(client poster, errorChannelID string) Provider {
	return &impl{
		client:         client,
		errorChannelID: errorChannelID,
	}
}

type impl struct {
	client         poster
	errorChannelID string
}

func (i impl) SendError(message string) error {
	_, _, err := i.client.PostMessage(
		i.errorChannelID,
		slack.MsgOptionText(message, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return errors.Wrap(err, "ошибка отправки сообщения в Slack")
	}
	return nil
}

// FormatServerError текст оповещения об ответе 5xx
func FormatServerError(code int, method, path, message string) string {
	return fmt.Sprintf("[%d] %s %s: %s", code, method, path, message)
}
