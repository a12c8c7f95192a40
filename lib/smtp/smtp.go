package smtp

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

var Instance Provider

type Provider interface {
	SendEMail(ctx context.Context, msg Message) error
}

type Message struct {
	To      []string
	Cc      []string
	Subject string
	HTML    string
	Text    string
}

// Transport доставка готового MIME письма
type Transport interface {
	Send(ctx context.Context, from string, recipients []string, raw []byte) error
	IsConfigured() bool
}

type Settings struct {
	User       string
	Password   string
	Host       string
	Port       string
	TLSEnabled bool
	FromEmail  string
	FromName   string
	// smtp | ses
	Transport string
	SesRegion string
}

func Connect(settings Settings) error {
	from := settings.FromEmail
	if from == "" {
		from = settings.User
	}
	var transport Transport
	switch settings.Transport {
	case "", "smtp":
		transport = newSmtpTransport(settings.User, settings.Password, settings.Host, settings.Port, settings.TLSEnabled)
	case "ses":
		transport = newSesTransport(settings.SesRegion)
	default:
		return errors.Errorf("неизвестный способ отправки почты: %v", settings.Transport)
	}
	Instance = NewInstance(transport, from, settings.FromName)
	return nil
}

func NewInstance(transport Transport, from, fromName string) Provider {
	return &impl{
		transport: transport,
		from:      from,
		fromName:  fromName,
	}
}

type impl struct {
	transport Transport
	from      string
	fromName  string
}

func (i impl) SendEMail(ctx context.Context, msg Message) error {
	logger := log.
		WithField("sender", i.from).
		WithField("to", msg.To).
		WithField("subject", msg.Subject)
	if !i.transport.IsConfigured() || i.from == "" {
		logger.Warn("Письмо не отправлено, тк не настроен почтовый клиент")
		return nil
	}
	if len(msg.To) == 0 {
		return errors.New("не указан получатель письма")
	}
	raw, err := i.compose(msg)
	if err != nil {
		return errors.Wrap(err, "ошибка формирования письма")
	}
	recipients := append(append([]string{}, msg.To...), msg.Cc...)
	err = i.transport.Send(ctx, i.from, recipients, raw)
	if err != nil {
		logger.WithError(err).Error("Ошибка отправки сообщения")
		return err
	}
	logger.Info("письмо отправлено")
	return nil
}

func (i impl) compose(msg Message) ([]byte, error) {
	m := gomail.NewMessage(gomail.SetCharset("UTF-8"))
	m.SetAddressHeader("From", i.from, i.fromName)
	m.SetHeader("To", msg.To...)
	if len(msg.Cc) != 0 {
		m.SetHeader("Cc", msg.Cc...)
	}
	m.SetHeader("Subject", msg.Subject)
	switch {
	case msg.Text != "" && msg.HTML != "":
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	case msg.HTML != "":
		m.SetBody("text/html", msg.HTML)
	default:
		m.SetBody("text/plain", msg.Text)
	}
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
