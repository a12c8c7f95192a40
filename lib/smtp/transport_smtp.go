package smtp

import (
	"bytes"
	"context"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
)

type smtpTransport struct {
	user       string
	password   string
	host       string
	port       string
	tlsEnabled bool
}

func newSmtpTransport(user, password, host, port string, tlsEnabled bool) Transport {
	return &smtpTransport{
		user:       user,
		password:   password,
		host:       host,
		port:       port,
		tlsEnabled: tlsEnabled,
	}
}

func (t smtpTransport) IsConfigured() bool {
	return t.user != "" && t.host != "" && t.port != ""
}

func (t smtpTransport) Send(ctx context.Context, from string, recipients []string, raw []byte) error {
	auth := sasl.NewPlainClient("", t.user, t.password)
	addr := t.host + ":" + t.port
	if t.tlsEnabled {
		return smtp.SendMailTLS(addr, auth, from, recipients, bytes.NewReader(raw))
	}
	return smtp.SendMail(addr, auth, from, recipients, bytes.NewReader(raw))
}
