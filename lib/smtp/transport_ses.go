package smtp

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type sesTransport struct {
	region string
}

func newSesTransport(region string) Transport {
	return &sesTransport{
		region: region,
	}
}

func (t sesTransport) IsConfigured() bool {
	return t.region != ""
}

func (t sesTransport) Send(ctx context.Context, from string, recipients []string, raw []byte) error {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(t.region))
	if err != nil {
		return errors.Wrap(err, "ошибка загрузки настроек AWS")
	}
	client := ses.NewFromConfig(cfg)
	res, err := client.SendRawEmail(ctx, &ses.SendRawEmailInput{
		Source:       aws.String(from),
		Destinations: recipients,
		RawMessage: &types.RawMessage{
			Data: raw,
		},
	})
	if err != nil {
		return err
	}
	log.WithField("message_id", aws.ToString(res.MessageId)).Debug("письмо передано в SES")
	return nil
}
