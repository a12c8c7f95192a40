package initializers

import (
	"context"

	log "github.com/sirupsen/logrus"
	"hr-timesheet-backend/config"
	s3client "hr-timesheet-backend/s3"
)

func InitS3(ctx context.Context) {
	if config.Conf.S3.Endpoint == "" {
		log.Warn("S3 не настроен, загрузка подписанных PDF недоступна")
		return
	}
	minioClient, err := s3client.NewClient()
	if err != nil {
		log.WithError(err).Error("Ошибка инициализации клиента S3")
		return
	}
	err = s3client.MakeBucket(ctx, minioClient, config.Conf.S3.BucketName)
	if err != nil {
		log.WithError(err).WithField("bucket", config.Conf.S3.BucketName).Error("S3 соединение не удалось, бакет недоступен")
	}
	s3client.Client = minioClient
	log.Info("S3 клиент успешно инициализирован")
}
