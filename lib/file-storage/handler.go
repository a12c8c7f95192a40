package filestorage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"hr-timesheet-backend/config"
	"hr-timesheet-backend/models"
	s3client "hr-timesheet-backend/s3"
)

const pdfContentType = "application/pdf"

var pdfMagic = []byte("%PDF-")

type Provider interface {
	UploadSignedPdf(ctx context.Context, timesheetID string, body []byte) (key string, err error)
	GetFile(ctx context.Context, key string) ([]byte, error)
	DeleteFile(ctx context.Context, key string) error
}

var Instance Provider

func NewHandler() {
	Instance = NewInstance(s3client.Client, config.Conf.S3.BucketName)
}

func NewInstance(client *minio.Client, bucketName string) Provider {
	return &impl{
		s3client:   client,
		bucketName: bucketName,
	}
}

type impl struct {
	s3client   *minio.Client
	bucketName string
}

func (i impl) getLogger(key string) *log.Entry {
	return log.WithFields(log.Fields{
		"bucket": i.bucketName,
		"key":    key,
	})
}

func (i impl) UploadSignedPdf(ctx context.Context, timesheetID string, body []byte) (key string, err error) {
	if i.s3client == nil {
		return "", errors.New("хранилище файлов не настроено")
	}
	key = SignedPdfKey(timesheetID)
	_, err = i.s3client.PutObject(ctx, i.bucketName, key, bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: pdfContentType})
	if err != nil {
		return "", errors.Wrap(err, "ошибка загрузки подписанного PDF")
	}
	i.getLogger(key).Info("подписанный PDF загружен")
	return key, nil
}

func (i impl) GetFile(ctx context.Context, key string) ([]byte, error) {
	if i.s3client == nil {
		return nil, errors.New("хранилище файлов не настроено")
	}
	obj, err := i.s3client.GetObject(ctx, i.bucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "ошибка получения файла")
	}
	defer obj.Close()
	body, err := io.ReadAll(obj)
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return nil, models.NewNotFoundError("файл не найден")
		}
		return nil, errors.Wrap(err, "ошибка чтения файла")
	}
	return body, nil
}

func (i impl) DeleteFile(ctx context.Context, key string) error {
	if i.s3client == nil || key == "" {
		return nil
	}
	err := i.s3client.RemoveObject(ctx, i.bucketName, key, minio.RemoveObjectOptions{})
	if err != nil {
		return errors.Wrap(err, "ошибка удаления файла")
	}
	return nil
}

// SignedPdfKey у каждой загрузки свой ключ: неудачная повторная отправка не затирает прежний файл
func SignedPdfKey(timesheetID string) string {
	return fmt.Sprintf("timesheets/%s/%s.pdf", timesheetID, uuid.NewString())
}

// CheckPdf проверка загруженного подписанного PDF
func CheckPdf(body []byte, maxSize int64) error {
	if len(body) == 0 {
		return models.NewValidationError("пустой файл PDF")
	}
	if maxSize > 0 && int64(len(body)) > maxSize {
		return models.NewValidationErrorf("размер PDF превышает %d байт", maxSize)
	}
	if !bytes.HasPrefix(body, pdfMagic) {
		return models.NewValidationError("файл не является PDF")
	}
	return nil
}
