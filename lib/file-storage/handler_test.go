package filestorage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"hr-timesheet-backend/models"
)

func TestCheckPdf(t *testing.T) {
	t.Run(`valid`, func(t *testing.T) {
		require.Nil(t, CheckPdf([]byte("%PDF-1.4\n..."), 1024))
	})
	t.Run(`empty`, func(t *testing.T) {
		err := CheckPdf(nil, 1024)
		require.True(t, models.IsErrorKind(err, models.ErrorKindValidation))
	})
	t.Run(`not pdf`, func(t *testing.T) {
		err := CheckPdf([]byte("GIF89a"), 1024)
		require.True(t, models.IsErrorKind(err, models.ErrorKindValidation))
	})
	t.Run(`too large`, func(t *testing.T) {
		err := CheckPdf([]byte("%PDF-1.4 long body"), 8)
		require.True(t, models.IsErrorKind(err, models.ErrorKindValidation))
	})
}

func TestNotConfigured(t *testing.T) {
	provider := NewInstance(nil, "timesheets")
	_, err := provider.UploadSignedPdf(context.Background(), "id", []byte("%PDF-"))
	require.NotNil(t, err)
	_, err = provider.GetFile(context.Background(), SignedPdfKey("id"))
	require.NotNil(t, err)
	require.Nil(t, provider.DeleteFile(context.Background(), SignedPdfKey("id")))
}

func TestSignedPdfKey(t *testing.T) {
	first := SignedPdfKey("ts-1")
	second := SignedPdfKey("ts-1")
	require.True(t, strings.HasPrefix(first, "timesheets/ts-1/"))
	require.True(t, strings.HasSuffix(first, ".pdf"))
	require.NotEqual(t, first, second)
}
