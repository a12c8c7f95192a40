package signature

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	stddraw "image/draw"
	_ "image/jpeg"
	"image/png"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"hr-timesheet-backend/models"
)

var allowedMimes = []string{"image/png", "image/jpeg", "image/webp"}

// Image подпись, нарисованная в браузере и переданная как data URL
type Image struct {
	Body []byte
	Mime string
}

// Parse разбирает data URL подписи. Ошибки формата возвращаются как ValidationError
func Parse(value string, maxBytes int) (Image, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return Image{}, models.NewValidationError("подпись отсутствует")
	}
	if !strings.HasPrefix(raw, "data:") {
		return Image{}, models.NewValidationError("подпись должна быть передана в формате data URL")
	}
	comma := strings.Index(raw, ",")
	if comma <= 5 {
		return Image{}, models.NewValidationError("некорректный data URL подписи")
	}
	meta := raw[5:comma]
	payload := raw[comma+1:]
	if !strings.HasSuffix(strings.ToLower(meta), ";base64") {
		return Image{}, models.NewValidationError("data URL подписи должен быть в base64")
	}
	mime := strings.ToLower(strings.TrimSpace(meta[:len(meta)-len(";base64")]))
	if !isAllowedMime(mime) {
		return Image{}, models.NewValidationErrorf("неподдерживаемый формат подписи: %v", mime)
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, models.NewValidationError("не удалось декодировать подпись")
	}
	if len(decoded) == 0 {
		return Image{}, models.NewValidationError("подпись пустая")
	}
	if maxBytes > 0 && len(decoded) > maxBytes {
		return Image{}, models.NewValidationError("размер подписи превышает допустимый")
	}
	detected := http.DetectContentType(decoded)
	if !strings.EqualFold(detected, mime) {
		return Image{}, models.NewValidationError("формат подписи не совпадает с содержимым")
	}
	return Image{Body: decoded, Mime: mime}, nil
}

// Validate проверка подписи без сохранения результата
func Validate(value string, maxBytes int) error {
	_, err := Parse(value, maxBytes)
	return err
}

// NormalizePNG вписывает подпись в прямоугольник width x height на белом фоне и возвращает PNG
func (i Image) NormalizePNG(width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("некорректный размер подписи: %dx%d", width, height)
	}
	src, _, err := image.Decode(bytes.NewReader(i.Body))
	if err != nil {
		return nil, errors.Wrap(err, "ошибка чтения изображения подписи")
	}
	bounds := src.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, errors.New("изображение подписи пустое")
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	stddraw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, stddraw.Src)

	scaleX := float64(width) / float64(bounds.Dx())
	scaleY := float64(height) / float64(bounds.Dy())
	scale := scaleX
	if scaleY < scale {
		scale = scaleY
	}
	targetW := int(float64(bounds.Dx()) * scale)
	targetH := int(float64(bounds.Dy()) * scale)
	if targetW < 1 {
		targetW = 1
	}
	if targetH < 1 {
		targetH = 1
	}
	offsetX := (width - targetW) / 2
	offsetY := (height - targetH) / 2
	target := image.Rect(offsetX, offsetY, offsetX+targetW, offsetY+targetH)
	xdraw.CatmullRom.Scale(dst, target, src, bounds, xdraw.Over, nil)

	var out bytes.Buffer
	if err = png.Encode(&out, dst); err != nil {
		return nil, errors.Wrap(err, "ошибка кодирования подписи в png")
	}
	return out.Bytes(), nil
}

func isAllowedMime(mime string) bool {
	for _, allowed := range allowedMimes {
		if allowed == mime {
			return true
		}
	}
	return false
}
