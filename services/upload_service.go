package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"strings"

	"salon-backend/utils"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gabriel-vasile/mimetype"
)

const MaxImageSize = 5 << 20

var folderPattern = regexp.MustCompile(`^[a-z0-9_-]{1,40}$`)

type UploadedImage struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
	MimeType string `json:"tipo"`
	Size     int    `json:"bytes"`
}

// ImageStore hosts images and returns their public URL.
type ImageStore interface {
	Upload(ctx context.Context, r io.Reader, folder string) (*UploadedImage, error)
}

type CloudinaryStore struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryStore(cloudName, apiKey, apiSecret string) (*CloudinaryStore, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	return &CloudinaryStore{cld: cld}, nil
}

// Upload stores the image under salon/<folder>, bounded to 800x800 with
// automatic quality and format.
func (s *CloudinaryStore) Upload(ctx context.Context, r io.Reader, folder string) (*UploadedImage, error) {
	resp, err := s.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:         "salon/" + folder,
		Transformation: "c_limit,w_800,h_800/q_auto:good/f_auto",
	})
	if err != nil {
		return nil, err
	}
	if resp.Error.Message != "" {
		return nil, errors.New(resp.Error.Message)
	}
	return &UploadedImage{URL: resp.SecureURL, PublicID: resp.PublicID}, nil
}

type UploadService struct {
	store ImageStore
}

// NewUploadService accepts a nil store; uploads then fail as unconfigured.
func NewUploadService(store ImageStore) *UploadService {
	return &UploadService{store: store}
}

func (s *UploadService) UploadImage(ctx context.Context, data []byte, folder string) (*UploadedImage, error) {
	if len(data) == 0 {
		return nil, utils.Validation("No se recibió ninguna imagen")
	}
	if len(data) > MaxImageSize {
		return nil, utils.Validation("La imagen no puede superar 5MB")
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, utils.Validation("Solo se permiten archivos de imagen")
	}

	folder = strings.ToLower(strings.TrimSpace(folder))
	if folder == "" {
		folder = "general"
	}
	if !folderPattern.MatchString(folder) {
		return nil, utils.Validation("Carpeta inválida")
	}
	if s.store == nil {
		return nil, utils.Internal("Servicio de imágenes no configurado", errors.New("cloudinary credentials missing"))
	}

	img, err := s.store.Upload(ctx, bytes.NewReader(data), folder)
	if err != nil {
		return nil, utils.Internal("Error al subir la imagen", err)
	}
	img.MimeType = mt.String()
	img.Size = len(data)
	return img, nil
}
