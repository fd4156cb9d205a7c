// Package storage implementa el puerto catalog.PhotoStorage: Cloudinary en producción y
// un directorio local (afero) para desarrollo y tests.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"

	"github.com/raposo-pdv/pdv-api/internal/application/catalog"
)

var _ catalog.PhotoStorage = (*CloudinaryStorage)(nil)

// deleteBatch máximo de public_ids por llamada de borrado del Admin API.
const deleteBatch = 100

// cloudinaryAPI el subconjunto del SDK que usa el adaptador.
type cloudinaryAPI interface {
	Upload(ctx context.Context, file io.Reader, params uploader.UploadParams) (*uploader.UploadResult, error)
	Rename(ctx context.Context, params uploader.RenameParams) (*uploader.RenameResult, error)
	DeleteAssets(ctx context.Context, params admin.DeleteAssetsParams) (*admin.DeleteAssetsResult, error)
}

type sdkClient struct {
	cld *cloudinary.Cloudinary
}

func (c sdkClient) Upload(ctx context.Context, file io.Reader, params uploader.UploadParams) (*uploader.UploadResult, error) {
	return c.cld.Upload.Upload(ctx, file, params)
}

func (c sdkClient) Rename(ctx context.Context, params uploader.RenameParams) (*uploader.RenameResult, error) {
	return c.cld.Upload.Rename(ctx, params)
}

func (c sdkClient) DeleteAssets(ctx context.Context, params admin.DeleteAssetsParams) (*admin.DeleteAssetsResult, error) {
	return c.cld.Admin.DeleteAssets(ctx, params)
}

// CloudinaryStorage guarda las fotos en Cloudinary usando el public_id como ruta completa.
type CloudinaryStorage struct {
	api cloudinaryAPI
}

// NewCloudinary construye el adaptador con las credenciales de la cuenta.
func NewCloudinary(cloudName, apiKey, apiSecret string) (*CloudinaryStorage, error) {
	cfg, err := config.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return newCloudinaryFromConfig(cfg)
}

// newCloudinaryFromConfig permite apuntar el SDK a otro host (API.UploadPrefix) en los tests.
func newCloudinaryFromConfig(cfg *config.Configuration) (*CloudinaryStorage, error) {
	cld, err := cloudinary.NewFromConfiguration(*cfg)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &CloudinaryStorage{api: sdkClient{cld: cld}}, nil
}

// Upload sube el contenido con el public_id indicado. No sobrescribe objetos existentes.
func (s *CloudinaryStorage) Upload(ctx context.Context, publicID string, content io.Reader, _ string) (*catalog.StoredObject, error) {
	res, err := s.api.Upload(ctx, content, uploader.UploadParams{
		PublicID:       publicID,
		Overwrite:      api.Bool(false),
		UniqueFilename: api.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload %s: %w", publicID, err)
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary upload %s: %s", publicID, res.Error.Message)
	}
	return &catalog.StoredObject{PublicID: res.PublicID, URL: res.SecureURL}, nil
}

// Rename mueve la foto a otra carpeta; Cloudinary conserva el contenido y devuelve la nueva URL.
func (s *CloudinaryStorage) Rename(ctx context.Context, fromPublicID, toPublicID string) (*catalog.StoredObject, error) {
	res, err := s.api.Rename(ctx, uploader.RenameParams{
		FromPublicID: fromPublicID,
		ToPublicID:   toPublicID,
		Overwrite:    api.Bool(true),
		Invalidate:   api.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary rename %s -> %s: %w", fromPublicID, toPublicID, err)
	}
	// En RenameResult el error no tiene tipo: suele llegar como {"message": "..."}.
	if res.Error != nil {
		return nil, fmt.Errorf("cloudinary rename %s -> %s: %s", fromPublicID, toPublicID, errorMessage(res.Error))
	}
	return &catalog.StoredObject{PublicID: res.PublicID, URL: res.SecureURL}, nil
}

// Delete borra los objetos en lotes. Sigue con los lotes restantes si uno falla.
func (s *CloudinaryStorage) Delete(ctx context.Context, publicIDs []string) error {
	var errs []error
	for start := 0; start < len(publicIDs); start += deleteBatch {
		end := min(start+deleteBatch, len(publicIDs))
		res, err := s.api.DeleteAssets(ctx, admin.DeleteAssetsParams{
			AssetType:    api.Image,
			DeliveryType: api.Upload,
			PublicIDs:    publicIDs[start:end],
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if res.Error.Message != "" {
			errs = append(errs, errors.New(res.Error.Message))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("cloudinary delete: %w", err)
	}
	return nil
}

func errorMessage(v interface{}) string {
	switch e := v.(type) {
	case map[string]interface{}:
		if msg, ok := e["message"].(string); ok {
			return msg
		}
	case string:
		return e
	}
	return fmt.Sprint(v)
}
