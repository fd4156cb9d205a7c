// Package catalog contiene las reglas de dominio de las rutas de fotos en el storage.
//
// Un public_id tiene la forma {slug}/{DD-MM-YY}/{carpeta}/{productID}/{archivo}, donde carpeta
// es "products" para productos activos e "inactive" para inactivos. La fecha es la de la última
// operación que movió la foto, no la de creación del producto.
package catalog

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/raposo-pdv/pdv-api/internal/domain/entity"
)

// Folder segmento de status dentro del public_id.
type Folder string

const (
	FolderActive   Folder = "products"
	FolderInactive Folder = "inactive"
)

// DateLayout formato DD-MM-YY de la carpeta de fecha.
const DateLayout = "02-01-06"

// FolderFor devuelve la carpeta correspondiente al status del producto.
func FolderFor(status entity.ProductStatus) (Folder, error) {
	switch status {
	case entity.ProductActive:
		return FolderActive, nil
	case entity.ProductInactive:
		return FolderInactive, nil
	}
	return "", fmt.Errorf("status %q no tiene carpeta de fotos", status)
}

// DateFolder formatea la fecha de la operación.
func DateFolder(t time.Time) string {
	return t.Format(DateLayout)
}

// Dir devuelve {slug}/{fecha}/{carpeta}/{productID}.
func Dir(slug string, at time.Time, folder Folder, productID int64) string {
	return path.Join(slug, DateFolder(at), string(folder), strconv.FormatInt(productID, 10))
}

// PublicID construye el public_id completo para un archivo.
func PublicID(slug string, at time.Time, folder Folder, productID int64, filename string) string {
	return Dir(slug, at, folder, productID) + "/" + filename
}

// Filename devuelve el último segmento del public_id.
func Filename(publicID string) string {
	if i := strings.LastIndex(publicID, "/"); i >= 0 {
		return publicID[i+1:]
	}
	return publicID
}

// FolderOf devuelve el segmento de status del public_id (antepenúltimo), o "" si no tiene la forma esperada.
func FolderOf(publicID string) Folder {
	parts := strings.Split(publicID, "/")
	if len(parts) < 3 {
		return ""
	}
	return Folder(parts[len(parts)-3])
}

// InFolder indica si la foto está bajo la carpeta dada.
func InFolder(publicID string, folder Folder) bool {
	return FolderOf(publicID) == folder
}

// Relocate devuelve el public_id destino al mover la foto a la carpeta indicada en la fecha at,
// preservando el nombre de archivo.
func Relocate(publicID, slug string, at time.Time, folder Folder, productID int64) string {
	return PublicID(slug, at, folder, productID, Filename(publicID))
}

// Managed indica si el public_id está bajo el namespace de la empresa con la forma esperada.
// Fotos importadas con public_id externo no se mueven.
func Managed(publicID, slug string) bool {
	if !strings.HasPrefix(publicID, slug+"/") {
		return false
	}
	f := FolderOf(publicID)
	return f == FolderActive || f == FolderInactive
}
