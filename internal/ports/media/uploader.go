package media

import (
	"context"
	"io"
	"strings"
)

// Kind es la clase de adjunto que maneja la app.
type Kind string

const (
	KindImage Kind = "image"
	KindFile  Kind = "file"
)

// KindFromContentType: image/* es imagen, todo lo demás archivo.
func KindFromContentType(ct string) Kind {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(ct)), "image/") {
		return KindImage
	}
	return KindFile
}

// Upload es el resultado de subir un archivo al host de media.
type Upload struct {
	URL         string
	ContentType string
	Kind        Kind
	Size        int64
}

// Uploader sube un archivo y devuelve la URL pública.
type Uploader interface {
	Upload(ctx context.Context, name string, r io.Reader) (Upload, error)
}
