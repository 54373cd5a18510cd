// Package avatar stores profile pictures: random filenames, bounded
// dimensions, one fixed directory.
package avatar

import (
	"crypto/rand"
	"encoding/hex"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"github.com/quillboard/quillboard/internal/apperror"
	"github.com/quillboard/quillboard/internal/models"
)

// MaxDim bounds the larger dimension of a stored avatar.
const MaxDim = 125

type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string { return s.dir }

// Save decodes the upload, downscales it so neither dimension exceeds
// MaxDim (aspect preserved, never upscaled), and writes it under a random
// hex filename keeping the original extension.
func (s *Store) Save(r io.Reader, origName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(origName))
	switch ext {
	case ".jpg", ".jpeg", ".png":
	default:
		return "", apperror.New(apperror.Validation, "unsupported image type")
	}

	src, _, err := image.Decode(r)
	if err != nil {
		return "", apperror.Wrap(apperror.Validation, "decode image", err)
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	name := hex.EncodeToString(buf[:]) + ext

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}

	img := shrink(src)
	switch ext {
	case ".png":
		err = png.Encode(f, img)
	default:
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 85})
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		return "", err
	}
	return name, nil
}

// Remove deletes a previously stored avatar. The default avatar and
// already-missing files are left alone.
func (s *Store) Remove(name string) {
	if name == "" || name == models.DefaultAvatar {
		return
	}
	_ = os.Remove(filepath.Join(s.dir, filepath.Base(name)))
}

func shrink(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= MaxDim && h <= MaxDim {
		return src
	}
	scale := float64(MaxDim) / float64(w)
	if h > w {
		scale = float64(MaxDim) / float64(h)
	}
	nw := max(1, int(float64(w)*scale+0.5))
	nh := max(1, int(float64(h)*scale+0.5))
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
