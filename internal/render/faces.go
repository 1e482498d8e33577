package render

import (
	"os"

	"github.com/golang/freetype/truetype"
	"go.uber.org/zap"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// FaceSizes are the point sizes per display region.
type FaceSizes struct {
	Artist float64
	Title  float64
	Label  float64
}

// Faces holds one font.Face per region.
type Faces struct {
	faces [numFonts]font.Face
}

// LoadFaces parses a TrueType font from disk and builds one face per
// region. Any failure falls back to the built-in 7x13 face so the daemon
// still comes up on a box without the font package installed.
func LoadFaces(path string, sizes FaceSizes, log *zap.Logger) *Faces {
	f := &Faces{}
	for i := range f.faces {
		f.faces[i] = basicfont.Face7x13
	}
	if path == "" {
		log.Info("no font configured, using built-in face")
		return f
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Error("font read failed, using built-in face", zap.String("path", path), zap.Error(err))
		return f
	}
	tt, err := truetype.Parse(data)
	if err != nil {
		log.Error("font parse failed, using built-in face", zap.String("path", path), zap.Error(err))
		return f
	}
	newFace := func(size float64) font.Face {
		return truetype.NewFace(tt, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull})
	}
	f.faces[FontArtist] = newFace(sizes.Artist)
	f.faces[FontTitle] = newFace(sizes.Title)
	f.faces[FontLabel] = newFace(sizes.Label)
	log.Info("font loaded", zap.String("path", path))
	return f
}

// Face returns the face for a region.
func (f *Faces) Face(id Font) font.Face {
	if id < 0 || id >= numFonts {
		return basicfont.Face7x13
	}
	return f.faces[id]
}
