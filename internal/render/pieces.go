package render

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

//go:embed assets/pieces/*.svg
var pieceFiles embed.FS

type pieceKey struct {
	letter byte
	size   int
}

var (
	pieceCache   = map[pieceKey]image.Image{}
	pieceCacheMu sync.RWMutex
)

// pieceImage rasterises the piece for a FEN letter at size x size pixels.
func pieceImage(letter byte, size int) (image.Image, error) {
	key := pieceKey{letter: letter, size: size}
	pieceCacheMu.RLock()
	img, ok := pieceCache[key]
	pieceCacheMu.RUnlock()
	if ok {
		return img, nil
	}

	name, err := pieceAsset(letter)
	if err != nil {
		return nil, err
	}
	data, err := pieceFiles.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read piece asset %s: %w", name, err)
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(sanitizeSVG(data)))
	if err != nil {
		return nil, fmt.Errorf("parse piece svg %s: %w", name, err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)
	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1.0)

	pieceCacheMu.Lock()
	pieceCache[key] = rgba
	pieceCacheMu.Unlock()
	return rgba, nil
}

func pieceAsset(letter byte) (string, error) {
	prefix := "w"
	upper := letter
	if letter >= 'a' && letter <= 'z' {
		prefix = "b"
		upper = letter - 'a' + 'A'
	}
	switch upper {
	case 'P', 'N', 'B', 'R', 'Q', 'K':
		return fmt.Sprintf("assets/pieces/%s%c.svg", prefix, upper), nil
	}
	return "", fmt.Errorf("unknown piece letter %q", letter)
}
