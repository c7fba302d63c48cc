package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	xdraw "golang.org/x/image/draw"

	"github.com/mlihgenel/slydetrim/internal/logging"
)

const (
	DefaultCount  = 10
	DefaultWidth  = 160
	DefaultHeight = 90
)

// ErrBusy aynı sampler üzerinde örnekleme sürerken yeni çağrı yapıldığında döner.
var ErrBusy = errors.New("thumbnail örnekleme zaten çalışıyor")

// Surface tek tüketicili bir video çözücü yüzeyidir.
// Aynı anda yalnızca bir seek/capture işlemi yapılabilir.
type Surface interface {
	Seek(ctx context.Context, t float64) error
	Capture(ctx context.Context) (image.Image, error)
}

// Frame tek bir önizleme karesidir. Err doluysa kare alınamamıştır
// ve yerine placeholder gösterilir.
type Frame struct {
	Index int
	Time  float64
	Image image.Image
	Err   error
}

// Available karenin başarıyla alınıp alınmadığını döner.
func (f Frame) Available() bool { return f.Err == nil && f.Image != nil }

// placeholderColor kare alınamadığında kullanılan nötr gri
var placeholderColor = color.RGBA{R: 0x47, G: 0x55, B: 0x69, A: 0xff}

// Color karenin ortalama rengini döner; placeholder için nötr gri.
func (f Frame) Color() color.RGBA {
	if !f.Available() {
		return placeholderColor
	}
	b := f.Image.Bounds()
	if b.Empty() {
		return placeholderColor
	}

	// Büyük karelerde her pikseli gezmemek için adım kullan.
	step := int(math.Max(1, math.Sqrt(float64(b.Dx()*b.Dy())/1024)))
	var r, g, bl, n uint64
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			cr, cg, cb, _ := f.Image.At(x, y).RGBA()
			r += uint64(cr >> 8)
			g += uint64(cg >> 8)
			bl += uint64(cb >> 8)
			n++
		}
	}
	return color.RGBA{R: uint8(r / n), G: uint8(g / n), B: uint8(bl / n), A: 0xff}
}

// Sampler bir surface'ten eşit aralıklı önizleme kareleri toplar.
type Sampler struct {
	Count  int
	Width  int
	Height int

	surface Surface
	mu      sync.Mutex
}

// NewSampler varsayılan ayarlarla sampler oluşturur.
func NewSampler(surface Surface) *Sampler {
	return &Sampler{
		Count:   DefaultCount,
		Width:   DefaultWidth,
		Height:  DefaultHeight,
		surface: surface,
	}
}

// Timestamps duration için örnekleme zamanlarını döner: i * duration / n.
func Timestamps(duration float64, n int) []float64 {
	if n <= 0 {
		n = DefaultCount
	}
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration < 0 {
		duration = 0
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) * duration / float64(n)
	}
	return out
}

// Sample kareleri sırayla alır. Dönen küme her zaman Count elemanlıdır;
// alınamayan kareler placeholder olur. Surface konumu her yolda 0'a döner.
func (s *Sampler) Sample(ctx context.Context, duration float64) ([]Frame, error) {
	if !s.mu.TryLock() {
		return nil, ErrBusy
	}
	defer s.mu.Unlock()

	if s.surface == nil {
		return nil, fmt.Errorf("thumbnail surface tanımlı değil")
	}

	logger := logging.WithComponent("thumbnail")
	defer func() {
		if err := s.surface.Seek(context.WithoutCancel(ctx), 0); err != nil {
			logger.Debug().Err(err).Msg("surface position restore failed")
		}
	}()

	times := Timestamps(duration, s.Count)
	frames := make([]Frame, len(times))
	failed := 0
	for i, t := range times {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frames[i] = s.capture(ctx, i, t)
		if !frames[i].Available() {
			failed++
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger.Debug().Int("frames", len(frames)).Int("failed", failed).Msg("thumbnails sampled")
	return frames, nil
}

func (s *Sampler) capture(ctx context.Context, index int, t float64) Frame {
	frame := Frame{Index: index, Time: t}
	if err := s.surface.Seek(ctx, t); err != nil {
		frame.Err = fmt.Errorf("seek %.2fs: %w", t, err)
		return frame
	}
	img, err := s.surface.Capture(ctx)
	if err != nil {
		frame.Err = fmt.Errorf("capture %.2fs: %w", t, err)
		return frame
	}
	if img == nil || img.Bounds().Empty() {
		frame.Err = fmt.Errorf("capture %.2fs: boş kare", t)
		return frame
	}
	frame.Image = fitToRaster(img, s.Width, s.Height)
	return frame
}

// fitToRaster görüntüyü en-boy oranını koruyarak sabit rastere sığdırır.
func fitToRaster(src image.Image, width, height int) image.Image {
	if width < 1 {
		width = DefaultWidth
	}
	if height < 1 {
		height = DefaultHeight
	}
	sb := src.Bounds()
	w, h := containSize(sb.Dx(), sb.Dy(), width, height)

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, xdraw.Src)

	offsetX := (width - w) / 2
	offsetY := (height - h) / 2
	dstRect := image.Rect(offsetX, offsetY, offsetX+w, offsetY+h)
	xdraw.ApproxBiLinear.Scale(canvas, dstRect, src, sb, xdraw.Over, nil)
	return canvas
}

func containSize(srcWidth, srcHeight, targetWidth, targetHeight int) (int, int) {
	scale := math.Min(float64(targetWidth)/float64(srcWidth), float64(targetHeight)/float64(srcHeight))
	w := int(math.Round(float64(srcWidth) * scale))
	h := int(math.Round(float64(srcHeight) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
