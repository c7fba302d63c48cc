package asset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mlihgenel/slydetrim/internal/media"
)

// Asset kırpılacak veya kırpılmış bir medya dosyasını bellekte tutar.
type Asset struct {
	Name   string
	Format string
	Data   []byte
}

// Size içerik boyutunu bayt olarak döner.
func (a Asset) Size() int64 { return int64(len(a.Data)) }

// Empty içerik yoksa true döner.
func (a Asset) Empty() bool { return len(a.Data) == 0 }

// Load yerel dosyayı okuyup Asset'e çevirir.
func Load(path string) (Asset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Asset{}, fmt.Errorf("dosya okunamadı: %w", err)
	}
	return Asset{
		Name:   filepath.Base(path),
		Format: media.DetectFormat(path),
		Data:   data,
	}, nil
}

// Save asset'i verilen yola yazar, gerekirse dizini oluşturur.
func (a Asset) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("çıktı dizini oluşturulamadı: %w", err)
	}
	if err := os.WriteFile(path, a.Data, 0644); err != nil {
		return fmt.Errorf("çıktı yazılamadı: %w", err)
	}
	return nil
}

// Preview kaynak içeriğin oynatılabilir geçici kopyasıdır.
// Thumbnail surface'i ve önizleme bu dosya üzerinden çalışır.
type Preview struct {
	path    string
	once    sync.Once
	mu      sync.Mutex
	release error
	done    bool
}

// NewPreview asset içeriğini geçici bir dosyaya yazar.
func NewPreview(a Asset) (*Preview, error) {
	ext := ""
	if f := media.NormalizeFormat(a.Format); f != "" {
		ext = "." + f
	}
	f, err := os.CreateTemp("", "slydetrim-preview-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("önizleme dosyası oluşturulamadı: %w", err)
	}
	if _, err := f.Write(a.Data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("önizleme yazılamadı: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, err
	}
	return &Preview{path: f.Name()}, nil
}

// Path önizleme dosyasının yolunu döner.
func (p *Preview) Path() string { return p.path }

// Release geçici dosyayı siler. Yalnızca ilk çağrı etkilidir.
func (p *Preview) Release() error {
	p.once.Do(func() {
		err := os.Remove(p.path)
		if err != nil && os.IsNotExist(err) {
			err = nil
		}
		p.mu.Lock()
		p.release = err
		p.done = true
		p.mu.Unlock()
	})
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.release
}

// Released önizlemenin serbest bırakılıp bırakılmadığını döner.
func (p *Preview) Released() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

func nameFromRef(ref string) string {
	ref = strings.TrimRight(ref, "/")
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}
