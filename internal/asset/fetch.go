package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mlihgenel/slydetrim/internal/logging"
	"github.com/mlihgenel/slydetrim/internal/media"
)

// ErrEmptyPayload kaynak erişilebilir ama içerik boş olduğunda döner.
var ErrEmptyPayload = errors.New("boş içerik")

// FetchError daha önce yayınlanmış bir asset'in getirilemediğini bildirir.
// Kullanıcıya kapatılabilir bir mesaj olarak gösterilir.
type FetchError struct {
	Ref string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("asset getirilemedi (%s): %v", e.Ref, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ObjectGetter S3 GetObject çağrısını soyutlar.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Fetcher yerel yol, http(s) ve s3:// referanslarını çözer.
type Fetcher struct {
	HTTPClient *http.Client
	S3         ObjectGetter

	// newS3 S3 istemcisini oluşturur; nil ise AWS varsayılan yapılandırması kullanılır.
	newS3 func(ctx context.Context) (ObjectGetter, error)

	mu sync.Mutex
}

var defaultFetcher = &Fetcher{}


// Fetch varsayılan fetcher ile referansı getirir.
func Fetch(ctx context.Context, ref string) (Asset, error) {
	return defaultFetcher.Fetch(ctx, ref)
}

// Fetch referansı türüne göre getirir. Tüm hatalar *FetchError olarak döner.
func (f *Fetcher) Fetch(ctx context.Context, ref string) (Asset, error) {
	ref = strings.TrimSpace(ref)
	var (
		a   Asset
		err error
	)
	switch {
	case strings.HasPrefix(ref, "s3://"):
		a, err = f.fetchS3(ctx, ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		a, err = f.fetchHTTP(ctx, ref)
	default:
		a, err = Load(ref)
	}
	if err == nil && a.Empty() {
		err = ErrEmptyPayload
	}
	if err != nil {
		logger := logging.WithComponent("asset")
		logger.Debug().Str("ref", ref).Err(err).Msg("asset fetch failed")
		return Asset{}, &FetchError{Ref: ref, Err: err}
	}
	return a, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, ref string) (Asset, error) {
	client := f.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Minute}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return Asset{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return Asset{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Asset{}, fmt.Errorf("http durum kodu %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Asset{}, fmt.Errorf("indirme: %w", err)
	}

	name := nameFromRef(ref)
	format := media.NormalizeFormat(path.Ext(name))
	if sniffed := media.SniffFormat(head(data)); sniffed != "" && !media.IsVideoFormat(format) {
		format = sniffed
	}
	return Asset{Name: name, Format: format, Data: data}, nil
}

func (f *Fetcher) fetchS3(ctx context.Context, ref string) (Asset, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return Asset{}, err
	}
	bucket := u.Host
	key := strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return Asset{}, fmt.Errorf("geçersiz s3 referansı: %s", ref)
	}

	client, err := f.s3Client(ctx)
	if err != nil {
		return Asset{}, err
	}

	logger := logging.WithComponent("asset")
	logger.Debug().Str("bucket", bucket).Str("key", key).Msg("s3 download")
	result, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	})
	if err != nil {
		return Asset{}, fmt.Errorf("S3 GetObject: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return Asset{}, fmt.Errorf("indirme: %w", err)
	}
	name := path.Base(key)
	return Asset{Name: name, Format: media.NormalizeFormat(path.Ext(name)), Data: data}, nil
}

// s3Client istemciyi ilk başarılı oluşturmada saklar. Başarısız yükleme
// saklanmaz; sonraki çağrı yeniden dener.
func (f *Fetcher) s3Client(ctx context.Context) (ObjectGetter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.S3 != nil {
		return f.S3, nil
	}
	build := f.newS3
	if build == nil {
		build = defaultS3Client
	}
	client, err := build(ctx)
	if err != nil {
		return nil, err
	}
	f.S3 = client
	return client, nil
}

func defaultS3Client(ctx context.Context) (ObjectGetter, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("aws yapılandırması yüklenemedi: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

func head(data []byte) []byte {
	if len(data) > 64 {
		return data[:64]
	}
	return data
}
