package asset

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var mp4Head = append([]byte{0, 0, 0, 0x18}, []byte("ftypisom0000")...)

func TestLoadDetectsFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, mp4Head, 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	a, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Name != "clip.mp4" || a.Format != "mp4" || a.Size() != int64(len(mp4Head)) {
		t.Fatalf("unexpected asset: %+v", a)
	}
}

func TestPreviewReleaseOnce(t *testing.T) {
	p, err := NewPreview(Asset{Name: "clip.mov", Format: "mov", Data: []byte("data")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Ext(p.Path()) != ".mov" {
		t.Fatalf("expected .mov preview, got %s", p.Path())
	}
	if _, err := os.Stat(p.Path()); err != nil {
		t.Fatalf("preview file missing: %v", err)
	}

	if err := p.Release(); err != nil {
		t.Fatalf("unexpected release error: %v", err)
	}
	if err := p.Release(); err != nil {
		t.Fatalf("second release must be a no-op: %v", err)
	}
	if !p.Released() {
		t.Fatalf("expected released preview")
	}
	if _, err := os.Stat(p.Path()); !os.IsNotExist(err) {
		t.Fatalf("expected preview file removed, got %v", err)
	}
}

func TestFetchHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/media/intro.mp4":
			w.Write(mp4Head)
		case "/media/empty.mp4":
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := &Fetcher{HTTPClient: srv.Client()}

	a, err := f.Fetch(context.Background(), srv.URL+"/media/intro.mp4?v=2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Name != "intro.mp4" || a.Format != "mp4" {
		t.Fatalf("unexpected asset: %+v", a)
	}

	_, err = f.Fetch(context.Background(), srv.URL+"/media/empty.mp4")
	var fe *FetchError
	if !errors.As(err, &fe) || !errors.Is(err, ErrEmptyPayload) {
		t.Fatalf("expected empty payload fetch error, got %v", err)
	}

	_, err = f.Fetch(context.Background(), srv.URL+"/missing.mp4")
	if !errors.As(err, &fe) {
		t.Fatalf("expected fetch error for 404, got %v", err)
	}
}

func TestFetchHTTPNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := (&Fetcher{}).Fetch(context.Background(), url+"/clip.mp4")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected fetch error, got %v", err)
	}
	if fe.Ref != url+"/clip.mp4" {
		t.Fatalf("unexpected ref: %s", fe.Ref)
	}
}

type fakeS3 struct {
	bucket, key string
	body        []byte
	err         error
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bucket, f.key = *in.Bucket, *in.Key
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(f.body))}, nil
}

func TestFetchS3(t *testing.T) {
	fake := &fakeS3{body: []byte("video")}
	f := &Fetcher{S3: fake}

	a, err := f.Fetch(context.Background(), "s3://slides/decks/42/hero.webm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.bucket != "slides" || fake.key != "decks/42/hero.webm" {
		t.Fatalf("unexpected object: %s/%s", fake.bucket, fake.key)
	}
	if a.Name != "hero.webm" || a.Format != "webm" || string(a.Data) != "video" {
		t.Fatalf("unexpected asset: %+v", a)
	}
}

func TestFetchS3Errors(t *testing.T) {
	f := &Fetcher{S3: &fakeS3{err: errors.New("access denied")}}
	if _, err := f.Fetch(context.Background(), "s3://slides/a.mp4"); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := f.Fetch(context.Background(), "s3://slides"); err == nil {
		t.Fatalf("expected error for missing key")
	}
}

func TestFetchS3RetriesClientSetupAfterFailure(t *testing.T) {
	fake := &fakeS3{body: []byte("video")}
	calls := 0
	f := &Fetcher{newS3: func(ctx context.Context) (ObjectGetter, error) {
		calls++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return fake, nil
	}}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Fetch(cancelled, "s3://slides/hero.mp4"); err == nil {
		t.Fatalf("expected error for cancelled context")
	}

	a, err := f.Fetch(context.Background(), "s3://slides/hero.mp4")
	if err != nil {
		t.Fatalf("second fetch must rebuild the client: %v", err)
	}
	if string(a.Data) != "video" || calls != 2 {
		t.Fatalf("unexpected result: %+v after %d client builds", a, calls)
	}

	if _, err := f.Fetch(context.Background(), "s3://slides/hero.mp4"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("client must be cached after success, built %d times", calls)
	}
}

func TestFetchLocalMissing(t *testing.T) {
	_, err := Fetch(context.Background(), filepath.Join(t.TempDir(), "none.mp4"))
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}
