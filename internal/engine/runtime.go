package engine

import "context"

// Runtime gömülü kırpma motorunu soyutlar. Dosya adları motorun
// özel çalışma alanına görelidir. Oturum dışına hiçbir zaman açılmaz.
type Runtime interface {
	Init(ctx context.Context) error
	WriteFile(name string, data []byte) error
	ReadFile(name string) ([]byte, error)
	DeleteFile(name string) error
	Exec(ctx context.Context, args []string, onProgress func(elapsed float64)) error
	Terminate() error
}
