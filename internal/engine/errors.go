package engine

import (
	"errors"
	"fmt"
)

// Kind motor hatasının türünü belirtir.
type Kind int

const (
	KindInitTimeout Kind = iota + 1
	KindInitFetch
	KindInitAborted
	KindExecution
)

func (k Kind) String() string {
	switch k {
	case KindInitTimeout:
		return "init-timeout"
	case KindInitFetch:
		return "init-fetch"
	case KindInitAborted:
		return "init-aborted"
	case KindExecution:
		return "execution"
	default:
		return "unknown"
	}
}

var (
	// ErrNotReady oturum hazır değilken iş gönderildiğinde döner.
	ErrNotReady = errors.New("motor hazır değil")
	// ErrBusy oturum başka bir işi yürütürken döner.
	ErrBusy = errors.New("motor meşgul")
	// ErrClosed kapatılmış oturum kullanıldığında döner.
	ErrClosed = errors.New("motor kapatıldı")
)

// Error runtime hatalarının oturum sınırında dönüştürüldüğü tiptir.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindInitTimeout:
		msg = "motor zaman aşımına uğradı"
	case KindInitFetch:
		msg = "motor yüklenemedi"
	case KindInitAborted:
		msg = "motor yuklemesi iptal edildi"
	case KindExecution:
		msg = "kırpma başarısız"
	default:
		msg = "motor hatası"
	}
	if e.Op != "" {
		msg += " (" + e.Op + ")"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind hata zincirinde verilen türde bir *Error olup olmadığını kontrol eder.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// IsInitError yükleme aşamasında oluşan hataları tanır. Bu hatalarda Retry anlamlıdır.
func IsInitError(err error) bool {
	return IsKind(err, KindInitTimeout) || IsKind(err, KindInitFetch) || IsKind(err, KindInitAborted)
}
