package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EnvLogLevel log seviyesini ortam değişkeninden okumak için kullanılır.
const EnvLogLevel = "SLYDETRIM_LOG_LEVEL"

// Init global logger'ı yapılandırır.
// Seviye sırası: level parametresi > SLYDETRIM_LOG_LEVEL > info. verbose debug'a zorlar.
func Init(level string, verbose bool) {
	InitWriter(os.Stderr, level, verbose)
}

// InitWriter Init ile aynıdır, çıktıyı verilen writer'a yönlendirir.
// Etkileşimli editör logları ekrana değil dosyaya yazmak için kullanır.
func InitWriter(w io.Writer, level string, verbose bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	if strings.TrimSpace(level) == "" {
		level = os.Getenv(EnvLogLevel)
	}
	lvl := ParseLevel(level)
	if verbose {
		lvl = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(lvl)

	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
		NoColor:    !isTerminal(w),
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

// isTerminal renkli çıktının yalnızca terminale yazılması için kullanılır;
// log dosyasına ANSI kodu düşmez.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ParseLevel metin seviyeyi zerolog seviyesine çevirir; bilinmeyen değerler info olur.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// WithComponent component alanı eklenmiş bir logger döner.
func WithComponent(component string) zerolog.Logger {
	return log.Logger.With().Str("component", component).Logger()
}
