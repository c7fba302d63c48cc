package thumbnail

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// SheetOptions kontak sayfasının düzenini belirler.
type SheetOptions struct {
	Title   string
	Columns int
}

const (
	sheetMargin = 12.0
	sheetGap    = 4.0
	titleHeight = 10.0
	labelOffset = 1.0
	labelHeight = 4.0
)

// sheetCell bir karenin sayfadaki yeridir. Page 1'den başlar.
type sheetCell struct {
	Page int
	X, Y float64
}

// layoutSheet kareleri sütunlara dizer ve sığmayan satırı bir sonraki sayfaya taşır.
// Başlık yalnızca ilk sayfada yer kaplar.
func layoutSheet(count, cols int, pageW, pageH float64, withTitle bool) (cellW, cellH float64, cells []sheetCell) {
	contentW := pageW - 2*sheetMargin
	cellW = (contentW - sheetGap*float64(cols-1)) / float64(cols)
	cellH = cellW * float64(DefaultHeight) / float64(DefaultWidth)
	rowH := cellH + labelOffset + labelHeight
	bottom := pageH - sheetMargin

	page := 1
	y := sheetMargin
	if withTitle {
		y += titleHeight
	}
	cells = make([]sheetCell, 0, count)
	for i := 0; i < count; i++ {
		col := i % cols
		if col == 0 && i > 0 {
			y += rowH + sheetGap + 1
			if y+rowH > bottom {
				page++
				y = sheetMargin
			}
		}
		cells = append(cells, sheetCell{
			Page: page,
			X:    sheetMargin + float64(col)*(cellW+sheetGap),
			Y:    y,
		})
	}
	return cellW, cellH, cells
}

// WriteContactSheet kareleri ızgara halinde PDF'e yazar; sayfaya sığmayan
// satırlar yeni sayfaya geçer. Alınamayan kareler gri kutu olarak çizilir.
func WriteContactSheet(path string, frames []Frame, opts SheetOptions) error {
	if len(frames) == 0 {
		return fmt.Errorf("kontak sayfası için kare yok")
	}
	cols := opts.Columns
	if cols <= 0 {
		cols = 5
	}

	p := gofpdf.New("L", "mm", "A4", "")
	p.SetMargins(sheetMargin, sheetMargin, sheetMargin)
	// Sayfalama layoutSheet'te yapılır; etiketler otomatik kırılmamalı.
	p.SetAutoPageBreak(false, sheetMargin)
	p.AddPage()

	pageW, pageH := p.GetPageSize()
	cellW, cellH, cells := layoutSheet(len(frames), cols, pageW, pageH, opts.Title != "")

	if opts.Title != "" {
		p.SetFont("Helvetica", "B", 14)
		p.CellFormat(pageW-2*sheetMargin, 8, asciiOnly(opts.Title), "", 1, "L", false, 0, "")
	}

	p.SetFont("Helvetica", "", 8)
	for i, f := range frames {
		cell := cells[i]
		for p.PageNo() < cell.Page {
			p.AddPage()
		}
		x, y := cell.X, cell.Y

		if f.Available() {
			var buf bytes.Buffer
			if err := png.Encode(&buf, f.Image); err != nil {
				return fmt.Errorf("kare kodlanamadı: %w", err)
			}
			name := fmt.Sprintf("frame-%d", i)
			opt := gofpdf.ImageOptions{ImageType: "PNG"}
			p.RegisterImageOptionsReader(name, opt, &buf)
			p.ImageOptions(name, x, y, cellW, cellH, false, opt, 0, "")
		} else {
			p.SetFillColor(71, 85, 105)
			p.Rect(x, y, cellW, cellH, "F")
			p.SetTextColor(226, 232, 240)
			p.SetXY(x, y+cellH/2-2)
			p.CellFormat(cellW, 4, "kare yok", "", 0, "C", false, 0, "")
		}

		p.SetTextColor(30, 41, 59)
		p.SetXY(x, y+cellH+labelOffset)
		p.CellFormat(cellW, labelHeight, fmt.Sprintf("#%d  %.2fs", f.Index+1, f.Time), "", 0, "C", false, 0, "")
	}

	if err := p.Error(); err != nil {
		return fmt.Errorf("pdf oluşturulamadı: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("çıktı dizini oluşturulamadı: %w", err)
	}
	return p.OutputFileAndClose(path)
}

// asciiOnly Türkçe harfleri Latin karşılıklarına çevirir, yerleşik PDF fontunun
// basamayacağı diğer karakterleri '?' yapar.
func asciiOnly(s string) string {
	s = strings.NewReplacer(
		"ç", "c", "Ç", "C",
		"ğ", "g", "Ğ", "G",
		"ı", "i", "İ", "I",
		"ö", "o", "Ö", "O",
		"ş", "s", "Ş", "S",
		"ü", "u", "Ü", "U",
	).Replace(s)
	out := []rune(s)
	for i, r := range out {
		if r > 126 {
			out[i] = '?'
		}
	}
	return string(out)
}
