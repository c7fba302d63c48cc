package timeline

import "math"

// Drag pointer hareketlerini aktif handle'ın setter'ına yönlendirir.
// Aynı anda yalnızca bir handle aktif olabilir.
type Drag struct {
	model  *Model
	width  float64
	active Handle
	on     bool
}

// NewDrag verilen track genişliği için drag controller oluşturur.
func NewDrag(model *Model, trackWidth float64) *Drag {
	d := &Drag{model: model}
	d.SetTrackWidth(trackWidth)
	return d
}

// SetTrackWidth pencere yeniden boyutlandığında track genişliğini günceller.
func (d *Drag) SetTrackWidth(width float64) {
	if math.IsNaN(width) || width < 0 {
		width = 0
	}
	d.width = width
}

// Active aktif handle'ı döner.
func (d *Drag) Active() (Handle, bool) {
	return d.active, d.on
}

// BeginDrag sürüklemeyi başlatır. Başka bir handle aktifse çağrı yok sayılır.
func (d *Drag) BeginDrag(h Handle) bool {
	if d.on {
		return false
	}
	switch h {
	case HandleStart, HandleEnd, HandlePlayhead:
	default:
		return false
	}
	d.active = h
	d.on = true
	return true
}

// UpdateDrag pointer konumunu zamana çevirip aktif handle'a uygular.
func (d *Drag) UpdateDrag(pointerX float64) {
	if !d.on || d.model == nil {
		return
	}
	t := d.model.TimeAt(pointerX, d.width)
	switch d.active {
	case HandleStart:
		d.model.SetTrimStart(t)
	case HandleEnd:
		d.model.SetTrimEnd(t)
	case HandlePlayhead:
		d.model.SetPlayhead(t)
	}
}

// EndDrag aktif handle'ı temizler; birden fazla çağrılması güvenlidir.
func (d *Drag) EndDrag() {
	d.on = false
}

// HandleAt pointer konumuna en yakın handle'ı döner.
// Start/End tolerans içindeyse öncelik onlardadır, aksi halde playhead seçilir.
func (d *Drag) HandleAt(pointerX float64, tolerance float64) Handle {
	if d.model == nil || d.width <= 0 {
		return HandlePlayhead
	}
	startX := d.model.PositionOf(d.model.Start(), d.width)
	endX := d.model.PositionOf(d.model.End(), d.width)
	ds := math.Abs(pointerX - startX)
	de := math.Abs(pointerX - endX)

	if ds <= tolerance || de <= tolerance {
		if ds < de {
			return HandleStart
		}
		if de < ds {
			return HandleEnd
		}
		// Handle'lar üst üste: pointer hangi taraftaysa o.
		if pointerX < startX {
			return HandleStart
		}
		return HandleEnd
	}
	return HandlePlayhead
}
