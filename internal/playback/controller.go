package playback

import (
	"github.com/mlihgenel/slydetrim/internal/timeline"
)

// Player oynatma yüzeyini soyutlar.
type Player interface {
	CurrentTime() float64
	Seek(t float64)
	Play()
	Pause()
	Playing() bool
}

// Controller oynatıcı zamanını timeline playhead'ine yansıtır ve
// oynatmayı seçili aralık içinde döngüye sokar.
type Controller struct {
	model  *timeline.Model
	player Player
}

// NewController yeni bir controller oluşturur.
func NewController(model *timeline.Model, player Player) *Controller {
	return &Controller{model: model, player: player}
}

// Tick her zaman güncellemesinde çağrılır.
func (c *Controller) Tick() {
	t := c.player.CurrentTime()
	c.model.SetPlayhead(t)
	if c.player.Playing() && t >= c.model.End() {
		c.player.Seek(c.model.Start())
		c.model.SetPlayhead(c.model.Start())
	}
}

// Play konum seçimin gerisindeyse başa sarar ve oynatır.
func (c *Controller) Play() {
	if c.player.CurrentTime() < c.model.Start() {
		c.player.Seek(c.model.Start())
		c.model.SetPlayhead(c.model.Start())
	}
	c.player.Play()
}

// Pause konumu değiştirmeden durdurur.
func (c *Controller) Pause() {
	c.player.Pause()
}

// Toggle oynatma durumunu tersine çevirir.
func (c *Controller) Toggle() {
	if c.player.Playing() {
		c.Pause()
		return
	}
	c.Play()
}

// Playing oynatıcının çalıp çalmadığını döner.
func (c *Controller) Playing() bool { return c.player.Playing() }

// SeekTo oynatıcıyı ve playhead'i verilen zamana taşır.
func (c *Controller) SeekTo(t float64) {
	c.model.SetPlayhead(t)
	c.player.Seek(c.model.Playhead())
}
