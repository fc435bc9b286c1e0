package layout

import (
	"errors"
	"fmt"
	"image"
	"time"

	"scrollcal/internal/geom"
	"scrollcal/internal/render"
	"scrollcal/internal/text"
)

// Fonts has one font per text role.
type Fonts struct {
	DayHeader text.Font
	Time      text.Font
	EndTime   text.Font
	Event     text.Font
	Info      text.Font
}

// Setup is everything a render needs besides the calendar itself.
type Setup struct {
	Shaper text.Shaper
	Fonts  Fonts

	// Branch is printed in the footer next to the render time.
	Branch string

	// Template and DayHeaderTemplate are already scaled to the viewport
	// width.
	Template          render.Renderable
	DayHeaderTemplate render.Renderable

	// HeaderMargin is the blank space left between a day header and the
	// event list below it.
	HeaderMargin float64

	// Now decides which events are drawn as ended and is printed in the
	// footer.
	Now      time.Time
	Location *time.Location
}

// NewSetup scales both templates so the background fills the viewport
// width. The day header template is scaled by the same factor.
func NewSetup(template, dayHeader image.Image, sh text.Shaper, fonts Fonts, branch string, now time.Time, loc *time.Location) (*Setup, error) {
	if sh == nil {
		return nil, errors.New("layout: shaper is nil")
	}
	if loc == nil {
		loc = time.Local
	}
	tw := template.Bounds().Dx()
	if tw <= 0 {
		return nil, errors.New("layout: template is empty")
	}
	if dayHeader.Bounds().Dx() <= 0 || dayHeader.Bounds().Dy() <= 0 {
		return nil, errors.New("layout: day header template is empty")
	}
	scale := float64(ViewportWidth) / float64(tw)

	tmpl := render.ScaleBy(render.NewImage(template), scale, scale)
	if h := tmpl.Bounds().H; h < VariableBottom {
		return nil, fmt.Errorf("layout: template is %v px tall after scaling, need at least %v", h, VariableBottom)
	}
	if branch == "" {
		branch = "DEVEL"
	}
	return &Setup{
		Shaper:            sh,
		Fonts:             fonts,
		Branch:            branch,
		Template:          tmpl,
		DayHeaderTemplate: render.ScaleBy(render.NewImage(dayHeader), scale, scale),
		HeaderMargin:      16,
		Now:               now,
		Location:          loc,
	}, nil
}

func (s *Setup) textBox(str string, wrapWidth float64, c geom.RGB, f text.Font, maxLines int) (*render.TextBox, error) {
	return render.NewTextBox(s.Shaper, str, wrapWidth, c, f, maxLines)
}
