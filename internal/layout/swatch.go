package layout

import (
	"scrollcal/internal/geom"
	"scrollcal/internal/render"
)

const SwatchSize = 32.0

// Swatches paints colors as SwatchSize squares, two per row.
type Swatches []geom.RGB

// ColorArray is the swatch set the firmware samples for its color lookup,
// indexed by column then selector.
func ColorArray() Swatches {
	return Swatches{
		RGBTimeEnded,
		RGBTimeDash,
		RGBTime,
		RGBTextEnded,
		RGBDate,
		RGBText,
		RGBEventMarker,
		geom.Magenta,
	}
}

func (sw Swatches) Bounds() geom.Size {
	return geom.Size{W: SwatchSize * 2, H: float64((len(sw)+1)/2) * SwatchSize}
}

func (sw Swatches) Paint(s *render.Surface) error {
	for i, c := range sw {
		s.FillRect(geom.R(SwatchSize*float64(i&1), SwatchSize*float64(i>>1), SwatchSize, SwatchSize), c)
	}
	return nil
}
