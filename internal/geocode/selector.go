package geocode

import "context"

// Location is the representative place chosen for one document.
type Location struct {
	Lat   float64
	Lon   float64
	Label string
}

// Selector resolves a single representative location from ordered candidate
// names.
type Selector struct {
	geocoder Geocoder
}

func NewSelector(geocoder Geocoder) *Selector {
	return &Selector{geocoder: geocoder}
}

// Select geocodes candidates in order and returns the first that resolves.
func (s *Selector) Select(ctx context.Context, candidates []string) (Location, bool, error) {
	if s == nil || s.geocoder == nil {
		return Location{}, false, nil
	}

	for _, name := range candidates {
		coord, ok, err := s.geocoder.Geocode(ctx, name)
		if err != nil {
			return Location{}, false, err
		}
		if ok {
			return Location{Lat: coord.Lat, Lon: coord.Lon, Label: name}, true, nil
		}
	}
	return Location{}, false, nil
}
