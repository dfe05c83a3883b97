package geo

import (
	"fmt"
	"strconv"
	"strings"
)

// Bounds is an axis-aligned lat/lng box, passed by clients as
// [north, west, south, east].
type Bounds struct {
	North float64 `json:"north"`
	West  float64 `json:"west"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
}

// FromSlice builds bounds out of the [north, west, south, east] wire format.
func FromSlice(values []float64) (Bounds, error) {
	if len(values) != 4 {
		return Bounds{}, fmt.Errorf("bounds need 4 values, got %d", len(values))
	}
	b := Bounds{North: values[0], West: values[1], South: values[2], East: values[3]}
	return b, b.Validate()
}

// Parse reads bounds from "north,west,south,east".
func Parse(raw string) (Bounds, error) {
	values, err := ParseValues(raw)
	if err != nil {
		return Bounds{}, err
	}
	return FromSlice(values)
}

// ParseValues splits "north,west,south,east" into numbers without checking
// them, so callers can report bad bounds along with their other fields.
func ParseValues(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid bounds value %q", strings.TrimSpace(part))
		}
		values = append(values, v)
	}
	return values, nil
}

func (b Bounds) Validate() error {
	if b.North < b.South {
		return fmt.Errorf("north (%v) is below south (%v)", b.North, b.South)
	}
	if b.East < b.West {
		return fmt.Errorf("east (%v) is west of west (%v)", b.East, b.West)
	}
	if b.North > 90 || b.South < -90 {
		return fmt.Errorf("latitude out of range")
	}
	if b.East > 180 || b.West < -180 {
		return fmt.Errorf("longitude out of range")
	}
	return nil
}

// Contains is an inclusive containment test.
func (b Bounds) Contains(lat, lng float64) bool {
	return lat <= b.North && lat >= b.South && lng >= b.West && lng <= b.East
}

// Slice returns the [north, west, south, east] wire format.
func (b Bounds) Slice() []float64 {
	return []float64{b.North, b.West, b.South, b.East}
}

// Polygon returns the closed ring of the box as (lng, lat) pairs, NW first.
func (b Bounds) Polygon() [][2]float64 {
	return [][2]float64{
		{b.West, b.North},
		{b.East, b.North},
		{b.East, b.South},
		{b.West, b.South},
		{b.West, b.North},
	}
}

// PolygonLiteral renders the ring in the Postgres polygon input syntax,
// e.g. ((-122.4,47.7),(-122.2,47.7),...).
func (b Bounds) PolygonLiteral() string {
	points := make([]string, 0, 5)
	for _, p := range b.Polygon() {
		points = append(points, "("+strconv.FormatFloat(p[0], 'f', -1, 64)+","+strconv.FormatFloat(p[1], 'f', -1, 64)+")")
	}
	return "(" + strings.Join(points, ",") + ")"
}

// UnmarshalText lets bounds be read from configuration strings.
func (b *Bounds) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
