package heatmap

import (
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"horse.fit/crimemap/internal/db"
)

const (
	DefaultOutFile = "heatmap.html"

	defaultCenterLat = -15.78
	defaultCenterLon = -47.93
	defaultZoom      = 3
)

// Options controls the rendered map viewport.
type Options struct {
	CenterLat float64
	CenterLon float64
	Zoom      int
}

var pageTemplate = template.Must(template.New("heatmap").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>crimemap heatmap</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<script src="https://unpkg.com/leaflet.heat@0.2.0/dist/leaflet-heat.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map('map').setView([{{.CenterLat}}, {{.CenterLon}}], {{.Zoom}});
L.tileLayer('https://tile.openstreetmap.org/{z}/{x}/{y}.png', {
  attribution: '&copy; OpenStreetMap contributors'
}).addTo(map);
var points = {{.Points}};
L.heatLayer(points, {radius: 18, blur: 14, maxZoom: 6}).addTo(map);
</script>
</body>
</html>
`))

type pageData struct {
	CenterLat float64
	CenterLon float64
	Zoom      int
	Points    template.JS
}

// Write renders the aggregated points as a self-contained Leaflet heatmap
// page and returns the written file path.
func Write(points []db.AggregatedPoint, outFile string, opts Options) (string, error) {
	if outFile == "" {
		outFile = DefaultOutFile
	}
	if opts.CenterLat == 0 && opts.CenterLon == 0 {
		opts.CenterLat = defaultCenterLat
		opts.CenterLon = defaultCenterLon
	}
	if opts.Zoom <= 0 {
		opts.Zoom = defaultZoom
	}

	triples := make([][3]float64, 0, len(points))
	for _, point := range points {
		triples = append(triples, [3]float64{point.Lat, point.Lon, float64(point.Count)})
	}
	encoded, err := json.Marshal(triples)
	if err != nil {
		return "", fmt.Errorf("encode heatmap points: %w", err)
	}

	file, err := os.Create(outFile)
	if err != nil {
		return "", fmt.Errorf("create heatmap file: %w", err)
	}
	defer file.Close()

	data := pageData{
		CenterLat: opts.CenterLat,
		CenterLon: opts.CenterLon,
		Zoom:      opts.Zoom,
		Points:    template.JS(encoded),
	}
	if err := pageTemplate.Execute(file, data); err != nil {
		return "", fmt.Errorf("render heatmap: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("flush heatmap file: %w", err)
	}

	abs, err := filepath.Abs(outFile)
	if err != nil {
		return outFile, nil
	}
	return abs, nil
}
