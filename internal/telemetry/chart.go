// Signboard - Device, Group, Shop and Video Link Gateway
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/signboard

package telemetry

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Chart geometry, in SVG user units.
const (
	ChartWidth   = 640
	ChartHeight  = 260
	PadLeft      = 46
	PadRight     = 16
	PadTop       = 16
	PadBottom    = 34
	ValueTickNum = 4
	TimeTickNum  = 6
)

// Point is one telemetry sample.
type Point struct {
	T time.Time
	V float64
}

// PlotPoint is a sample with its chart coordinates.
type PlotPoint struct {
	T time.Time `json:"t"`
	V float64   `json:"v"`
	X float64   `json:"x"`
	Y float64   `json:"y"`
}

// ValueTick is a horizontal grid line.
type ValueTick struct {
	Value float64 `json:"value"`
	Y     float64 `json:"y"`
}

// TimeTick is a vertical grid line.
type TimeTick struct {
	Time time.Time `json:"time"`
	X    float64   `json:"x"`
}

// Stats summarizes the plotted samples.
type Stats struct {
	Count   int       `json:"count"`
	Min     float64   `json:"min"`
	Max     float64   `json:"max"`
	Average float64   `json:"average"`
	Current float64   `json:"current"`
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
}

// Padding is the inner margin of the chart.
type Padding struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Chart is render-ready line chart geometry.
type Chart struct {
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	Padding    Padding     `json:"padding"`
	TMin       time.Time   `json:"t_min"`
	TMax       time.Time   `json:"t_max"`
	YMin       float64     `json:"y_min"`
	YMax       float64     `json:"y_max"`
	Path       string      `json:"path"`
	Points     []PlotPoint `json:"points"`
	ValueTicks []ValueTick `json:"value_ticks"`
	TimeTicks  []TimeTick  `json:"time_ticks"`
	Stats      Stats       `json:"stats"`
}

// Clean drops points with a non-finite value or a zero time and returns
// the rest sorted by time. Equal timestamps keep their input order.
func Clean(points []Point) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if p.T.IsZero() || math.IsNaN(p.V) || math.IsInf(p.V, 0) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].T.Before(out[j].T) })
	return out
}

// Transform turns samples into chart geometry and statistics. ok is false
// when no usable sample remains.
func Transform(points []Point) (Chart, bool) {
	series := Clean(points)
	if len(series) == 0 {
		return Chart{}, false
	}

	tMin := series[0].T
	tMax := series[len(series)-1].T

	stats := Stats{
		Count:   len(series),
		Min:     series[0].V,
		Max:     series[0].V,
		Current: series[len(series)-1].V,
		From:    tMin,
		To:      tMax,
	}
	var sum float64
	for _, p := range series {
		sum += p.V
		stats.Min = math.Min(stats.Min, p.V)
		stats.Max = math.Max(stats.Max, p.V)
	}
	stats.Average = sum / float64(len(series))

	yMin, yMax := stats.Min, stats.Max
	if yMax == yMin {
		yMin--
		yMax++
	} else {
		pad := (yMax - yMin) * 0.1
		yMin -= pad
		yMax += pad
	}

	span := tMax.Sub(tMin)
	xScale := func(t time.Time) float64 {
		if span <= 0 {
			return PadLeft
		}
		return PadLeft + float64(t.Sub(tMin))/float64(span)*(ChartWidth-PadLeft-PadRight)
	}
	yScale := func(v float64) float64 {
		return PadTop + (yMax-v)/(yMax-yMin)*(ChartHeight-PadTop-PadBottom)
	}

	plotted := make([]PlotPoint, len(series))
	var path strings.Builder
	for i, p := range series {
		x, y := xScale(p.T), yScale(p.V)
		plotted[i] = PlotPoint{T: p.T, V: p.V, X: x, Y: y}
		if i == 0 {
			path.WriteString("M ")
		} else {
			path.WriteString(" L ")
		}
		path.WriteString(strconv.FormatFloat(x, 'f', 2, 64))
		path.WriteByte(' ')
		path.WriteString(strconv.FormatFloat(y, 'f', 2, 64))
	}

	valueTicks := make([]ValueTick, ValueTickNum)
	for i := range valueTicks {
		v := yMin + float64(i)*(yMax-yMin)/(ValueTickNum-1)
		valueTicks[i] = ValueTick{Value: v, Y: yScale(v)}
	}

	timeTicks := make([]TimeTick, TimeTickNum)
	for i := range timeTicks {
		t := tMin.Add(time.Duration(float64(span) * float64(i) / (TimeTickNum - 1)))
		timeTicks[i] = TimeTick{Time: t, X: xScale(t)}
	}

	return Chart{
		Width:      ChartWidth,
		Height:     ChartHeight,
		Padding:    Padding{Left: PadLeft, Right: PadRight, Top: PadTop, Bottom: PadBottom},
		TMin:       tMin,
		TMax:       tMax,
		YMin:       yMin,
		YMax:       yMax,
		Path:       path.String(),
		Points:     plotted,
		ValueTicks: valueTicks,
		TimeTicks:  timeTicks,
		Stats:      stats,
	}, true
}
