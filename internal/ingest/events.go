package ingest

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/zonebalance-cli/internal/balance"
	"github.com/sells-group/zonebalance-cli/internal/projection"
)

// maxErrorSamples caps the number of row errors retained in a Report;
// rejects beyond the cap are still counted.
const maxErrorSamples = 20

// Expected column layout: hour, lat, lon, kind.
const wantFields = 4

// RowError describes one rejected CSV record.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Report summarizes one ingestion batch.
type Report struct {
	Accepted int        `json:"accepted"`
	Rejected int        `json:"rejected"`
	Errors   []RowError `json:"errors,omitempty"`
}

func (r *Report) reject(line int, msg string) {
	r.Rejected++
	if len(r.Errors) < maxErrorSamples {
		r.Errors = append(r.Errors, RowError{Line: line, Message: msg})
	}
}

// Options tune ingestion.
type Options struct {
	// RefLat anchors the projection. Zero means derive it from the
	// midpoint latitude of the batch.
	RefLat float64
}

// rawEvent is a validated record still in geographic coordinates.
type rawEvent struct {
	hour int
	lat  float64
	lon  float64
	kind balance.EventKind
}

// ReadEvents parses a CSV of `hour,lat,lon,kind` records into projected
// engine events. Malformed records are rejected and reported, never fatal;
// only reader-level failures (I/O, cancellation) abort the batch. The
// returned Projector is the one applied to the events, so exporters can
// invert it.
func ReadEvents(ctx context.Context, r io.Reader, opts Options) ([]balance.Event, projection.Projector, *Report, error) {
	report := &Report{}
	var raws []rawEvent

	rowCh, errCh := streamCSV(ctx, r)
	for rec := range rowCh {
		raw, msg := parseRecord(rec.fields)
		if msg != "" {
			report.reject(rec.line, msg)
			continue
		}
		raws = append(raws, raw)
	}
	if err := <-errCh; err != nil {
		return nil, projection.Projector{}, nil, err
	}

	proj := projection.New(refLatFor(raws, opts))
	events := make([]balance.Event, len(raws))
	for i, raw := range raws {
		x, y := proj.Project(raw.lon, raw.lat)
		events[i] = balance.Event{X: x, Y: y, Hour: raw.hour, Kind: raw.kind}
	}
	report.Accepted = len(events)

	if report.Rejected > 0 {
		zap.L().Warn("ingest: rejected malformed records",
			zap.Int("accepted", report.Accepted),
			zap.Int("rejected", report.Rejected),
		)
	}
	return events, proj, report, nil
}

// refLatFor picks the projection anchor: an explicit option wins, otherwise
// the midpoint latitude of the batch keeps the grid metric-true for any city.
func refLatFor(raws []rawEvent, opts Options) float64 {
	if opts.RefLat != 0 || len(raws) == 0 {
		return opts.RefLat
	}
	minLat, maxLat := raws[0].lat, raws[0].lat
	for _, raw := range raws[1:] {
		if raw.lat < minLat {
			minLat = raw.lat
		}
		if raw.lat > maxLat {
			maxLat = raw.lat
		}
	}
	return (minLat + maxLat) / 2
}

// parseRecord validates one record. It returns a non-empty message on
// rejection instead of an error: a bad row is data, not a failure.
func parseRecord(fields []string) (rawEvent, string) {
	if len(fields) != wantFields {
		return rawEvent{}, fmt.Sprintf("expected %d fields, got %d", wantFields, len(fields))
	}

	hour, err := strconv.Atoi(fields[0])
	if err != nil {
		return rawEvent{}, fmt.Sprintf("invalid hour %q", fields[0])
	}
	if hour < 0 || hour > 23 {
		return rawEvent{}, fmt.Sprintf("hour %d out of range [0,23]", hour)
	}

	lat, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return rawEvent{}, fmt.Sprintf("invalid latitude %q", fields[1])
	}
	if lat < -90 || lat > 90 {
		return rawEvent{}, fmt.Sprintf("latitude %g out of range [-90,90]", lat)
	}

	lon, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return rawEvent{}, fmt.Sprintf("invalid longitude %q", fields[2])
	}
	if lon < -180 || lon > 180 {
		return rawEvent{}, fmt.Sprintf("longitude %g out of range [-180,180]", lon)
	}

	kind, err := parseKind(fields[3])
	if err != nil {
		return rawEvent{}, err.Error()
	}

	return rawEvent{hour: hour, lat: lat, lon: lon, kind: kind}, ""
}

// parseKind maps the kind column to an EventKind.
func parseKind(s string) (balance.EventKind, error) {
	switch strings.ToLower(s) {
	case "supply":
		return balance.Supply, nil
	case "demand":
		return balance.Demand, nil
	default:
		return 0, eris.Errorf("unknown event kind %q", s)
	}
}
