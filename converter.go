package tgsession

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/MrEthical07/tgsession/dc"
	"github.com/MrEthical07/tgsession/extract"
	"github.com/MrEthical07/tgsession/session"
	"github.com/MrEthical07/tgsession/tdata"
)

// Converter detects session formats and converts sessions into the canonical
// layout. Create it with [Builder.Build].
type Converter struct {
	config   Config
	log      zerolog.Logger
	resolver dc.Resolver
	probe    tdata.Probe
	exists   func(string) bool

	store   *session.Store
	audit   *auditDispatcher
	metrics *Metrics
}

// Close flushes pending audit events and stops the dispatcher.
func (c *Converter) Close() {
	if c == nil {
		return
	}
	if c.audit != nil {
		c.audit.Close()
	}
}

// AuditDropped returns how many audit events were dropped.
func (c *Converter) AuditDropped() uint64 {
	if c == nil || c.audit == nil {
		return 0
	}
	return c.audit.Dropped()
}

// MetricsSnapshot returns a copy of the converter metrics.
func (c *Converter) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

// Config returns a copy of the configuration the Converter was built with.
func (c *Converter) Config() Config {
	if c == nil {
		return Config{}
	}
	return c.config
}

// Detect reports the format of input, which is either a path or a string
// session. It never fails: anything unrecognized is FormatUnknown.
func (c *Converter) Detect(ctx context.Context, input string) Format {
	return c.Inspect(ctx, input).Format
}

// Inspect is Detect with the per-attempt outcomes.
func (c *Converter) Inspect(ctx context.Context, input string) Report {
	if c == nil {
		return Report{Format: FormatUnknown}
	}
	rep, _ := c.inspect(ctx, input)
	c.recordDetection(ctx, input, rep)
	return rep
}

// Convert detects the format of input and converts it.
func (c *Converter) Convert(ctx context.Context, input string) ([]byte, error) {
	_, out, err := c.ConvertFormat(ctx, input)
	return out, err
}

// ConvertFormat is Convert that also returns the detected format.
func (c *Converter) ConvertFormat(ctx context.Context, input string) (Format, []byte, error) {
	if c == nil {
		return FormatUnknown, nil, ErrConverterNotReady
	}
	start := time.Now()

	rep, out := c.inspect(ctx, input)
	c.recordDetection(ctx, input, rep)

	var err error
	switch {
	case rep.Format == FormatUnknown:
		err = fmt.Errorf("%w: no format matched", ErrUnsupportedFormat)
	case out == nil:
		out, err = c.convertAs(ctx, rep.Format, rep.Source, input)
	}

	c.recordConversion(ctx, input, rep.Source, rep.Format, start, err)
	if err != nil {
		return rep.Format, nil, err
	}
	return rep.Format, out, nil
}

// ConvertTelethon converts input as a Telethon file or string session.
func (c *Converter) ConvertTelethon(ctx context.Context, input string) ([]byte, error) {
	return c.convertDirect(ctx, FormatTelethon, input)
}

// ConvertPyrogram converts input as a Pyrogram file or string session.
func (c *Converter) ConvertPyrogram(ctx context.Context, input string) ([]byte, error) {
	return c.convertDirect(ctx, FormatPyrogram, input)
}

// ConvertTData converts the first account of the tdata container at root.
func (c *Converter) ConvertTData(ctx context.Context, root string) ([]byte, error) {
	return c.convertDirect(ctx, FormatTData, root)
}

// Extract reads the session record of input as format f without serializing
// it. The record holds key material; callers must not log it.
func (c *Converter) Extract(ctx context.Context, f Format, input string) (*session.Record, error) {
	if c == nil {
		return nil, ErrConverterNotReady
	}
	kind := SourceString
	if c.isFile(input) {
		kind = SourceFile
	}
	return c.extract(ctx, f, kind, input)
}

func (c *Converter) convertDirect(ctx context.Context, f Format, input string) ([]byte, error) {
	if c == nil {
		return nil, ErrConverterNotReady
	}
	start := time.Now()

	kind := SourceString
	if c.isFile(input) {
		kind = SourceFile
	}
	out, err := c.convertAs(ctx, f, kind, input)

	c.recordConversion(ctx, input, kind, f, start, err)
	return out, err
}

func (c *Converter) convertAs(ctx context.Context, f Format, kind SourceKind, input string) ([]byte, error) {
	return serialize(c.extract(ctx, f, kind, input))
}

func (c *Converter) extract(ctx context.Context, f Format, kind SourceKind, input string) (*session.Record, error) {
	switch {
	case f == FormatTData:
		return extract.TData(c.probe, c.resolver, input)
	case f == FormatTelethon && kind == SourceFile:
		return extract.TelethonFile(ctx, input)
	case f == FormatTelethon:
		return extract.TelethonString(input)
	case f == FormatPyrogram && kind == SourceFile:
		return extract.PyrogramFile(ctx, input, c.resolver)
	case f == FormatPyrogram:
		return extract.PyrogramString(input, c.resolver)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
}

// ConvertAndStore converts input and saves the canonical bytes in the Redis
// sink under a new id.
func (c *Converter) ConvertAndStore(ctx context.Context, input string) (string, Format, error) {
	if c == nil {
		return "", FormatUnknown, ErrConverterNotReady
	}
	if c.store == nil {
		return "", FormatUnknown, ErrSinkNotConfigured
	}

	f, out, err := c.ConvertFormat(ctx, input)
	if err != nil {
		return "", f, err
	}

	id := uuid.NewString()
	err = c.store.Save(ctx, id, out)
	if err != nil {
		c.metricInc(MetricSinkFailure)
		c.log.Warn().Err(err).Msg("session sink write failed")
	} else {
		c.metricInc(MetricSinkSaved)
	}
	kind := SourceString
	if c.isFile(input) {
		kind = SourceFile
	}
	c.emitAudit(ctx, AuditEventStore, sourceLabel(kind == SourceFile, input), f, id, err, map[string]string{"source_kind": kind.String()})
	if err != nil {
		return "", f, err
	}
	return id, f, nil
}

// Stored returns the canonical session saved under id.
func (c *Converter) Stored(ctx context.Context, id string) ([]byte, error) {
	if c == nil {
		return nil, ErrConverterNotReady
	}
	if c.store == nil {
		return nil, ErrSinkNotConfigured
	}
	return c.store.Load(ctx, id)
}

// DeleteStored removes the canonical session saved under id.
func (c *Converter) DeleteStored(ctx context.Context, id string) error {
	if c == nil {
		return ErrConverterNotReady
	}
	if c.store == nil {
		return ErrSinkNotConfigured
	}
	return c.store.Delete(ctx, id)
}

func (c *Converter) recordDetection(ctx context.Context, input string, rep Report) {
	switch rep.Format {
	case FormatTData:
		c.metricInc(MetricDetectTData)
	case FormatTelethon:
		c.metricInc(MetricDetectTelethon)
	case FormatPyrogram:
		c.metricInc(MetricDetectPyrogram)
	default:
		c.metricInc(MetricDetectUnknown)
	}

	var err error
	if rep.Format == FormatUnknown {
		err = ErrUnsupportedFormat
	}
	c.emitAudit(ctx, AuditEventDetect, sourceLabel(rep.Source == SourceFile, input), rep.Format, "", err, detectMetadata(rep))
}

func (c *Converter) recordConversion(ctx context.Context, input string, kind SourceKind, f Format, start time.Time, err error) {
	c.metricObserve(MetricConvertLatency, time.Since(start))

	if err == nil {
		c.metricInc(MetricConvertSuccess)
		c.log.Debug().Stringer("source", kind).Stringer("format", f).Msg("session converted")
	} else {
		c.metricInc(MetricConvertFailure)
		switch {
		case errors.Is(err, ErrStructDecode):
			c.metricInc(MetricDecodeFailure)
		case errors.Is(err, ErrStoreValidation):
			c.metricInc(MetricStoreRejected)
		case errors.Is(err, ErrUnknownDatacenter):
			c.metricInc(MetricUnknownDatacenter)
		}
		ev := c.log.Warn().Err(err).Stringer("source", kind).Stringer("format", f)
		if kind == SourceFile {
			ev = ev.Str("path", input)
		}
		ev.Msg("session conversion failed")
	}

	c.emitAudit(ctx, AuditEventConvert, sourceLabel(kind == SourceFile, input), f, "", err, map[string]string{"source_kind": kind.String()})
}

// sourceLabel keeps string sessions out of logs and audit events.
func sourceLabel(isFile bool, input string) string {
	if isFile {
		return input
	}
	return "string"
}

func (c *Converter) metricInc(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}

func (c *Converter) metricObserve(id MetricID, d time.Duration) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Observe(id, d)
}

// detectMetadata lists the attempts as "Format:outcome" in order.
func detectMetadata(rep Report) map[string]string {
	steps := make([]string, len(rep.Attempts))
	for i, a := range rep.Attempts {
		steps[i] = a.Format.String() + ":" + a.Outcome.String()
	}
	return map[string]string{
		"source_kind": rep.Source.String(),
		"attempts":    strings.Join(steps, ","),
	}
}

func (c *Converter) emitAudit(ctx context.Context, eventType, source string, f Format, sessionID string, err error, meta map[string]string) {
	if c == nil || c.audit == nil {
		return
	}
	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		RequestID: uuid.NewString(),
		Source:    source,
		Format:    f,
		SessionID: sessionID,
		Success:   err == nil,
		Metadata:  meta,
	}
	if err != nil {
		event.Error = err.Error()
	}
	c.audit.Emit(ctx, event)
}
