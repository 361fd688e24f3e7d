package tgsession

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/MrEthical07/tgsession/extract"
	"github.com/MrEthical07/tgsession/schema"
	"github.com/MrEthical07/tgsession/session"
	"github.com/MrEthical07/tgsession/tdata"
)

// Format is the detected source family of an input.
type Format string

const (
	FormatTData    Format = "TData"
	FormatTelethon Format = "Telethon"
	FormatPyrogram Format = "Pyrogram"
	FormatUnknown  Format = "Unknown"
)

func (f Format) String() string {
	return string(f)
}

// ParseFormat accepts the format tags case-insensitively.
func ParseFormat(s string) (Format, error) {
	for _, f := range []Format{FormatTData, FormatTelethon, FormatPyrogram, FormatUnknown} {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return FormatUnknown, fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Outcome is the result of one detection attempt.
type Outcome uint8

const (
	// OutcomeRejected means the input is cleanly not in the attempted format.
	OutcomeRejected Outcome = iota
	// OutcomeMatched means the attempt succeeded and decided the format.
	OutcomeMatched
	// OutcomeFailed means the attempt broke for another reason: an I/O error,
	// an endpoint the resolver does not know, a record the serializer cannot
	// encode, or a panic.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMatched:
		return "matched"
	case OutcomeFailed:
		return "failed"
	default:
		return "rejected"
	}
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// SourceKind tells whether an input was handled as a path or as a string
// session.
type SourceKind uint8

const (
	SourceString SourceKind = iota
	SourceFile
)

func (k SourceKind) String() string {
	if k == SourceFile {
		return "file"
	}
	return "string"
}

// Attempt is one step of detection.
type Attempt struct {
	Format  Format
	Outcome Outcome
	Err     error
}

// Report lists the attempts Detect made, in order. Format is the format of the
// matched attempt, FormatUnknown when none matched.
type Report struct {
	Source   SourceKind
	Format   Format
	Attempts []Attempt
}

type step struct {
	format Format
	run    func(ctx context.Context, input string) ([]byte, error)
}

// Files are probed, not converted: a store that validates is detected even if
// its row turns out to be unusable.
func (c *Converter) fileSteps() []step {
	return []step{
		{format: FormatTData, run: c.probeTData},
		{format: FormatPyrogram, run: func(ctx context.Context, path string) ([]byte, error) {
			return nil, schema.ValidateFile(ctx, path, schema.Pyrogram)
		}},
		{format: FormatTelethon, run: func(ctx context.Context, path string) ([]byte, error) {
			return nil, schema.ValidateFile(ctx, path, schema.Telethon)
		}},
	}
}

// Strings are converted in full, so a string is only detected as a format
// it can actually be converted from.
func (c *Converter) stringSteps() []step {
	return []step{
		{format: FormatTelethon, run: func(_ context.Context, s string) ([]byte, error) {
			return serialize(extract.TelethonString(s))
		}},
		{format: FormatPyrogram, run: func(_ context.Context, s string) ([]byte, error) {
			return serialize(extract.PyrogramString(s, c.resolver))
		}},
	}
}

func (c *Converter) probeTData(_ context.Context, root string) ([]byte, error) {
	accounts, err := c.probe.Open(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedFormat, tdata.ErrNoAccounts)
	}
	return nil, nil
}

func (c *Converter) inspect(ctx context.Context, input string) (Report, []byte) {
	rep := Report{Source: SourceString, Format: FormatUnknown}
	steps := c.stringSteps()
	if c.isFile(input) {
		rep.Source = SourceFile
		steps = c.fileSteps()
	}

	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			rep.Attempts = append(rep.Attempts, Attempt{Format: s.format, Outcome: OutcomeFailed, Err: err})
			break
		}

		a, out := c.try(ctx, s, input)
		rep.Attempts = append(rep.Attempts, a)
		c.log.Debug().
			Stringer("source", rep.Source).
			Stringer("format", a.Format).
			Stringer("outcome", a.Outcome).
			Err(a.Err).
			Msg("detection attempt")

		if a.Outcome == OutcomeMatched {
			rep.Format = s.format
			return rep, out
		}
	}
	return rep, nil
}

func (c *Converter) try(ctx context.Context, s step, input string) (a Attempt, out []byte) {
	a.Format = s.format
	defer func() {
		if r := recover(); r != nil {
			c.metricInc(MetricAttemptPanic)
			a.Outcome = OutcomeFailed
			a.Err = fmt.Errorf("%w: %v", ErrAttemptPanicked, r)
			out = nil
		}
	}()

	out, a.Err = s.run(ctx, input)
	a.Outcome = outcomeOf(a.Err)
	if a.Outcome != OutcomeMatched {
		out = nil
	}
	return a, out
}

func (c *Converter) isFile(input string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return c.exists(input)
}

func outcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeMatched
	case errors.Is(err, ErrUnsupportedFormat),
		errors.Is(err, ErrStoreValidation),
		errors.Is(err, ErrStructDecode):
		return OutcomeRejected
	default:
		return OutcomeFailed
	}
}

func serialize(r *session.Record, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	return session.Serialize(r)
}
