package tgsession

import (
	"errors"

	"github.com/MrEthical07/tgsession/dc"
	"github.com/MrEthical07/tgsession/extract"
	"github.com/MrEthical07/tgsession/schema"
	"github.com/MrEthical07/tgsession/session"
	"github.com/MrEthical07/tgsession/structcodec"
)

var (
	// ErrStoreValidation is returned when a SQLite file does not have the exact
	// layout of the requested client.
	ErrStoreValidation = schema.ErrStoreValidation
	// ErrStructDecode is returned for string sessions that are not valid
	// base64 or do not have the size of any known layout.
	ErrStructDecode = structcodec.ErrDecode
	// ErrUnknownDatacenter is returned when a dc id has no endpoint.
	ErrUnknownDatacenter = dc.ErrUnknownDatacenter
	// ErrUnsupportedFormat is returned when an input is in none of the
	// supported formats, or not in the format a direct call asked for.
	ErrUnsupportedFormat = extract.ErrUnsupportedFormat
	// ErrMissingRow is returned for a valid store without a sessions row.
	ErrMissingRow = extract.ErrMissingRow
	// ErrStoreUnavailable is returned when the Redis sink cannot be reached.
	ErrStoreUnavailable = session.ErrRedisUnavailable
	// ErrSessionNotFound is returned when no converted session is stored
	// under the id.
	ErrSessionNotFound = session.ErrSessionNotFound

	// ErrConverterNotReady is returned by methods called on a nil Converter.
	ErrConverterNotReady = errors.New("converter not initialized")
	// ErrSinkNotConfigured is returned by the sink methods when no Redis
	// client was given to the Builder.
	ErrSinkNotConfigured = errors.New("session sink not configured")
	// ErrAttemptPanicked marks a detection attempt that panicked.
	ErrAttemptPanicked = errors.New("detection attempt panicked")
)
