package poller

import (
	"errors"

	"reviewbot/internal/status"
)

// Stage names the pipeline step an error came from.
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageValidate  Stage = "validate"
	StageTranslate Stage = "translate"
	StageUnknown   Stage = "unknown"
)

// errorPrefix heads every error notice.
const errorPrefix = "Сбой в работе программы: "

// classify maps an error to its stage. The second result reports a
// transport-level failure (the only kind that feeds the backoff).
func classify(err error) (Stage, bool) {
	var (
		transport *status.TransportError
		remote    *status.RemoteStatusError
		decode    *status.DecodeError
		schema    *status.SchemaError
		unknown   *status.UnknownStatusError
	)
	switch {
	case errors.As(err, &transport):
		return StageFetch, true
	case errors.As(err, &remote), errors.As(err, &decode), errors.Is(err, status.ErrNegativeCursor):
		return StageFetch, false
	case errors.As(err, &schema):
		return StageValidate, false
	case errors.As(err, &unknown):
		return StageTranslate, false
	default:
		return StageUnknown, false
	}
}

// renderError turns an error into the notice text used for deduplication.
func renderError(err error) string {
	return errorPrefix + err.Error()
}
