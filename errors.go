package dynbridge

import (
	stderrors "errors"

	"go.uber.org/zap"

	"github.com/reoring/dynbridge/errors"
)

// Error is the conversion error returned by every function in this package.
type Error = errors.Error

// Sentinels for errors.Is, matched by kind.
var (
	ErrCustom        = errors.ErrCustom
	ErrTypeMismatch  = errors.ErrTypeMismatch
	ErrDepthExceeded = errors.ErrDepthExceeded
	ErrSyntax        = errors.ErrSyntax
	ErrUnsupported   = errors.ErrUnsupported
)

// AsError extracts the *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if stderrors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// fail normalizes err for the given phase and records it at debug level.
func (o *Options) fail(phase errors.Phase, err error) error {
	e := errors.From(errors.WithPhase(err, phase))
	o.Logger.Debug("conversion failed",
		zap.String("phase", string(e.Phase)),
		zap.String("kind", string(e.Kind)),
		zap.String("path", e.Pointer()),
		zap.Error(e),
	)
	return e
}
