package domain

import "errors"

// セッション・合成パイプラインで使われるエラーです。
var (
	ErrDeviceUnavailable       = errors.New("photobooth: capture device unavailable")
	ErrCaptureLimitExceeded    = errors.New("photobooth: capture limit exceeded")
	ErrUnknownLayout           = errors.New("photobooth: unknown layout")
	ErrTemplateIndexOutOfRange = errors.New("photobooth: template index out of range")
	ErrLoad                    = errors.New("photobooth: image load failed")
	ErrDecode                  = errors.New("photobooth: image decode failed")
	ErrRenderInputMismatch     = errors.New("photobooth: render input mismatch")
	ErrCountdownCancelled      = errors.New("photobooth: countdown cancelled")
	ErrCountdownActive         = errors.New("photobooth: countdown already running")
	ErrSessionClosed           = errors.New("photobooth: session closed")
)
