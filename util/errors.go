package util

import (
	"fmt"
	"strings"
)

type Error struct {
	Message string
}

func (err *Error) Error() string {
	return err.Message
}

var (
	ErrMissingCredential       = &Error{Message: "no device credential available for license negotiation"}
	ErrCredentialNotFound      = &Error{Message: "device credential file not found"}
	ErrMissingProtectionHeader = &Error{Message: "manifest carries no protection header"}
	ErrNoContentKey            = &Error{Message: "no content key found in license response"}
	ErrNoKeySystem             = &Error{Message: "no key-system implementation is available in this build. supply the content key with --key"}
	ErrInvalidKeyFormat        = &Error{Message: "decryption key must be exactly 32 hex characters"}
	ErrProtectedSource         = &Error{Message: "direct source is not available, track uses protected streaming"}
	ErrUnknownTrackID          = &Error{Message: "could not determine the track id for the stream url"}
	ErrDirectOnly              = &Error{Message: "direct download failed and this platform has no protected stream"}
	ErrMetadataNotFound        = &Error{Message: "could not find track metadata in page"}
	ErrFFmpegNotFound          = &Error{Message: "ffmpeg not found in PATH"}
)

// TransportError is a network or HTTP failure. StatusCode is zero
// when no response was received.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (err *TransportError) Error() string {
	if err.StatusCode != 0 {
		return fmt.Sprintf("request to %s failed: status code %d", err.URL, err.StatusCode)
	}
	return fmt.Sprintf("request to %s failed: %v", err.URL, err.Err)
}

func (err *TransportError) Unwrap() error {
	return err.Err
}

type ManifestError struct {
	Reason string
}

func (err *ManifestError) Error() string {
	return "invalid stream manifest: " + err.Reason
}

// SegmentFetchError aborts an assembly. Index is -1 for the init segment.
type SegmentFetchError struct {
	Index      int
	URI        string
	StatusCode int
	Err        error
}

func (err *SegmentFetchError) Error() string {
	name := fmt.Sprintf("segment %d", err.Index)
	if err.Index < 0 {
		name = "init segment"
	}
	if err.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch %s (%s): status code %d", name, err.URI, err.StatusCode)
	}
	return fmt.Sprintf("failed to fetch %s (%s): %v", name, err.URI, err.Err)
}

func (err *SegmentFetchError) Unwrap() error {
	return err.Err
}

// DecryptionError carries the diagnostics of a failed engine run.
type DecryptionError struct {
	Output string
	Err    error
}

func (err *DecryptionError) Error() string {
	output := strings.TrimSpace(err.Output)
	if output == "" {
		return fmt.Sprintf("decryption failed: %v", err.Err)
	}
	return fmt.Sprintf("decryption failed: %v: %s", err.Err, output)
}

func (err *DecryptionError) Unwrap() error {
	return err.Err
}
