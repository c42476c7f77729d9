package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotFound              = errors.New("not found")
	ErrInvalidInput          = errors.New("invalid input")
	ErrUnsupportedMedia      = errors.New("unsupported media type")
	ErrCapabilityUnavailable = errors.New("capability unavailable")
	ErrTemporary             = errors.New("temporary failure")
)

// WrapError renders as "operation: kind: cause" and matches both kind and cause.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

var errorKinds = []struct {
	kind error
	name string
}{
	{context.Canceled, "canceled"},
	{context.DeadlineExceeded, "timeout"},
	{ErrInvalidInput, "invalid_input"},
	{ErrUnsupportedMedia, "unsupported_media"},
	{ErrNotFound, "not_found"},
	{ErrCapabilityUnavailable, "capability_unavailable"},
	{ErrTemporary, "temporary"},
}

// KindName is the stable label for err used in job results and logs.
func KindName(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.kind) {
			return k.name
		}
	}
	return "internal"
}
