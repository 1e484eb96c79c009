package domain

import (
	"context"
	"errors"
	"fmt"
)

// FaultKind tags a failure at the boundary where it happens, so the
// classifier maps on the tag instead of matching error types.
type FaultKind string

const (
	FaultValidation       FaultKind = "validation"
	FaultNotFound         FaultKind = "not_found"
	FaultConnectivity     FaultKind = "connectivity"
	FaultConfiguration    FaultKind = "configuration"
	FaultRateLimited      FaultKind = "rate_limited"
	FaultCancelled        FaultKind = "cancelled"
	FaultToolsUnsupported FaultKind = "tools_unsupported"
	FaultUnknown          FaultKind = "unknown"
)

type Fault struct {
	Kind FaultKind
	// Name carries the attempted entity name for not-found faults so the
	// user can retry with a correction.
	Name string
	Err  error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Kind, f.Err)
	}
	return string(f.Kind)
}

func (f *Fault) Unwrap() error { return f.Err }

func NewFault(kind FaultKind, err error) *Fault {
	return &Fault{Kind: kind, Err: err}
}

func Faultf(kind FaultKind, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func NotFoundFault(name string) *Fault {
	return &Fault{Kind: FaultNotFound, Name: name, Err: fmt.Errorf("no match for %q", name)}
}

// KindOf extracts the fault kind from anywhere in the wrap chain,
// falling back to cancellation detection and then FaultUnknown.
func KindOf(err error) FaultKind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return FaultCancelled
	}
	return FaultUnknown
}

// NameOf returns the attempted entity name for not-found faults, if any.
func NameOf(err error) string {
	var f *Fault
	if errors.As(err, &f) {
		return f.Name
	}
	return ""
}
