/*
Copyright 2022 The Numaproj Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package dserr defines the structured errors raised by the dataset engine. Every invariant
// violation and malformed input has its own ErrKind so that a caller can tell them apart, even
// though the benchmark binary treats all of them as fatal.
package dserr

import (
	"errors"
	"fmt"
)

// ErrKind classifies a dataset error.
type ErrKind int16

const (
	Unknown         ErrKind = iota // Unknown err kind
	UnknownFormat                  // The input path has an unrecognized suffix
	FileRead                       // The input could not be opened, read or parsed
	RecordCount                    // The binary file size is not a multiple of the record size
	Unsorted                       // Edges are not sorted by timestamp
	SelfEdge                       // An edge has src == dst
	BatchTooLarge                  // The batch size exceeds the number of edges
	TooManyEpochs                  // The number of epochs exceeds the number of batches
	BatchOutOfRange                // The requested batch does not exist
	OutOfSequence                  // A generator batch was requested out of order
	InvalidArgument                // A configuration value is out of range
	Distribution                   // A collective operation across ranks failed
)

func (ek ErrKind) String() string {
	switch ek {
	case UnknownFormat:
		return "UnknownFormat"
	case FileRead:
		return "FileRead"
	case RecordCount:
		return "RecordCount"
	case Unsorted:
		return "Unsorted"
	case SelfEdge:
		return "SelfEdge"
	case BatchTooLarge:
		return "BatchTooLarge"
	case TooManyEpochs:
		return "TooManyEpochs"
	case BatchOutOfRange:
		return "BatchOutOfRange"
	case OutOfSequence:
		return "OutOfSequence"
	case InvalidArgument:
		return "InvalidArgument"
	case Distribution:
		return "Distribution"
	default:
		return "Unknown"
	}
}

// Error is a dataset error carrying its kind and a descriptive message.
type Error struct {
	Kind    ErrKind
	Message string
	cause   error
}

// New returns an Error of the given kind with a formatted message.
func New(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error of the given kind that wraps cause.
func Wrap(kind ErrKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports a match when target is an *Error of the same kind, so errors.Is(err, dserr.Sentinel(k))
// works regardless of the message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinel returns a message-less error of the given kind, for use with errors.Is.
func Sentinel(kind ErrKind) error {
	return &Error{Kind: kind}
}

// KindOf returns the kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}
