// seehuhn.de/go/vectorscene - a vector scene extraction and compaction pipeline
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package vectorscene

import (
	"errors"
	"fmt"
)

// ErrCancelled is returned by Build when the caller's context is
// cancelled between pages or operator chunks. It is never wrapped: a
// caller can use errors.Is(err, ErrCancelled) directly.
var ErrCancelled = errors.New("vectorscene: build cancelled")

// Kind classifies a BuildError into the taxonomy of §7.
type Kind int

const (
	// KindInvalidSource covers unreadable archives, bad magic bytes, and
	// manifests referencing missing files.
	KindInvalidSource Kind = iota
	// KindResourceBound covers a packed texture that would exceed the
	// caller-configured maximum side length.
	KindResourceBound
	// KindTruncatedTexture covers a manifest whose logical float count
	// exceeds the bytes actually present in a texture payload.
	KindTruncatedTexture
)

func (k Kind) String() string {
	switch k {
	case KindInvalidSource:
		return "invalid source"
	case KindResourceBound:
		return "resource bound exceeded"
	case KindTruncatedTexture:
		return "truncated texture"
	default:
		return "unknown"
	}
}

// BuildError is the error type returned for every fatal failure of a
// scene build or archive load. It never carries a partial VectorScene:
// a BuildError means the caller gets nothing.
type BuildError struct {
	Kind   Kind
	Source string // file/source label, may be empty
	Stage  string // e.g. "archive", "packer", "interpreter"
	Msg    string // one-line diagnostic
	Err    error  // wrapped cause, may be nil
}

func (e *BuildError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s: %s: %s: %s", e.Source, e.Stage, e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Stage, e.Kind, e.Msg)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

func newBuildError(kind Kind, stage, source, msg string, cause error) *BuildError {
	return &BuildError{Kind: kind, Stage: stage, Source: source, Msg: msg, Err: cause}
}

// NewBuildError constructs a BuildError; it exists so that sibling
// packages (archive) that surface §7's error taxonomy on this
// package's behalf do not need to duplicate the type's field layout.
func NewBuildError(kind Kind, stage, source, msg string, cause error) *BuildError {
	return newBuildError(kind, stage, source, msg, cause)
}
