// Copyright 2026 The Tailstream Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

type ErrorCode int

const (
	PreconditionFailed = iota + 1000
	TypeMismatch
	UnknownAggFunction
	RetractNotSupported
	InvalidConfiguration = iota + 3000
	InternalError        = iota + 5000
)

func NewInternalError(errReference string) TailstreamError {
	return NewTailstreamErrorf(InternalError, "internal error - reference: %s please consult server logs for details", errReference)
}

func NewInvalidConfigurationError(msg string) TailstreamError {
	return NewTailstreamErrorf(InvalidConfiguration, "invalid configuration: %s", msg)
}

func NewPreconditionFailedError(msg string) TailstreamError {
	return NewTailstreamError(PreconditionFailed, msg)
}

func NewTypeMismatchError(msgFormat string, args ...interface{}) TailstreamError {
	return NewTailstreamErrorf(TypeMismatch, msgFormat, args...)
}

func NewTailstreamErrorf(errorCode ErrorCode, msgFormat string, args ...interface{}) TailstreamError {
	msg := fmt.Sprintf(msgFormat, args...)
	return TailstreamError{Code: errorCode, Msg: msg}
}

func NewTailstreamError(errorCode ErrorCode, msg string) TailstreamError {
	return TailstreamError{Code: errorCode, Msg: msg}
}

func Error(msg string) error {
	return New(msg)
}

func New(msg string) error {
	return pkgerrors.New(msg)
}

func Errorf(format string, args ...interface{}) error {
	return pkgerrors.Errorf(format, args...)
}

func WithStack(err error) error {
	return pkgerrors.WithStack(err)
}

func Is(err error, target error) bool {
	return pkgerrors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return pkgerrors.As(err, target)
}

type TailstreamError struct {
	Code      ErrorCode
	Msg       string
	ExtraData []byte
}

func (u TailstreamError) Error() string {
	return u.Msg
}
