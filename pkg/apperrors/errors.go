// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package apperrors define a taxonomia de erros do servidor de mocks.
//
// Todo erro exposto carrega apenas o tipo (Kind) e uma mensagem qualificada
// pelo caminho da propriedade. Erros de validação agregam todas as violações
// de uma requisição em Details, em vez de parar na primeira.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifica um erro. O conjunto é fechado.
type Kind int

const (
	Unhandled Kind = iota
	BadRequest
	Validation
	NotFound
	NotAcceptable
	UnsupportedMediaType
	InvalidSchema
	InvalidData
	CorruptedData
)

func (k Kind) String() string {
	switch k {
	case BadRequest:
		return "BadRequest"
	case Validation:
		return "ValidationError"
	case NotFound:
		return "NotFound"
	case NotAcceptable:
		return "NotAcceptable"
	case UnsupportedMediaType:
		return "UnsupportedMediaType"
	case InvalidSchema:
		return "InvalidSchema"
	case InvalidData:
		return "InvalidData"
	case CorruptedData:
		return "CorruptedData"
	default:
		return "Unhandled"
	}
}

// HTTPStatus devolve o status HTTP correspondente ao Kind.
func (k Kind) HTTPStatus() int {
	switch k {
	case BadRequest, Validation:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case NotAcceptable:
		return http.StatusNotAcceptable
	case UnsupportedMediaType:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

// Error é o erro tipado retornado pelos componentes do engine.
type Error struct {
	// Kind é a categoria do erro.
	Kind Kind
	// Message é a mensagem principal, segura para exposição.
	Message string
	// Details lista as violações individuais (ex: "#/title: is required").
	Details []string
	// Err é a causa original, nunca exposta ao cliente.
	Err error
}

func (e *Error) Error() string {
	msg := e.Message
	if len(e.Details) > 0 {
		msg += ": " + strings.Join(e.Details, "; ")
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func BadRequestf(format string, args ...any) *Error {
	return newf(BadRequest, format, args...)
}

func NotFoundf(format string, args ...any) *Error {
	return newf(NotFound, format, args...)
}

func NotAcceptablef(format string, args ...any) *Error {
	return newf(NotAcceptable, format, args...)
}

func UnsupportedMediaTypef(format string, args ...any) *Error {
	return newf(UnsupportedMediaType, format, args...)
}

func InvalidSchemaf(format string, args ...any) *Error {
	return newf(InvalidSchema, format, args...)
}

func InvalidDataf(format string, args ...any) *Error {
	return newf(InvalidData, format, args...)
}

func CorruptedDataf(format string, args ...any) *Error {
	return newf(CorruptedData, format, args...)
}

// NewValidation agrega as mensagens de violação em um único erro.
func NewValidation(message string, details []string) *Error {
	return &Error{Kind: Validation, Message: message, Details: details}
}

// Wrap associa uma causa interna a um erro tipado.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	e := newf(kind, format, args...)
	e.Err = err
	return e
}

// KindOf devolve o Kind do primeiro *Error encontrado na cadeia, ou Unhandled.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unhandled
}

// Is verifica se err carrega o Kind informado.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Public devolve a mensagem e os detalhes que podem ser expostos ao cliente.
// Erros não tipados viram uma mensagem genérica.
func Public(err error) (Kind, string, []string) {
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == Unhandled {
			return Unhandled, "internal server error", nil
		}
		return e.Kind, e.Message, e.Details
	}
	return Unhandled, "internal server error", nil
}
