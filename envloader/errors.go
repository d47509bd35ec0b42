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
package envloader

import (
	"fmt"
	"reflect"
)

// InvalidConfigError indica que Load não recebeu um ponteiro para struct.
type InvalidConfigError struct {
	Value reflect.Type
}

func (e *InvalidConfigError) Error() string {
	got := e.Value.Kind().String()
	if e.Value.Kind() == reflect.Ptr {
		got = "pointer to " + e.Value.Elem().Kind().String()
	}
	return "envloader: config must be a pointer to struct, got " + got
}

// FieldError descreve um valor que não pôde ser atribuído ao campo.
// EnvVar vazio significa que o valor veio de envDefault.
type FieldError struct {
	FieldName string
	EnvVar    string
	Value     string
	Err       error
}

func (e *FieldError) Error() string {
	source := fmt.Sprintf("default %q", e.Value)
	if e.EnvVar != "" {
		source = fmt.Sprintf("env %s=%s", e.EnvVar, e.Value)
	}
	return fmt.Sprintf("envloader: error setting field %s from %s: %v", e.FieldName, source, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// UnsupportedTypeError é devolvido para campos que não são escalares nem
// []string.
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return "envloader: unsupported type " + e.Type.String()
}
