// Copyright 2025 The wfindex authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package werror

import (
	"encoding/json"
	"fmt"
)

// MalformedTokenError signals a token annotation missing its lemma or
// surface form. It is recoverable - the token is counted and skipped.
type MalformedTokenError struct {
	Msg string
}

func (err MalformedTokenError) Error() string {
	return err.Msg
}

func (err MalformedTokenError) MarshalJSON() ([]byte, error) {
	if err.Msg != "" {
		return json.Marshal(err.Msg)
	}
	return json.Marshal(nil)
}

// ----------------------------

// MalformedKeyError is the index core's defensive re-validation failure.
// Handled like MalformedTokenError but it should never fire as long as
// all writers go through the normalizer, so callers log it with a higher
// severity.
type MalformedKeyError struct {
	Msg string
}

func (err MalformedKeyError) Error() string {
	return err.Msg
}

func (err MalformedKeyError) MarshalJSON() ([]byte, error) {
	if err.Msg != "" {
		return json.Marshal(err.Msg)
	}
	return json.Marshal(nil)
}

// ----------------------------

// PersistenceError wraps a failure of the durable store. It is fatal to
// the current run but never corrupts the in-memory index; the operation
// may be retried by the caller.
type PersistenceError struct {
	Msg string
}

func (err PersistenceError) Error() string {
	return err.Msg
}

func (err PersistenceError) MarshalJSON() ([]byte, error) {
	if err.Msg != "" {
		return json.Marshal(err.Msg)
	}
	return json.Marshal(nil)
}

// ----------------------------

// SourceInterruptedError marks a document-level cancellation. Entries
// already upserted from the source stay in the index; only the summary
// reports the interruption.
type SourceInterruptedError struct {
	Source string
}

func (err SourceInterruptedError) Error() string {
	return fmt.Sprintf("ingestion of source %s interrupted", err.Source)
}

func (err SourceInterruptedError) MarshalJSON() ([]byte, error) {
	return json.Marshal(err.Error())
}

// ----------------------------

type InputError struct {
	Msg string
}

func (err InputError) Error() string {
	return err.Msg
}

func (err InputError) MarshalJSON() ([]byte, error) {
	if err.Msg != "" {
		return json.Marshal(err.Msg)
	}
	return json.Marshal(nil)
}

// ----------------------------

type InternalError struct {
	Msg string
}

func (err InternalError) Error() string {
	return err.Msg
}

func (err InternalError) MarshalJSON() ([]byte, error) {
	if err.Msg != "" {
		return json.Marshal(err.Msg)
	}
	return json.Marshal(nil)
}

// -----------------

func PanicValueToErr(v any) (err error) {
	switch tr := v.(type) {
	case error:
		err = fmt.Errorf("recovered panic: %w", tr)
	case string:
		err = fmt.Errorf("recovered panic: %s", tr)
	default:
		err = fmt.Errorf("recovered panic from an error of type %T", v)
	}
	return
}
