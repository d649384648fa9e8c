/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package schedule

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound          = errors.New("discipline not found")
	ErrAlreadyFinished   = errors.New("discipline already finished")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrNoNextDiscipline  = errors.New("no discipline after the current one")
	ErrUnknownState      = errors.New("unknown discipline state")
	ErrUnknownOrderKind  = errors.New("unknown ordering kind")
)

// ConfigError reports malformed or missing schedule configuration. Group,
// Discipline and Field locate the offending entry.
type ConfigError struct {
	Group      string
	Discipline string
	Field      string
	Value      string
	Err        error
}

func (e *ConfigError) Error() string {
	var sb strings.Builder
	sb.WriteString("schedule config")
	if e.Group != "" {
		sb.WriteString(fmt.Sprintf(" group %q", e.Group))
	}
	if e.Discipline != "" {
		sb.WriteString(fmt.Sprintf(" discipline %q", e.Discipline))
	}
	if e.Field != "" {
		sb.WriteString(fmt.Sprintf(" field %v", e.Field))
	}
	if e.Value != "" {
		sb.WriteString(fmt.Sprintf(" value %q", e.Value))
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
