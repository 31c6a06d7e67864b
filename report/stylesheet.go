// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package report

import "github.com/bufbuild/reparse/source"

const runes = source.Runes

// styleSheet is the colors used for pretty-rendering diagnostics.
type styleSheet struct {
	reset, accent          string
	error, warning, remark string
}

func newStyleSheet(r Renderer) styleSheet {
	if !r.Colorize {
		return styleSheet{}
	}
	return styleSheet{
		reset: "\033[0m",
		// Blue. Used for line numbers and other rendering details, to
		// separate them from the source code.
		accent:  "\033[1;34m",
		error:   "\033[1;31m",
		warning: "\033[1;33m",
		remark:  "\033[1;36m",
	}
}

// level returns the escape sequence for the given level.
func (c styleSheet) level(l Level) string {
	switch l {
	case Error:
		return c.error
	case Warning:
		return c.warning
	case Remark:
		return c.remark
	default:
		return ""
	}
}
