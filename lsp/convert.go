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

package lsp

import (
	"errors"
	"fmt"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/bufbuild/reparse/change"
	"github.com/bufbuild/reparse/report"
	"github.com/bufbuild/reparse/source"
)

// ErrBadRange is returned for a content change whose range ends before it
// starts.
var ErrBadRange = errors.New("lsp: bad range")

// convertChanges converts LSP content changes into byte edits of text.
//
// Like the changes, each edit is relative to the text left by the ones
// before it, which is why positions are resolved one change at a time.
func convertChanges(text string, changes []any) ([]change.Edit, error) {
	edits := make([]change.Edit, 0, len(changes))
	for i, c := range changes {
		var e change.Edit
		switch c := c.(type) {
		case protocol.TextDocumentContentChangeEvent:
			file := source.NewFile("", text)
			e = change.Edit{
				Start: offset(file, c.Range.Start),
				End:   offset(file, c.Range.End),
				Text:  c.Text,
			}
			if e.End < e.Start {
				return nil, fmt.Errorf("%w: change %d ends before it starts", ErrBadRange, i)
			}
		case protocol.TextDocumentContentChangeEventWhole:
			e = change.Edit{End: len(text), Text: c.Text}
		default:
			return nil, fmt.Errorf("lsp: unsupported content change %T", c)
		}
		text = text[:e.Start] + e.Text + text[e.End:]
		edits = append(edits, e)
	}
	return edits, nil
}

func offset(file *source.File, pos protocol.Position) int {
	return file.Offset(int(pos.Line)+1, int(pos.Character)+1, source.UTF16)
}

func position(loc source.Location) protocol.Position {
	return protocol.Position{
		Line:      protocol.UInteger(loc.Line - 1),
		Character: protocol.UInteger(loc.Column - 1),
	}
}

func convertDiagnostics(diags []report.Diagnostic) []protocol.Diagnostic {
	// Never nil: an empty array clears the client's diagnostics.
	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		severity := severity(d.Level)
		name := Name
		out = append(out, protocol.Diagnostic{
			Range: protocol.Range{
				Start: position(d.Span.StartLoc(source.UTF16)),
				End:   position(d.Span.EndLoc(source.UTF16)),
			},
			Severity: &severity,
			Code:     &protocol.IntegerOrString{Value: d.Code},
			Source:   &name,
			Message:  d.Message,
		})
	}
	return out
}

func severity(level report.Level) protocol.DiagnosticSeverity {
	switch level {
	case report.Warning:
		return protocol.DiagnosticSeverityWarning
	case report.Remark:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityError
	}
}
