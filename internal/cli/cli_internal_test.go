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

package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bufbuild/reparse/change"
)

func TestParseEdits(t *testing.T) {
	t.Parallel()
	edits, err := parseEdits([]string{"5:6=x", `0:0="a\n"`, "3=y", "7:9="})
	require.NoError(t, err)
	assert.Equal(t, []change.Edit{
		{Start: 0, End: 0, Text: "a\n"},
		{Start: 3, End: 3, Text: "y"},
		{Start: 5, End: 6, Text: "x"},
		{Start: 7, End: 9},
	}, edits)

	for _, bad := range []string{"nope", "a:1=x", "1:b=x", `1:2="open`} {
		_, err := parseEdits([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestColorEnabled(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	assert.True(t, colorEnabled("always", &buf))
	assert.False(t, colorEnabled("never", &buf))
	assert.False(t, colorEnabled("auto", &buf))
}
