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

package logging_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"

	"github.com/bufbuild/reparse/internal/logging"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		level string
		want  log.Level
	}{
		{"debug", log.DebugLevel},
		{"DEBUG", log.DebugLevel},
		{"info", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"", log.InfoLevel},
		{"loud", log.InfoLevel},
	}
	for _, test := range tests {
		assert.Equal(t, test.want, logging.ParseLevel(test.level), test.level)
		assert.Equal(t, test.want, logging.New(test.level).GetLevel(), test.level)
	}
}

func TestContext(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	logger := logging.NewWriter(&buf, "warn")

	assert.Same(t, logging.Default(), logging.FromContext(t.Context()))
	//nolint:staticcheck // A nil context falls back to the default.
	assert.Same(t, logging.Default(), logging.FromContext(nil))

	ctx := logging.WithLogger(context.Background(), logger)
	assert.Same(t, logger, logging.FromContext(ctx))

	logging.FromContext(ctx).Info("dropped")
	logging.FromContext(ctx).Warn("kept", logging.FieldPath, "a.rp")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept path=a.rp")
}
