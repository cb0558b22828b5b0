// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternalFormatter(t *testing.T) {
	entry := &logrus.Entry{
		Time:    time.Date(2024, 5, 1, 13, 37, 42, int(123*time.Millisecond), time.UTC),
		Level:   logrus.InfoLevel,
		Message: "monitor: calls student 4",
	}

	out, err := (&InternalFormatter{}).Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "13:37:42.123 [INFO] monitor: calls student 4\n", string(out))
}

func TestInternalFormatterFieldsAreSorted(t *testing.T) {
	entry := &logrus.Entry{
		Time:    time.Date(2024, 5, 1, 13, 37, 42, 0, time.UTC),
		Level:   logrus.DebugLevel,
		Message: "msg",
		Data:    logrus.Fields{"b": 2, "a": 1},
	}

	out, err := (&InternalFormatter{}).Format(entry)
	require.NoError(t, err)
	assert.Equal(t, "13:37:42.000 [DEBUG] (a=1 b=2) msg\n", string(out))
}
