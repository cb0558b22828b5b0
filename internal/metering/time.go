// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package metering

import (
	"time"
)

var epoch = time.Now()

// Monotime returns nanoseconds since process start, measured on the monotonic
// clock. Wall and monotonic clocks get out of sync inside docker
// (https://github.com/golang/go/issues/27090), so event ordering relies on
// this value rather than wall-clock reads.
func Monotime() int64 {
	return int64(time.Since(epoch))
}

// MonoToEpoch converts monotonic nanos from Monotime to epoch time nanos.
func MonoToEpoch(t int64) int64 {
	return epoch.UnixNano() + t
}
