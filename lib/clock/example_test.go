// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock_test

import (
	"fmt"
	"time"

	"github.com/bureau-foundation/atlasio/lib/clock"
	"github.com/bureau-foundation/atlasio/lib/record"
	"github.com/bureau-foundation/atlasio/lib/stream"
)

func ExampleFake() {
	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	writer, err := record.NewWriter(record.WriterOptions{Clock: c})
	if err != nil {
		fmt.Println(err)
		return
	}
	if err := writer.Set("n", record.Scalar(42)); err != nil {
		fmt.Println(err)
		return
	}
	out := stream.NewMemory(nil)
	if _, err := writer.Write(out); err != nil {
		fmt.Println(err)
		return
	}

	records, err := record.Scan(out, int64(out.Len()))
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(records[0].Created().UTC())
	// Output: 2026-01-01 00:00:00 +0000 UTC
}
