// Copyright 2023 The flatgeobuf (Go) Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package pointsearch

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfMemory is returned when the storage a SearchContext needs
	// cannot be allocated: its size overflows, exceeds the limit set
	// with WithMaxBytes, or the runtime refuses the allocation.
	ErrOutOfMemory = textErr("out of memory")
)

const (
	errDestroyed         = "search context destroyed"
	errNegativeMaxCount  = "negative max count %d"
	errShortOutputBuffer = "output buffer length %d smaller than max count %d"
)

const packageName = "pointsearch: "

func textErr(text string) error {
	return errors.New(packageName + text)
}

func fmtErr(format string, a ...interface{}) error {
	return fmt.Errorf(packageName+format, a...)
}

func wrapErr(text string, err error, a ...interface{}) error {
	return fmt.Errorf(packageName+text+": %w", append(a, err)...)
}

func textPanic(text string) {
	panic(packageName + text)
}

func fmtPanic(format string, a ...interface{}) {
	panic(fmt.Sprintf(packageName+format, a...))
}
