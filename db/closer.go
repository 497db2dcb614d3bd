package db

import (
	"fmt"
	"io"
	"log"
	"reflect"
)

// Close releases a single named resource.
// Failures are logged, never returned.
func Close(name string, c io.Closer) {
	if isNil(c) {
		log.Printf("[INFO] `%s` Nothing to Close", name)
		return
	}
	if err := closeOne(c); err != nil {
		log.Printf("[WARN] Failed to Close `%s`: %v", name, err)
	} else {
		log.Printf("[INFO] `%s` Closed", name)
	}
}

// CloseAll releases resources given in acquisition order
// e.g. CloseAll(conn, stmt1, stmt2, rows)
// They are closed in reverse: rows, stmt2, stmt1, conn.
// nil entries (including typed nil pointers) are skipped.
// A failing Close is logged and the rest are still attempted.
// Returns the number of resources that failed to close.
func CloseAll(resources ...io.Closer) (failed int) {
	for i := len(resources) - 1; i >= 0; i-- {
		c := resources[i]
		if isNil(c) {
			continue
		}
		if err := closeOne(c); err != nil {
			log.Printf("[WARN] Failed to Close %T (#%d): %v", c, i, err)
			failed++
		}
	}
	return failed
}

// closeOne turns a panicking Close into an error
func closeOne(c io.Closer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during close: %v", r)
		}
	}()
	return c.Close()
}

func isNil(c io.Closer) bool {
	if c == nil {
		return true
	}
	v := reflect.ValueOf(c)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
