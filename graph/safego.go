package graph

import "sync"

// SafeGo runs fn on a new goroutine tracked by wg, converting a panic into a
// call to onPanic instead of crashing the process. Node functions are user
// code, so every superstep worker goes through this.
func SafeGo(wg *sync.WaitGroup, fn func(), onPanic func(panicVal any)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				onPanic(r)
			}
		}()
		fn()
	}()
}
