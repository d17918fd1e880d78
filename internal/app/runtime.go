package app

import (
	"os"
	"sync"
)

const testModeEnv = "VIVENDA_TEST_MODE"

var testModeOnce = sync.OnceValue(func() bool {
	return os.Getenv(testModeEnv) == "1"
})

// InTestMode reports whether the process should skip runtime side effects,
// letting the binary be invoked under test harnesses without Postgres or
// Redis available.
func InTestMode() bool {
	return testModeOnce()
}
