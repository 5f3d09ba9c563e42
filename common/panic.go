package common

import (
	"fmt"
	"os"
	"runtime/debug"
)

func PanicHandler() {
	if r := recover(); r != nil {
		fmt.Printf("Panic caught in Tailstream: %v\n", r)
		debug.PrintStack()
		os.Exit(1)
	}
}
