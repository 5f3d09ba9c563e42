package main

import (
	"os"

	"github.com/tailstream-io/tailstream/common"
	log "github.com/tailstream-io/tailstream/logger"
)

func main() {
	defer common.PanicHandler()

	r := &runner{}
	if err := r.loadConfig(os.Args[1:]); err != nil {
		log.Errorf(err.Error())
		os.Exit(1)
	}
	if err := r.run(os.Stdout); err != nil {
		log.Errorf(err.Error())
		os.Exit(1)
	}
}
