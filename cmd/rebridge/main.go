package main

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/rebridge-io/rebridge/driver/goredisdriver"
	"github.com/rebridge-io/rebridge/driver/redigodriver"
	"github.com/rebridge-io/rebridge/handler"
)

func setLogLevel(logLevel string) {
	level, err := log.ParseLevel(logLevel)
	if err != nil {
		level = log.WarnLevel
	}
	log.SetLevel(level)
}

func main() {
	var host, port, instruPort, configPath, logLevel string

	flag.StringVarP(&host, "host", "h", "127.0.0.1", "server host address")
	flag.StringVarP(&port, "port", "p", "6379", "port the server will listen to")
	flag.StringVarP(&instruPort, "instru-port", "i", "8888", "configure the port for providing instrumentation")
	flag.StringVarP(&configPath, "config", "c", "config.toml", "configuration file to use")
	flag.StringVarP(&logLevel, "log-level", "l", "warn", "Set the logging level (trace, debug, info, warn, error, fatal, panic)")

	flag.Parse()

	setLogLevel(logLevel)

	config, err := readConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to read configuration: %v", err)
	}

	syncDriver := redigodriver.New(config.Sync.driverConfig())
	defer syncDriver.Close()

	asyncDriver := goredisdriver.New(config.Async.driverConfig())
	defer asyncDriver.Close()

	commandHandler := handler.New(handler.Config{Password: config.Password}, handler.Backends{
		Sets:        syncDriver.Sets(),
		ZSets:       asyncDriver.ZSets(),
		SyncPinger:  syncDriver,
		AsyncPinger: asyncDriver,
	})

	instruAddr := fmt.Sprintf("%s:%s", host, instruPort)
	instruErr := make(chan error)
	if err := handler.RunInstrumentation(instruAddr, commandHandler, instruErr); err != nil {
		log.Fatalf("Failed to run instrumentation server: %v", err)
	}

	addr := fmt.Sprintf("%s:%s", host, port)
	if err := handler.Run(addr, commandHandler); err != nil {
		log.Fatal(err)
	}

	log.Warn(<-instruErr)
}
