package session

import (
	"os"
	"os/signal"
)

// SignalNotifier abstracts process signal registration so tests can inject
// synthetic interruptions.
type SignalNotifier interface {
	Notify(signalChannel chan<- os.Signal, signals ...os.Signal)
	Stop(signalChannel chan<- os.Signal)
}

// OSSignalNotifier registers with the process signal dispatcher.
type OSSignalNotifier struct{}

// Notify forwards to signal.Notify.
func (OSSignalNotifier) Notify(signalChannel chan<- os.Signal, signals ...os.Signal) {
	signal.Notify(signalChannel, signals...)
}

// Stop forwards to signal.Stop.
func (OSSignalNotifier) Stop(signalChannel chan<- os.Signal) {
	signal.Stop(signalChannel)
}
