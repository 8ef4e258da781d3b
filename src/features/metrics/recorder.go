package metrics

import "github.com/contre95/scanrelay/src/scanning"

// RecordDispatch counts an event and the commands it was routed to.
func RecordDispatch(event scanning.Event, commands []scanning.Command) {
	EventsReceived.WithLabelValues(string(event.Kind)).Inc()
	if len(commands) == 0 {
		EventsDropped.WithLabelValues(string(event.Kind)).Inc()
		return
	}
	for _, cmd := range commands {
		CommandsEmitted.WithLabelValues(string(cmd.Kind)).Inc()
	}
}

// RecordRejected counts a command the scanner did not accept.
func RecordRejected(cmd scanning.Command) {
	HandoffRejected.WithLabelValues(string(cmd.Kind)).Inc()
}

// JobStarted marks a job as running.
func JobStarted(jobType string) {
	JobsRunning.Inc()
}

// JobFinished records the final status of a job that was running.
func JobFinished(jobType, status string) {
	JobsRunning.Dec()
	JobsFinished.WithLabelValues(jobType, status).Inc()
}

// JobSkipped records the final status of a job that never ran.
func JobSkipped(jobType, status string) {
	JobsFinished.WithLabelValues(jobType, status).Inc()
}
