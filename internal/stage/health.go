package stage

// Health reports whether a pipeline stage is able to process items, with a
// short reason when it is not.
type Health struct {
	Name   string
	Ready  bool
	Detail string
}

// Healthy reports a stage that is ready to run.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy reports a stage that cannot run and why.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Detail: detail}
}
