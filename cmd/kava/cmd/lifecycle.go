package cmd

// appLifecycle is the part of the tracker that follows the application going to the background and back
type appLifecycle interface {
	ApplicationPaused()
	ApplicationResumed()
}

// lifecycleForwarder turns job control signals into tracker lifecycle calls.  A resume is only forwarded after a
// pause it forwarded itself.
type lifecycleForwarder struct {
	app       appLifecycle
	suspended bool
}

func (f *lifecycleForwarder) suspend() {
	if f.suspended {
		return
	}
	f.suspended = true
	f.app.ApplicationPaused()
}

func (f *lifecycleForwarder) resume() {
	if !f.suspended {
		return
	}
	f.suspended = false
	f.app.ApplicationResumed()
}
