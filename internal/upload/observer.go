package upload

// Event is one progress or phase update pushed to an Observer.
type Event struct {
	UploadID string
	Phase    State
	// Percent is the transfer completion in [0,100]. It never decreases
	// within a run.
	Percent           float64
	BytesAcknowledged int64
	TotalBytes        int64
}

// Observer receives events while a run progresses and exactly one Outcome
// when it ends. Calls for one run are serialized.
type Observer interface {
	Event(Event)
	Finish(Outcome)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are ignored.
type ObserverFuncs struct {
	OnEvent  func(Event)
	OnFinish func(Outcome)
}

func (f ObserverFuncs) Event(e Event) {
	if f.OnEvent != nil {
		f.OnEvent(e)
	}
}

func (f ObserverFuncs) Finish(o Outcome) {
	if f.OnFinish != nil {
		f.OnFinish(o)
	}
}

// Observers fans events out to several observers in order.
type Observers []Observer

func (list Observers) Event(e Event) {
	for _, o := range list {
		if o != nil {
			o.Event(e)
		}
	}
}

func (list Observers) Finish(outcome Outcome) {
	for _, o := range list {
		if o != nil {
			o.Finish(outcome)
		}
	}
}
