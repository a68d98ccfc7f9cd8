package logging

import (
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formstate/pkg/lifecycle"
)

// StatusObserver logs every status transition at info level. Field edits that
// leave the status unchanged are logged at debug level.
func StatusObserver(logger zerolog.Logger) lifecycle.Observer {
	return lifecycle.ObserverFunc(func(change lifecycle.Change) {
		if !change.StatusChanged() {
			logger.Debug().
				Str("event", change.Event.EventName()).
				Bool("explanation_required", change.Current.ExplanationRequired).
				Msg("form updated")
			return
		}

		event := logger.Info()
		if change.Current.Status == lifecycle.StatusError || change.Current.Status == lifecycle.StatusLoadError {
			event = logger.Warn()
			if cause := eventErr(change.Event); cause != nil {
				event = event.Err(cause)
			}
		}
		event.
			Str("event", change.Event.EventName()).
			Str("from", change.Previous.Status.String()).
			Str("status", change.Current.Status.String()).
			Bool("fields_editable", change.Current.FieldsEditable).
			Msg("form status changed")
	})
}

func eventErr(e lifecycle.Event) error {
	switch ev := e.(type) {
	case lifecycle.SubmitFailed:
		return ev.Err
	case lifecycle.LoadFailed:
		return ev.Err
	default:
		return nil
	}
}
