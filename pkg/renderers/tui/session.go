// Package tui drives a form lifecycle from the terminal. A Session waits for
// the form to load, prompts for each field, submits, and reports the outcome.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-formstate/pkg/lifecycle"
	"github.com/goliatone/go-formstate/pkg/model"
)

// Controller is the part of lifecycle.Controller a Session drives.
type Controller interface {
	Snapshot() lifecycle.Snapshot
	ChangeField(key lifecycle.FieldKey, value string) error
	Submit() error
	Reload() error
	LastError() error
	Await(ctx context.Context, cond func(lifecycle.Snapshot) bool) (lifecycle.Snapshot, error)
}

var _ Controller = (*lifecycle.Controller)(nil)

// Session prompts for the fields of one form.
type Session struct {
	driver        PromptDriver
	theme         Theme
	settleTimeout time.Duration
}

// New builds a session backed by the survey prompt driver unless overridden.
func New(options ...Option) *Session {
	s := &Session{
		driver: newSurveyDriver(),
		theme: Theme{
			InfoPrefix:  "",
			ErrorPrefix: "error: ",
		},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Run waits for ctrl to finish loading, then loops prompting, submitting and
// offering another attempt until the user stops. It returns the last
// snapshot seen.
func (s *Session) Run(ctx context.Context, ctrl Controller, form model.FormModel) (lifecycle.Snapshot, error) {
	if ctx == nil {
		return lifecycle.Snapshot{}, errors.New("tui: context is required")
	}
	if ctrl == nil {
		return lifecycle.Snapshot{}, errors.New("tui: controller is required")
	}

	snap, err := s.waitLoaded(ctx, ctrl)
	if err != nil {
		return snap, err
	}

	for {
		if err := s.promptFields(ctx, ctrl, form); err != nil {
			return ctrl.Snapshot(), err
		}
		if err := ctrl.Submit(); err != nil {
			return ctrl.Snapshot(), fmt.Errorf("tui: submit: %w", err)
		}
		if err := s.info(ctx, "Submitting..."); err != nil {
			return ctrl.Snapshot(), err
		}

		snap, err = s.await(ctx, ctrl, func(snap lifecycle.Snapshot) bool { return snap.Status.Settled() })
		if err != nil {
			return snap, err
		}

		message := "Submit another response?"
		if snap.Status == lifecycle.StatusSuccess {
			if err := s.info(ctx, "Submitted."); err != nil {
				return snap, err
			}
		} else {
			if err := s.fail(ctx, "submission failed", ctrl.LastError()); err != nil {
				return snap, err
			}
			message = "Edit your answers and try again?"
		}

		again, err := s.driver.Confirm(ctx, ConfirmConfig{Message: message})
		if err != nil {
			return snap, err
		}
		if !again {
			return snap, nil
		}
	}
}

func (s *Session) waitLoaded(ctx context.Context, ctrl Controller) (lifecycle.Snapshot, error) {
	for {
		if err := s.info(ctx, "Loading..."); err != nil {
			return ctrl.Snapshot(), err
		}
		snap, err := s.await(ctx, ctrl, func(snap lifecycle.Snapshot) bool {
			return snap.Status != lifecycle.StatusLoading
		})
		if err != nil {
			return snap, err
		}
		if snap.Status != lifecycle.StatusLoadError {
			return snap, nil
		}

		if err := s.fail(ctx, "load failed", ctrl.LastError()); err != nil {
			return snap, err
		}
		retry, err := s.driver.Confirm(ctx, ConfirmConfig{Message: "Retry loading the form?", Default: true})
		if err != nil {
			return snap, err
		}
		if !retry {
			return snap, ErrLoadFailed
		}
		if err := ctrl.Reload(); err != nil {
			return ctrl.Snapshot(), fmt.Errorf("tui: reload: %w", err)
		}
	}
}

// promptFields asks for every field in form order, pushing each answer into
// the controller before the next prompt so required flags stay current.
func (s *Session) promptFields(ctx context.Context, ctrl Controller, form model.FormModel) error {
	for i, field := range form.Fields {
		key, err := lifecycle.ParseFieldKey(field.Name)
		if err != nil {
			continue
		}
		for {
			// Bind keeps form order, so index i is the bound copy of field.
			bound := model.Bind(form, ctrl.Snapshot()).Fields[i]
			value, err := s.promptField(ctx, bound)
			if err != nil {
				return err
			}
			if err := ctrl.ChangeField(key, value); err != nil {
				return fmt.Errorf("tui: change %s: %w", key, err)
			}
			errs := ctrl.Snapshot().ErrorsFor(key)
			if len(errs) == 0 {
				break
			}
			if err := s.info(ctx, s.theme.ErrorPrefix+strings.Join(errs, "; ")); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Session) promptField(ctx context.Context, field model.Field) (string, error) {
	message := field.Label
	if field.Required {
		message += " (required)"
	}

	switch field.UIHints[model.HintInput] {
	case model.HintInputSelect:
		options := field.EnumStrings()
		idx, err := s.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      options,
			DefaultIndex: indexOf(options, field.Value),
			Help:         field.Description,
		})
		if err != nil {
			return "", err
		}
		if idx < 0 || idx >= len(options) {
			return "", fmt.Errorf("tui: %s: selection out of range", field.Name)
		}
		return options[idx], nil
	case model.HintTextarea:
		return s.driver.TextArea(ctx, TextAreaConfig{
			Message: message,
			Default: field.Value,
			Help:    field.Description,
		})
	default:
		return s.driver.Input(ctx, InputConfig{
			Message: message,
			Default: field.Value,
			Help:    field.Placeholder,
		})
	}
}

func (s *Session) await(ctx context.Context, ctrl Controller, cond func(lifecycle.Snapshot) bool) (lifecycle.Snapshot, error) {
	if s.settleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settleTimeout)
		defer cancel()
	}
	return ctrl.Await(ctx, cond)
}

func (s *Session) info(ctx context.Context, msg string) error {
	return s.driver.Info(ctx, s.theme.InfoPrefix+msg)
}

func (s *Session) fail(ctx context.Context, msg string, cause error) error {
	if cause != nil {
		msg = msg + ": " + cause.Error()
	}
	return s.driver.Info(ctx, s.theme.ErrorPrefix+msg)
}
