// Package admin implements the create/edit workflow behind the admin form.
package admin

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bilgisen/sevennews/internal/logger"
	"github.com/bilgisen/sevennews/internal/models"
	"github.com/bilgisen/sevennews/internal/repository"
)

// State is the position of a form in its lifecycle.
type State int

const (
	StateIdle State = iota
	StateEditing
	StateSubmitting
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ErrSubmitTimeout is returned when a submit outlives the editor timeout.
// The store operation itself keeps running.
var ErrSubmitTimeout = errors.New("submit timed out")

// Input is the admin form as posted.
type Input struct {
	TitleEN       string `form:"title_en" validate:"required"`
	TitleTA       string `form:"title_ta"`
	DescriptionEN string `form:"description_en"`
	DescriptionTA string `form:"description_ta"`
	Category      string `form:"category" validate:"omitempty,oneof=World Technology Politics Sports Culture General"`
	VideoURL      string `form:"videoUrl" validate:"omitempty,url"`
}

func (in Input) trimmed() Input {
	in.TitleEN = strings.TrimSpace(in.TitleEN)
	in.TitleTA = strings.TrimSpace(in.TitleTA)
	in.Category = strings.TrimSpace(in.Category)
	in.VideoURL = strings.TrimSpace(in.VideoURL)
	return in
}

// ValidationError maps form field names to a message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + " " + e.Fields[name]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Form holds one admin form between renders.
type Form struct {
	State State
	// ID is empty for a new item.
	ID       string
	Input    Input
	ImageURL string
	Errors   map[string]string
	Message  string
}

func (f *Form) IsNew() bool {
	return f.ID == ""
}

// Retry returns a failed form to editing with every field kept.
func (f *Form) Retry() {
	if f.State == StateError {
		f.State = StateEditing
	}
}

func (f *Form) fail(msg string) {
	f.State = StateError
	f.Message = msg
}

// Writer is the part of the repository the editor needs.
type Writer interface {
	GetByID(ctx context.Context, id string) (*models.NewsItem, error)
	Create(ctx context.Context, fields models.Fields, img *repository.Image) (string, error)
	Update(ctx context.Context, id string, fields models.Fields, img *repository.Image) error
	Delete(ctx context.Context, id string) error
}

// Refresher reloads the public feed without blocking the caller.
type Refresher interface {
	RefreshAsync()
}

type Editor struct {
	repo         Writer
	refresher    Refresher
	timeout      time.Duration
	maxImageSize int64
	validate     *validator.Validate
}

// NewEditor builds an editor. A maxImageSize <= 0 disables the size check.
func NewEditor(repo Writer, refresher Refresher, timeout time.Duration, maxImageSize int64) *Editor {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Editor{
		repo:         repo,
		refresher:    refresher,
		timeout:      timeout,
		maxImageSize: maxImageSize,
		validate:     v,
	}
}

// OpenCreate returns an empty form for a new item.
func (e *Editor) OpenCreate() *Form {
	return &Form{
		State: StateEditing,
		Input: Input{Category: models.CategoryGeneral},
	}
}

// OpenEdit loads id into a form. Unknown ids yield repository.ErrNotFound.
func (e *Editor) OpenEdit(ctx context.Context, id string) (*Form, error) {
	item, err := e.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Form{
		State: StateEditing,
		ID:    item.ID,
		Input: Input{
			TitleEN:       item.TitleEN,
			TitleTA:       item.TitleTA,
			DescriptionEN: item.DescriptionEN,
			DescriptionTA: item.DescriptionTA,
			Category:      item.Category,
			VideoURL:      item.VideoURL,
		},
		ImageURL: item.ImageURL,
	}, nil
}

// Validate checks input and, when present, the image.
func (e *Editor) Validate(in Input, img *repository.Image) error {
	fields := map[string]string{}
	if err := e.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			fields[fe.Field()] = message(fe)
		}
	}
	if img != nil {
		if e.maxImageSize > 0 && img.Size > e.maxImageSize {
			fields["image"] = fmt.Sprintf("must be at most %d bytes", e.maxImageSize)
		} else if img.ContentType != "" && !strings.HasPrefix(img.ContentType, "image/") {
			fields["image"] = "must be an image"
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "url":
		return "must be a valid URL"
	}
	return "is invalid (" + fe.Tag() + ")"
}

type submitResult struct {
	id  string
	err error
}

// Submit validates in and writes it, creating or updating depending on the
// form. It returns the item id on success. Validation failures never reach
// the store. When the timeout fires first the form moves to StateError and
// ErrSubmitTimeout is returned while the write carries on in the background.
func (e *Editor) Submit(ctx context.Context, f *Form, in Input, img *repository.Image) (string, error) {
	f.Input = in.trimmed()
	f.Errors = nil
	f.Message = ""
	f.State = StateEditing

	if err := e.Validate(f.Input, img); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			f.Errors = verr.Fields
		}
		f.fail("Please correct the highlighted fields.")
		return "", err
	}

	f.State = StateSubmitting
	fields := models.Fields{
		TitleEN:       f.Input.TitleEN,
		TitleTA:       f.Input.TitleTA,
		DescriptionEN: f.Input.DescriptionEN,
		DescriptionTA: f.Input.DescriptionTA,
		Category:      f.Input.Category,
		VideoURL:      f.Input.VideoURL,
		ImageURL:      f.ImageURL,
	}

	// The write must survive the request giving up on it.
	opCtx := context.WithoutCancel(ctx)
	done := make(chan submitResult, 1)
	id := f.ID
	go func() {
		if id == "" {
			newID, err := e.repo.Create(opCtx, fields, img)
			done <- submitResult{id: newID, err: err}
			return
		}
		done <- submitResult{id: id, err: e.repo.Update(opCtx, id, fields, img)}
	}()

	timer := time.NewTimer(e.timeout)
	defer timer.Stop()

	select {
	case res := <-done:
		if res.err != nil {
			logger.Get().Error().
				Err(res.err).
				Str("id", id).
				Msg("Error saving news item")
			f.fail(failureMessage(res.err))
			return "", res.err
		}
		f.ID = res.id
		f.State = StateIdle
		e.refresher.RefreshAsync()
		return res.id, nil

	case <-timer.C:
		logger.Get().Warn().
			Str("id", id).
			Dur("timeout", e.timeout).
			Msg("News submit timed out, write continues in background")
		go e.awaitLate(done, id)
		f.fail("Saving is taking longer than expected. Check the dashboard before retrying.")
		return "", ErrSubmitTimeout

	case <-ctx.Done():
		go e.awaitLate(done, id)
		f.fail("The request was cancelled.")
		return "", ctx.Err()
	}
}

// awaitLate logs the outcome of a write the caller stopped waiting for and
// refreshes the feed if it landed.
func (e *Editor) awaitLate(done <-chan submitResult, id string) {
	res := <-done
	if res.err != nil {
		logger.Get().Error().Err(res.err).Str("id", id).Msg("Late news write failed")
		return
	}
	logger.Get().Info().Str("id", res.id).Msg("Late news write completed")
	e.refresher.RefreshAsync()
}

func failureMessage(err error) string {
	if errors.Is(err, repository.ErrNotFound) {
		return "This item no longer exists."
	}
	return "Could not save the news item. Please try again."
}

// Delete removes id and schedules a feed refresh.
func (e *Editor) Delete(ctx context.Context, id string) error {
	if err := e.repo.Delete(ctx, id); err != nil {
		return err
	}
	e.refresher.RefreshAsync()
	return nil
}
