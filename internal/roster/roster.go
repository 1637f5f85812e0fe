// Package roster holds the per-row controller of an event check-in list.
package roster

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"checkinbot/internal/db/models"
	"checkinbot/internal/notify"
	"checkinbot/internal/tag"

	"github.com/google/uuid"
)

var (
	ErrMissingIdentity = errors.New("record is missing a user or event id")
	ErrNotCheckedIn    = errors.New("attendee is not checked in")
	ErrNoHandle        = errors.New("delivery returned no handle")

	unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
)

// CheckInService records an attendee as checked in.
type CheckInService interface {
	CheckIn(ctx context.Context, eventID uuid.UUID, userID string) error
}

// Refresher asks the owner of the list to re-fetch and re-render a row.
type Refresher interface {
	RequestRefresh()
}

// RefreshFunc adapts a plain function to Refresher.
type RefreshFunc func()

func (f RefreshFunc) RequestRefresh() { f() }

// Artifact is a generated document ready for delivery.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// Handle is a short-lived reference to a delivered artifact.
type Handle struct {
	URL string
}

// Deliverer presents an artifact to the user and returns where it can be
// opened.
type Deliverer interface {
	Deliver(ctx context.Context, a Artifact) (Handle, error)
}

type Action int

const (
	ActionCheckIn Action = iota
	ActionDownloadTag
)

// Affordance returns the single action a row offers for a record.
func Affordance(record *models.CheckInRecord) Action {
	if record.State() == models.StateCheckedIn {
		return ActionDownloadTag
	}
	return ActionCheckIn
}

// Deps are the collaborators a Controller talks to.
type Deps struct {
	CheckIns  CheckInService
	Generator tag.Generator
	Template  *tag.Template
	Delivery  Deliverer
	Notifier  notify.Sink
	Refresher Refresher
}

// Controller drives the check-in and tag actions of one attendee row. It
// only reads the record; state changes arrive through a refresh.
type Controller struct {
	record *models.CheckInRecord
	deps   Deps
}

func New(record *models.CheckInRecord, deps Deps) *Controller {
	return &Controller{record: record, deps: deps}
}

func (c *Controller) Record() *models.CheckInRecord {
	return c.record
}

func (c *Controller) Affordance() Action {
	return Affordance(c.record)
}

// MarkCheckedIn issues one check-in call for the row. Every outcome is
// reported through the notifier; the returned error is for logging.
func (c *Controller) MarkCheckedIn(ctx context.Context) error {
	if c.record.UserID == "" || c.record.EventID == uuid.Nil {
		c.deps.Notifier.Error("Check-in failed")
		c.deps.Notifier.Error(ErrMissingIdentity.Error())
		return ErrMissingIdentity
	}

	err := notify.Guard(ctx, func(ctx context.Context) error {
		return c.deps.CheckIns.CheckIn(ctx, c.record.EventID, c.record.UserID)
	})
	if err != nil {
		c.deps.Notifier.Error("Check-in failed")
		c.deps.Notifier.Error(err.Error())
		return fmt.Errorf("error checking in %s: %w", c.record.UserID, err)
	}

	c.deps.Notifier.Success(fmt.Sprintf("%s checked in", displayName(c.record.Name)))
	// The check-in already happened; a failed refresh only leaves the row stale.
	if err := notify.Guard(ctx, func(context.Context) error {
		c.deps.Refresher.RequestRefresh()
		return nil
	}); err != nil {
		log.Printf("Row refresh for %s failed: %v", c.record.UserID, err)
	}
	return nil
}

var tagMessages = notify.Messages{
	Pending: "Generating tag...",
	Success: "Tag generated",
	Error:   notify.WithPrefix("Tag generation failed"),
}

// GenerateTag renders the attendee's tag and delivers it. It always ends
// with exactly one success or error notification.
func (c *Controller) GenerateTag(ctx context.Context) (Handle, error) {
	var handle Handle
	err := notify.Promise(ctx, c.deps.Notifier, tagMessages, func(ctx context.Context) error {
		h, err := c.generateAndDeliver(ctx)
		if err != nil {
			return err
		}
		handle = h
		return nil
	})
	if err != nil {
		return Handle{}, err
	}
	return handle, nil
}

func (c *Controller) generateAndDeliver(ctx context.Context) (Handle, error) {
	if c.record.State() != models.StateCheckedIn {
		return Handle{}, ErrNotCheckedIn
	}

	input, err := tag.NewNameField(c.record.Name)
	if err != nil {
		return Handle{}, err
	}

	data, err := c.deps.Generator.Generate(ctx, c.deps.Template, []tag.FieldInput{input})
	if err != nil {
		return Handle{}, err
	}

	h, err := c.deps.Delivery.Deliver(ctx, Artifact{
		Name:        TagFileName(input.Content),
		ContentType: "application/pdf",
		Data:        data,
	})
	if err != nil {
		return Handle{}, err
	}
	if h.URL == "" {
		return Handle{}, ErrNoHandle
	}
	return h, nil
}

// TagFileName derives a download file name from a display name.
func TagFileName(name string) string {
	base := strings.Trim(unsafeFileChars.ReplaceAllString(strings.TrimSpace(name), "_"), "_")
	if base == "" {
		base = "attendee"
	}
	return strings.ToLower(base) + "_tag.pdf"
}

func displayName(name string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return "Attendee"
}
