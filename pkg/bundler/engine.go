package bundler

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"github.com/dmitrymomot/notifykit/pkg/async"
	"github.com/dmitrymomot/notifykit/pkg/bus"
	"github.com/dmitrymomot/notifykit/pkg/consumer"
	"github.com/dmitrymomot/notifykit/pkg/directory"
	"github.com/dmitrymomot/notifykit/pkg/environment"
	"github.com/dmitrymomot/notifykit/pkg/logger"
	"github.com/dmitrymomot/notifykit/pkg/markdown"
	"github.com/dmitrymomot/notifykit/pkg/scheduler"
	"github.com/dmitrymomot/notifykit/pkg/settings"
	"github.com/dmitrymomot/notifykit/pkg/token"
)

// SettingsSource fetches a user's notification settings snapshot.
type SettingsSource interface {
	GetSettings(ctx context.Context, userID string) (settings.Values, error)
}

// UserSource looks up users in the member directory.
type UserSource interface {
	GetUsersByID(ctx context.Context, ids []string) ([]directory.User, error)
}

// Dispatcher posts assembled notification events to the bus.
type Dispatcher interface {
	PostEvent(ctx context.Context, event bus.Event) error
}

// EventScheduler accumulates events for periodic bundled delivery.
type EventScheduler interface {
	AddEvent(ctx context.Context, event scheduler.Event) error
	HasPeriod(name string) bool
}

// Address is an email endpoint in the outbound payload.
type Address struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// EmailPayload is the message body posted to the bus for the downstream
// email service. Rendering it into final HTML belongs to that service.
type EmailPayload struct {
	From       Address         `json:"from"`
	ReplyTo    string          `json:"replyTo,omitempty"`
	CC         []string        `json:"cc,omitempty"`
	Recipients []string        `json:"recipients"`
	Subject    string          `json:"subject"`
	Projects   []ProjectBundle `json:"projects"`
}

// replyTokenPayload is signed into synthesized reply addresses so the reply
// pipeline can validate the sender without round-tripping credentials.
type replyTokenPayload struct {
	UserID      string `json:"uid"`
	ReferenceID string `json:"ref"`
}

// Engine is the notification bundling and dispatch core. For each inbound
// event it either dispatches one email payload immediately or hands the
// event to the scheduler; due batches come back through ProcessDue.
type Engine struct {
	cfg      Config
	groups   *GroupTable
	settings SettingsSource
	users    UserSource
	bus      Dispatcher
	sched    EventScheduler
	md       markdown.Renderer
	log      *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for the Engine.
func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithMarkdown sets the renderer applied to notification bodies before
// payload assembly.
func WithMarkdown(md markdown.Renderer) Option {
	return func(e *Engine) {
		e.md = md
	}
}

// New creates a bundling engine over its collaborators.
func New(cfg Config, groups *GroupTable, settingsSrc SettingsSource, users UserSource, dispatcher Dispatcher, sched EventScheduler, opts ...Option) (*Engine, error) {
	if groups == nil {
		return nil, fmt.Errorf("bundler: group table is required")
	}
	if settingsSrc == nil || users == nil || dispatcher == nil || sched == nil {
		return nil, fmt.Errorf("bundler: all collaborators are required")
	}

	e := &Engine{
		cfg:      cfg,
		groups:   groups,
		settings: settingsSrc,
		users:    users,
		bus:      dispatcher,
		sched:    sched,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// HandleMessage processes one inbound notification: resolve the user's
// settings and profile, decide the bundling policy, then either schedule
// the event or dispatch it immediately. Configuration errors and immediate
// dispatch failures propagate to the caller; there are no retries here.
func (e *Engine) HandleMessage(ctx context.Context, msg consumer.Message) error {
	event := EventFromMessage(msg)
	if event.UserID == "" {
		return fmt.Errorf("notification has no user id")
	}

	// Settings and user lookups are independent; run them concurrently.
	settingsFut := async.Async(ctx, event.UserID, e.settings.GetSettings)
	usersFut := async.Async(ctx, []string{event.UserID}, e.users.GetUsersByID)

	values, err := settingsFut.Await()
	if err != nil {
		return fmt.Errorf("failed to fetch settings: %w", err)
	}
	found, err := usersFut.Await()
	if err != nil {
		return fmt.Errorf("failed to fetch user: %w", err)
	}
	var user directory.User
	if len(found) > 0 {
		user = found[0]
	}

	if !values.NotificationEnabled(event.Type) {
		e.log.DebugContext(ctx, "notification type disabled by user",
			logger.UserID(event.UserID),
			logger.EventType(event.Type))
		return nil
	}

	policy, err := ResolvePolicy(values, e.cfg.ServiceID, event.IsMessaging(), e.sched.HasPeriod)
	if err != nil {
		return err
	}

	if policy.Bundle {
		return e.schedule(ctx, event, policy.Period)
	}
	return e.DispatchImmediate(ctx, event, user)
}

// schedule hands one event to the scheduler for later bundled delivery.
func (e *Engine) schedule(ctx context.Context, event NotificationEvent, period string) error {
	reference := scheduler.ReferenceProject
	referenceID := event.ProjectID
	if event.IsMessaging() && event.TopicID != "" {
		reference = scheduler.ReferenceTopic
		referenceID = event.TopicID
	}

	err := e.sched.AddEvent(ctx, scheduler.Event{
		UserID:      event.UserID,
		Reference:   reference,
		ReferenceID: referenceID,
		Period:      period,
		Data: map[string]any{
			"type":        event.Type,
			"contents":    e.renderContents(ctx, event.Contents),
			"projectId":   event.ProjectID,
			"projectName": stringField(event.Contents, "projectName"),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to schedule event: %w", err)
	}
	return nil
}

// DispatchImmediate assembles a single-notification payload and posts it to
// the bus without delay. Dispatch failure propagates to the caller.
func (e *Engine) DispatchImmediate(ctx context.Context, event NotificationEvent, user directory.User) error {
	def := e.groups.Definition(e.groups.Classify(event.Type))

	// New contents value per stage; the inbound map is never mutated.
	rendered := event
	rendered.Contents = e.renderContents(ctx, event.Contents)

	payload := EmailPayload{
		From:       Address{Email: e.cfg.FromEmail, Name: e.cfg.FromName},
		Recipients: []string{e.recipient(ctx, user)},
		Subject:    resolvePlaceholders(def.Subject, []map[string]any{rendered.Contents}),
		Projects: []ProjectBundle{{
			ID:       event.ProjectID,
			Name:     stringField(event.Contents, "projectName"),
			Sections: e.groups.BuildSections([]NotificationEvent{rendered}),
		}},
	}

	if event.IsMessaging() {
		replyTo, err := e.replyAddress(event)
		if err != nil {
			return err
		}
		payload.ReplyTo = replyTo
	}
	if event.IsMention() && e.cfg.MentionCC != "" {
		payload.CC = []string{e.cfg.MentionCC}
	}

	if err := e.bus.PostEvent(ctx, bus.Event{Topic: e.cfg.EmailTopic, Payload: payload}); err != nil {
		return fmt.Errorf("failed to dispatch notification: %w", err)
	}

	e.log.InfoContext(ctx, "dispatched immediate notification",
		logger.UserID(event.UserID),
		logger.EventType(event.Type),
		logger.Recipient(payload.Recipients[0]))
	return nil
}

// ProcessDue turns a batch of due scheduled events into one aggregated
// message per user and records the per-user outcome through setStatus.
// Status marking is batch-atomic per user: the events behind one dispatch
// all complete or all fail together. Dispatch failures never propagate.
func (e *Engine) ProcessDue(ctx context.Context, events []scheduler.Event, setStatus scheduler.SetStatusFunc) {
	if len(events) == 0 {
		return
	}

	var userOrder []string
	byUser := make(map[string][]scheduler.Event)
	for _, se := range events {
		if _, ok := byUser[se.UserID]; !ok {
			userOrder = append(userOrder, se.UserID)
		}
		byUser[se.UserID] = append(byUser[se.UserID], se)
	}

	usersByID, err := e.lookupUsers(ctx, userOrder)
	if err != nil {
		// Without recipients nothing can be dispatched; the whole batch fails.
		e.log.ErrorContext(ctx, "failed to look up bundle recipients", logger.Error(err))
		e.markAll(ctx, events, setStatus, scheduler.StatusFailed)
		return
	}

	for _, userID := range userOrder {
		userEvents := byUser[userID]

		payload := EmailPayload{
			From:       Address{Email: e.cfg.FromEmail, Name: e.cfg.FromName},
			Recipients: []string{e.recipient(ctx, usersByID[userID])},
			Subject:    e.cfg.BundleSubject,
			Projects:   e.projectBundles(userEvents),
		}

		status := scheduler.StatusCompleted
		if err := e.bus.PostEvent(ctx, bus.Event{Topic: e.cfg.EmailTopic, Payload: payload}); err != nil {
			e.log.ErrorContext(ctx, "failed to dispatch bundled notifications",
				logger.UserID(userID),
				logger.EventCount(len(userEvents)),
				logger.Error(err))
			status = scheduler.StatusFailed
		} else {
			e.log.InfoContext(ctx, "dispatched bundled notifications",
				logger.UserID(userID),
				logger.EventCount(len(userEvents)),
				logger.Recipient(payload.Recipients[0]))
		}

		if err := setStatus(ctx, userEvents, status); err != nil {
			e.log.ErrorContext(ctx, "failed to record bundle status",
				logger.UserID(userID),
				logger.Error(err))
		}
	}
}

// projectBundles partitions one user's due events by project and builds one
// ProjectBundle per project, in first-seen order.
func (e *Engine) projectBundles(userEvents []scheduler.Event) []ProjectBundle {
	var projectOrder []string
	byProject := make(map[string][]scheduler.Event)
	names := make(map[string]string)
	for _, se := range userEvents {
		projectID := stringField(se.Data, "projectId")
		if _, ok := byProject[projectID]; !ok {
			projectOrder = append(projectOrder, projectID)
		}
		byProject[projectID] = append(byProject[projectID], se)
		if name := stringField(se.Data, "projectName"); name != "" {
			names[projectID] = name
		}
	}

	bundles := make([]ProjectBundle, 0, len(projectOrder))
	for _, projectID := range projectOrder {
		projectEvents := byProject[projectID]
		notifEvents := make([]NotificationEvent, len(projectEvents))
		for i, se := range projectEvents {
			notifEvents[i] = eventFromScheduled(se)
		}
		bundles = append(bundles, ProjectBundle{
			ID:       projectID,
			Name:     names[projectID],
			Sections: e.groups.BuildSections(notifEvents),
		})
	}
	return bundles
}

// eventFromScheduled rebuilds the classification view of an event from the
// payload stored at scheduling time.
func eventFromScheduled(se scheduler.Event) NotificationEvent {
	contents, _ := se.Data["contents"].(map[string]any)
	return NotificationEvent{
		UserID:    se.UserID,
		Type:      stringField(se.Data, "type"),
		Contents:  contents,
		ProjectID: stringField(se.Data, "projectId"),
	}
}

func (e *Engine) lookupUsers(ctx context.Context, ids []string) (map[string]directory.User, error) {
	found, err := e.users.GetUsersByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]directory.User, len(found))
	for _, u := range found {
		byID[u.ID] = u
	}
	return byID, nil
}

func (e *Engine) markAll(ctx context.Context, events []scheduler.Event, setStatus scheduler.SetStatusFunc, status scheduler.Status) {
	if err := setStatus(ctx, events, status); err != nil {
		e.log.ErrorContext(ctx, "failed to record bundle status", logger.Error(err))
	}
}

// recipient resolves the destination address for a user. Outside production
// a configured override captures all mail. A user without an email address
// is logged and, absent an override, dispatched with an empty recipient so
// the failure stays visible downstream.
func (e *Engine) recipient(ctx context.Context, user directory.User) string {
	if e.cfg.DevEmailOverride != "" && !environment.IsProduction(e.cfg.Environment) {
		return e.cfg.DevEmailOverride
	}
	if user.Email == "" {
		e.log.WarnContext(ctx, "user has no email address", logger.UserID(user.ID))
		if e.cfg.DevEmailOverride != "" {
			return e.cfg.DevEmailOverride
		}
	}
	return user.Email
}

// replyAddress synthesizes a signed reply-to address for a messaging event.
// Only the token's signature segment is embedded, keeping the address short
// while still letting the reply pipeline validate the sender.
func (e *Engine) replyAddress(event NotificationEvent) (string, error) {
	if e.cfg.ReplyDomain == "" {
		return "", nil
	}

	referenceID := event.TopicID
	if referenceID == "" {
		referenceID = event.PostID
	}

	tok, err := token.Generate(replyTokenPayload{
		UserID:      event.UserID,
		ReferenceID: referenceID,
	}, e.cfg.SigningSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign reply token: %w", err)
	}

	return fmt.Sprintf("%s+%s/%s@%s", e.cfg.ReplyPrefix, referenceID, token.LastSegment(tok), e.cfg.ReplyDomain), nil
}

// renderContents returns a copy of contents with the markdown body rendered
// to HTML under "bodyHtml". The input map is never modified; sections built
// from the same event therefore never alias each other's mutations.
func (e *Engine) renderContents(ctx context.Context, contents map[string]any) map[string]any {
	if e.md == nil {
		return contents
	}
	body := stringField(contents, "body")
	if body == "" {
		return contents
	}

	html, err := e.md.Render(body)
	if err != nil {
		e.log.WarnContext(ctx, "failed to render notification body", logger.Error(err))
		return contents
	}

	out := maps.Clone(contents)
	out["bodyHtml"] = html
	return out
}
