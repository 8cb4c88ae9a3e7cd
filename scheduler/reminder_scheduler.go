// scheduler/reminder_scheduler.go
package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/LFroesch/project-management-sub010/models"
	"github.com/LFroesch/project-management-sub010/services"
)

const (
	dueScanInterval    = 15 * time.Minute
	windowScanInterval = 5 * time.Minute

	// Minimum gap between repeated alerts about the same todo.
	repeatWindow = time.Hour

	dueSoonHorizon    = 24 * time.Hour
	reminderLookback  = time.Minute
	reminderLookahead = 15 * time.Minute

	defaultSummaryHour = 8
	scanTimeout        = 2 * time.Minute
)

// TodoSource supplies the projects the scans work over.
type TodoSource interface {
	DueTodoProjects(ctx context.Context, horizon time.Time) ([]models.Project, error)
	ReminderWindowProjects(ctx context.Context, from, to time.Time) ([]models.Project, error)
}

// Notifier is the slice of the notification service the scheduler needs.
type Notifier interface {
	CreateNotification(ctx context.Context, in services.NotificationInput) (*models.Notification, error)
	HasRecentNotification(ctx context.Context, userID primitive.ObjectID, notificationType models.NotificationType, subjectID primitive.ObjectID, window time.Duration) (bool, error)
}

// ReminderScheduler drives three timer jobs: a 15 minute scan for overdue
// and soon-due todos, a 5 minute scan for reminder windows, and a daily
// per-user summary at a fixed hour. Each job runs on a single goroutine so
// a scan never overlaps itself, and a failed iteration never stops the
// timer.
type ReminderScheduler struct {
	todos    TodoSource
	notifier Notifier

	summaryHour int
	now         func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewReminderScheduler(todos TodoSource, notifier Notifier, summaryHour int) *ReminderScheduler {
	if summaryHour < 0 || summaryHour > 23 {
		summaryHour = defaultSummaryHour
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ReminderScheduler{
		todos:       todos,
		notifier:    notifier,
		summaryHour: summaryHour,
		now:         time.Now,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches the background jobs.
func (s *ReminderScheduler) Start() {
	log.Println("Starting reminder scheduler...")

	s.wg.Add(3)
	go s.runTicker(dueScanInterval, s.DueScan)
	go s.runTicker(windowScanInterval, s.WindowScan)
	go s.runDaily()

	log.Printf("Reminder scheduler started (daily summary at %02d:00)", s.summaryHour)
}

// Stop cancels the jobs and waits for in-flight scans to finish.
func (s *ReminderScheduler) Stop() {
	log.Println("Stopping reminder scheduler...")
	s.cancel()
	s.wg.Wait()
	log.Println("Reminder scheduler stopped")
}

// TriggerChecks runs the due and reminder-window scans synchronously, for
// the manual admin endpoint.
func (s *ReminderScheduler) TriggerChecks(ctx context.Context) {
	s.DueScan(ctx)
	s.WindowScan(ctx)
}

func (s *ReminderScheduler) runTicker(interval time.Duration, scan func(context.Context)) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runScan(scan)
		}
	}
}

func (s *ReminderScheduler) runDaily() {
	defer s.wg.Done()

	for {
		timer := time.NewTimer(s.untilNextSummary())
		select {
		case <-s.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.runScan(s.DailySummary)
		}
	}
}

func (s *ReminderScheduler) runScan(scan func(context.Context)) {
	ctx, cancel := context.WithTimeout(s.ctx, scanTimeout)
	defer cancel()
	scan(ctx)
}

// untilNextSummary computes the wait until the summary hour next comes
// around in server-local time.
func (s *ReminderScheduler) untilNextSummary() time.Duration {
	now := s.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.summaryHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}

// DueScan alerts on incomplete todos that are overdue or due inside the
// next 24 hours. Completed todos and todos without a due date stay silent,
// and a todo already alerted inside the repeat window is skipped.
func (s *ReminderScheduler) DueScan(ctx context.Context) {
	now := s.now()
	projects, err := s.todos.DueTodoProjects(ctx, now.Add(dueSoonHorizon))
	if err != nil {
		log.Printf("Due scan failed to load projects: %v", err)
		return
	}

	for i := range projects {
		project := &projects[i]
		for j := range project.Todos {
			todo := &project.Todos[j]
			if todo.Completed || todo.DueDate == nil {
				continue
			}

			due := *todo.DueDate
			var notificationType models.NotificationType
			switch {
			case due.Before(now):
				notificationType = models.NotificationTodoOverdue
			case !due.After(now.Add(dueSoonHorizon)):
				notificationType = models.NotificationTodoDueSoon
			default:
				continue
			}

			if err := s.alertTodo(ctx, project, todo, notificationType); err != nil {
				log.Printf("Due scan failed for todo %s: %v", todo.ID.Hex(), err)
			}
		}
	}
}

func (s *ReminderScheduler) alertTodo(ctx context.Context, project *models.Project, todo *models.Todo, notificationType models.NotificationType) error {
	recipient := recipientFor(project, todo)

	recent, err := s.notifier.HasRecentNotification(ctx, recipient, notificationType, todo.ID, repeatWindow)
	if err != nil {
		return fmt.Errorf("dedup check: %w", err)
	}
	if recent {
		return nil
	}

	title := "Todo Due Soon"
	message := fmt.Sprintf("%q in %s is due %s", todo.Title, project.Name, dueDateText(*todo.DueDate))
	if notificationType == models.NotificationTodoOverdue {
		title = "Todo Overdue"
		message = fmt.Sprintf("%q in %s was due %s", todo.Title, project.Name, dueDateText(*todo.DueDate))
	}

	return s.createAlert(ctx, recipient, project, todo, notificationType, title, message)
}

// WindowScan fires short-range alerts for todos whose reminder or due date
// falls inside [now-1m, now+15m]. Both dedup checks run before either
// notification is created, so a todo with both dates in the window gets
// both alerts from one pass.
func (s *ReminderScheduler) WindowScan(ctx context.Context) {
	now := s.now()
	from := now.Add(-reminderLookback)
	to := now.Add(reminderLookahead)

	projects, err := s.todos.ReminderWindowProjects(ctx, from, to)
	if err != nil {
		log.Printf("Reminder scan failed to load projects: %v", err)
		return
	}

	for i := range projects {
		project := &projects[i]
		for j := range project.Todos {
			todo := &project.Todos[j]
			if todo.Completed {
				continue
			}

			sendReminder := todo.ReminderDate != nil && inWindow(*todo.ReminderDate, from, to)
			sendDueSoon := todo.DueDate != nil && inWindow(*todo.DueDate, from, to)
			if !sendReminder && !sendDueSoon {
				continue
			}

			recipient := recipientFor(project, todo)

			if sendReminder {
				sendReminder = s.passesDedup(ctx, recipient, todo)
			}
			if sendDueSoon {
				sendDueSoon = s.passesDedup(ctx, recipient, todo)
			}

			if sendReminder {
				message := fmt.Sprintf("Reminder: %q in %s", todo.Title, project.Name)
				if todo.DueDate != nil {
					message = fmt.Sprintf("Reminder: %q in %s is due %s", todo.Title, project.Name, dueDateText(*todo.DueDate))
				}
				if err := s.createAlert(ctx, recipient, project, todo, models.NotificationTodoDueSoon, "Todo Reminder", message); err != nil {
					log.Printf("Reminder scan failed for todo %s: %v", todo.ID.Hex(), err)
				}
			}
			if sendDueSoon {
				message := fmt.Sprintf("%q in %s is due %s", todo.Title, project.Name, dueDateText(*todo.DueDate))
				if err := s.createAlert(ctx, recipient, project, todo, models.NotificationTodoDueSoon, "Todo Due Soon", message); err != nil {
					log.Printf("Reminder scan failed for todo %s: %v", todo.ID.Hex(), err)
				}
			}
		}
	}
}

// passesDedup reports whether a due-soon alert for the todo may fire. A
// failed check counts as a duplicate so an ailing store is not spammed.
func (s *ReminderScheduler) passesDedup(ctx context.Context, recipient primitive.ObjectID, todo *models.Todo) bool {
	recent, err := s.notifier.HasRecentNotification(ctx, recipient, models.NotificationTodoDueSoon, todo.ID, repeatWindow)
	if err != nil {
		log.Printf("Reminder scan dedup check failed for todo %s: %v", todo.ID.Hex(), err)
		return false
	}
	return !recent
}

func (s *ReminderScheduler) createAlert(ctx context.Context, recipient primitive.ObjectID, project *models.Project, todo *models.Todo, notificationType models.NotificationType, title, message string) error {
	_, err := s.notifier.CreateNotification(ctx, services.NotificationInput{
		UserID:           recipient,
		Type:             notificationType,
		Title:            title,
		Message:          message,
		ActionURL:        "/projects/" + project.ID.Hex(),
		RelatedProjectID: &project.ID,
		RelatedTodoID:    &todo.ID,
	})
	return err
}

type summaryEntry struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	ProjectID   string    `json:"projectId"`
	ProjectName string    `json:"projectName"`
	DueDate     time.Time `json:"dueDate"`
}

type todoSummary struct {
	Overdue  []summaryEntry
	DueToday []summaryEntry
}

// DailySummary sends each user one digest of the incomplete todos they are
// responsible for that are overdue or due today. Users with an empty
// digest get nothing.
func (s *ReminderScheduler) DailySummary(ctx context.Context) {
	now := s.now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	todayEnd := todayStart.Add(24 * time.Hour)

	projects, err := s.todos.DueTodoProjects(ctx, todayEnd)
	if err != nil {
		log.Printf("Daily summary failed to load projects: %v", err)
		return
	}

	summaries := map[primitive.ObjectID]*todoSummary{}
	for i := range projects {
		project := &projects[i]
		for j := range project.Todos {
			todo := &project.Todos[j]
			if todo.Completed || todo.DueDate == nil {
				continue
			}
			due := *todo.DueDate
			if due.After(todayEnd) {
				continue
			}

			recipient := recipientFor(project, todo)
			summary := summaries[recipient]
			if summary == nil {
				summary = &todoSummary{}
				summaries[recipient] = summary
			}

			entry := summaryEntry{
				ID:          todo.ID.Hex(),
				Title:       todo.Title,
				ProjectID:   project.ID.Hex(),
				ProjectName: project.Name,
				DueDate:     due,
			}
			if due.Before(todayStart) {
				summary.Overdue = append(summary.Overdue, entry)
			} else {
				summary.DueToday = append(summary.DueToday, entry)
			}
		}
	}

	for userID, summary := range summaries {
		if err := s.sendSummary(ctx, userID, summary); err != nil {
			log.Printf("Daily summary failed for user %s: %v", userID.Hex(), err)
		}
	}
}

func (s *ReminderScheduler) sendSummary(ctx context.Context, userID primitive.ObjectID, summary *todoSummary) error {
	message := summaryMessage(len(summary.Overdue), len(summary.DueToday))
	if message == "" {
		return nil
	}

	_, err := s.notifier.CreateNotification(ctx, services.NotificationInput{
		UserID:    userID,
		Type:      models.NotificationDailyTodoSummary,
		Title:     "Daily Todo Summary",
		Message:   message,
		ActionURL: "/todos",
		Metadata: map[string]interface{}{
			"overdue":  summary.Overdue,
			"dueToday": summary.DueToday,
			"total":    len(summary.Overdue) + len(summary.DueToday),
		},
	})
	return err
}

// summaryMessage phrases the digest. Empty clauses are dropped and two
// clauses join with "and"; counts of one use the singular form.
func summaryMessage(overdue, dueToday int) string {
	var clauses []string
	switch overdue {
	case 0:
	case 1:
		clauses = append(clauses, "1 overdue todo")
	default:
		clauses = append(clauses, fmt.Sprintf("%d overdue todos", overdue))
	}
	switch dueToday {
	case 0:
	case 1:
		clauses = append(clauses, "1 todo due today")
	default:
		clauses = append(clauses, fmt.Sprintf("%d todos due today", dueToday))
	}
	if len(clauses) == 0 {
		return ""
	}
	return "You have " + strings.Join(clauses, " and ")
}

// recipientFor picks who hears about a todo: the assignee when set,
// otherwise the project owner.
func recipientFor(project *models.Project, todo *models.Todo) primitive.ObjectID {
	if todo.AssignedTo != nil {
		return *todo.AssignedTo
	}
	return project.OwnerID
}

func inWindow(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

func dueDateText(t time.Time) string {
	return t.Format("Jan 2 at 3:04 PM")
}
