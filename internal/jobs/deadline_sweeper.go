package jobs

import (
	"database/sql"
	"fmt"
	"time"

	"taskmaster/internal/database"
	"taskmaster/internal/models"
	"taskmaster/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DeadlineSweeper periodically scans non-completed tasks and creates
// pending, due-soon, and overdue notifications for their owners.
type DeadlineSweeper struct {
	scheduler           gocron.Scheduler
	db                  *database.DB
	clock               clockwork.Clock
	notificationService *services.NotificationService
	cronExpression      string
	dueSoonDays         int
	logger              *logrus.Logger
}

// NewDeadlineSweeper creates a new deadline sweeper. The cron expression is
// validated up front so a bad config fails at startup rather than at first
// tick.
func NewDeadlineSweeper(
	db *database.DB,
	clock clockwork.Clock,
	notificationService *services.NotificationService,
	cronExpression string,
	dueSoonDays int,
) (*DeadlineSweeper, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(cronExpression); err != nil {
		return nil, fmt.Errorf("invalid notification cron expression %q: %w", cronExpression, err)
	}
	if dueSoonDays < 1 {
		return nil, fmt.Errorf("due soon window must be at least 1 day, got %d", dueSoonDays)
	}

	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &DeadlineSweeper{
		scheduler:           scheduler,
		db:                  db,
		clock:               clock,
		notificationService: notificationService,
		cronExpression:      cronExpression,
		dueSoonDays:         dueSoonDays,
		logger:              logger,
	}, nil
}

// Start registers the sweep job and starts the scheduler
func (d *DeadlineSweeper) Start() error {
	_, err := d.scheduler.NewJob(
		gocron.CronJob(d.cronExpression, false),
		gocron.NewTask(func() {
			d.Sweep()
		}),
		gocron.WithName("deadline_sweep"),
	)
	if err != nil {
		return fmt.Errorf("failed to create sweep job: %w", err)
	}

	d.scheduler.Start()
	d.logger.WithField("cron", d.cronExpression).Info("Deadline sweeper started")
	return nil
}

// Stop stops the scheduler
func (d *DeadlineSweeper) Stop() error {
	d.logger.Info("Deadline sweeper stopping")
	return d.scheduler.Shutdown()
}

// sweepTask is the slim task shape the sweep works over
type sweepTask struct {
	ID      string
	UserID  string
	Title   string
	DueDate *time.Time
}

// Sweep runs one pass over all non-completed tasks. A single bad task never
// aborts the pass.
func (d *DeadlineSweeper) Sweep() {
	log := d.logger.WithField("job", "deadline_sweep")
	log.Info("Running notification checks")

	tasks, err := d.loadOpenTasks()
	if err != nil {
		log.WithError(err).Error("Failed to load open tasks")
		return
	}
	log.WithField("count", len(tasks)).Info("Found pending tasks")

	now := d.clock.Now().UTC()
	var created int
	for _, task := range tasks {
		if d.notify(task, now) {
			created++
		}
	}

	log.WithField("created", created).Info("Notification checks completed")
}

// notify creates at most one notification for the task, picking the most
// urgent applicable category. Reports whether a notification was created.
func (d *DeadlineSweeper) notify(task sweepTask, now time.Time) bool {
	message := fmt.Sprintf("Your task %q is pending.", task.Title)
	notificationType := models.NotificationTaskPending

	if task.DueDate != nil {
		switch days := daysUntil(now, *task.DueDate); {
		case task.DueDate.Before(now):
			message = fmt.Sprintf("Your task %q is overdue.", task.Title)
			notificationType = models.NotificationTaskOverdue
		case days <= d.dueSoonDays:
			plural := ""
			if days != 1 {
				plural = "s"
			}
			message = fmt.Sprintf("Your task %q is due in %d day%s.", task.Title, days, plural)
			notificationType = models.NotificationTaskDueSoon
		}
	}

	taskID := task.ID
	if _, err := d.notificationService.Create(task.UserID, &taskID, message, notificationType); err != nil {
		d.logger.WithError(err).WithField("taskId", task.ID).Error("Failed to create notification")
		return false
	}
	return true
}

// loadOpenTasks returns every task that is not completed, across all users
func (d *DeadlineSweeper) loadOpenTasks() ([]sweepTask, error) {
	rows, err := d.db.Query(`
		SELECT id, user_id, title, due_date
		FROM tasks
		WHERE status != ?
	`, models.TaskStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to query open tasks: %w", err)
	}
	defer rows.Close()

	var tasks []sweepTask
	for rows.Next() {
		var t sweepTask
		var dueDate sql.NullTime
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &dueDate); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		if dueDate.Valid {
			due := dueDate.Time
			t.DueDate = &due
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// daysUntil returns whole days from now until due, rounding partial days up.
// Negative when due is in the past.
func daysUntil(now, due time.Time) int {
	diff := due.Sub(now)
	days := int(diff / (24 * time.Hour))
	if diff > 0 && diff%(24*time.Hour) != 0 {
		days++
	}
	return days
}
