package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/example/wordgo/internal/config"
	"github.com/example/wordgo/pkg/models"
)

type fakeLearners struct {
	byHour map[int][]models.Learner
	err    error
}

func (f *fakeLearners) GetByID(_ context.Context, id int64) (*models.Learner, error) {
	for _, ls := range f.byHour {
		for _, l := range ls {
			if l.ID == id {
				l := l
				return &l, nil
			}
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeLearners) GetForNotification(_ context.Context, hour int) ([]models.Learner, error) {
	return f.byHour[hour], f.err
}

type fakeDue struct {
	counts map[int64]int
	failID int64
}

func (f *fakeDue) CountDue(_ context.Context, userID int64, _ time.Time) (int, error) {
	if userID == f.failID {
		return 0, errors.New("db down")
	}
	return f.counts[userID], nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent map[int64]int
}

func (n *recordingNotifier) SendReminder(_ context.Context, learner models.Learner, count int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sent == nil {
		n.sent = map[int64]int{}
	}
	n.sent[learner.ID] = count
	return nil
}

func (n *recordingNotifier) snapshot() map[int64]int {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make(map[int64]int, len(n.sent))
	for k, v := range n.sent {
		out[k] = v
	}
	return out
}

var reminderCfg = config.Reminders{StartHour: 8, EndHour: 22, Interval: time.Hour, Workers: 2}

func nineAM() time.Time {
	return time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
}

func TestCheckDueSendsCappedReminders(t *testing.T) {
	defer goleak.VerifyNone(t)

	learners := &fakeLearners{byHour: map[int][]models.Learner{
		9: {
			{ID: 1, Username: "a", WordsPerSession: 10},
			{ID: 2, Username: "b", WordsPerSession: 5},
			{ID: 3, Username: "c", WordsPerSession: 10},
			{ID: 4, Username: "d"},
		},
	}}
	due := &fakeDue{counts: map[int64]int{1: 3, 2: 12, 3: 0, 4: 7}}
	notifier := &recordingNotifier{}

	s := New(learners, due, notifier, reminderCfg, zap.NewNop())
	require.NoError(t, s.CheckDue(context.Background(), nineAM()))

	assert.Equal(t, map[int64]int{1: 3, 2: 5, 4: 7}, notifier.snapshot())
}

func TestCheckDueOutsideWindow(t *testing.T) {
	defer goleak.VerifyNone(t)

	learners := &fakeLearners{byHour: map[int][]models.Learner{3: {{ID: 1}}}}
	notifier := &recordingNotifier{}

	s := New(learners, &fakeDue{counts: map[int64]int{1: 4}}, notifier, reminderCfg, zap.NewNop())
	require.NoError(t, s.CheckDue(context.Background(), time.Date(2024, 6, 3, 3, 0, 0, 0, time.UTC)))

	assert.Empty(t, notifier.snapshot())
}

func TestCheckDueUsesUTCHour(t *testing.T) {
	defer goleak.VerifyNone(t)

	learners := &fakeLearners{byHour: map[int][]models.Learner{
		9:  {{ID: 1}},
		12: {{ID: 2}},
	}}
	notifier := &recordingNotifier{}
	s := New(learners, &fakeDue{counts: map[int64]int{1: 2, 2: 2}}, notifier, reminderCfg, zap.NewNop())

	// 12:00 at UTC+3 is 09:00 UTC.
	moscow := time.FixedZone("UTC+3", 3*60*60)
	require.NoError(t, s.CheckDue(context.Background(), time.Date(2024, 6, 3, 12, 0, 0, 0, moscow)))
	assert.Equal(t, map[int64]int{1: 2}, notifier.snapshot())

	// 01:00 at UTC-8 is 09:00 UTC, inside the window even though the local hour is not.
	pacific := time.FixedZone("UTC-8", -8*60*60)
	notifier = &recordingNotifier{}
	s = New(learners, &fakeDue{counts: map[int64]int{1: 4}}, notifier, reminderCfg, zap.NewNop())
	require.NoError(t, s.CheckDue(context.Background(), time.Date(2024, 6, 3, 1, 0, 0, 0, pacific)))
	assert.Equal(t, map[int64]int{1: 4}, notifier.snapshot())
}

func TestCheckDueCountFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	learners := &fakeLearners{byHour: map[int][]models.Learner{9: {{ID: 1}, {ID: 2}, {ID: 3}}}}
	notifier := &recordingNotifier{}

	s := New(learners, &fakeDue{counts: map[int64]int{1: 1, 3: 1}, failID: 2}, notifier, reminderCfg, zap.NewNop())
	err := s.CheckDue(context.Background(), nineAM())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "learner 2")
	assert.Empty(t, notifier.snapshot())
}

func TestCheckDueLearnerLookupFailure(t *testing.T) {
	learners := &fakeLearners{err: errors.New("db down")}

	s := New(learners, &fakeDue{}, &recordingNotifier{}, reminderCfg, zap.NewNop())
	assert.Error(t, s.CheckDue(context.Background(), nineAM()))
}

func TestRunManualCheck(t *testing.T) {
	learners := &fakeLearners{byHour: map[int][]models.Learner{9: {{ID: 1, WordsPerSession: 2}, {ID: 2}}}}
	notifier := &recordingNotifier{}

	s := New(learners, &fakeDue{counts: map[int64]int{1: 6}}, notifier, reminderCfg, zap.NewNop())

	// Outside notification hours and above the session size: still sent, uncapped.
	require.NoError(t, s.RunManualCheck(context.Background(), 1, time.Date(2024, 6, 3, 2, 0, 0, 0, time.UTC)))
	require.NoError(t, s.RunManualCheck(context.Background(), 2, nineAM()))
	assert.Equal(t, map[int64]int{1: 6}, notifier.snapshot())

	assert.Error(t, s.RunManualCheck(context.Background(), 99, nineAM()))
}

func TestStartRunsReminderJob(t *testing.T) {
	learners := &fakeLearners{byHour: map[int][]models.Learner{}}
	for h := 0; h < 24; h++ {
		learners.byHour[h] = []models.Learner{{ID: 7}}
	}
	notifier := &recordingNotifier{}
	cfg := config.Reminders{StartHour: 0, EndHour: 23, Interval: time.Hour, Workers: 1}

	s := New(learners, &fakeDue{counts: map[int64]int{7: 2}}, notifier, cfg, zap.NewNop())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	require.Eventually(t, func() bool {
		return notifier.snapshot()[7] == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestLogNotifier(t *testing.T) {
	n := LogNotifier{Logger: zap.NewNop()}
	assert.NoError(t, n.SendReminder(context.Background(), models.Learner{ID: 1}, 3))
}
