package tasks

import (
	"testing"
	"time"

	"github.com/hibiken/asynq"
)

func taskID(opts []asynq.Option) string {
	var id string
	for _, o := range opts {
		if o.Type() == asynq.TaskIDOpt {
			id, _ = o.Value().(string)
		}
	}
	return id
}

func TestDeliverNotificationTaskRoundTrip(t *testing.T) {
	task, opts, err := NewDeliverNotificationTask("n-1", 5)
	if err != nil {
		t.Fatalf("NewDeliverNotificationTask: %v", err)
	}
	if task.Type() != TypeDeliverNotification {
		t.Fatalf("type = %q", task.Type())
	}
	if len(opts) == 0 {
		t.Fatal("expected queue and retry options")
	}
	p, err := ParseDeliverNotificationPayload(task)
	if err != nil || p.NotificationID != "n-1" {
		t.Fatalf("payload = %+v, err = %v", p, err)
	}
}

func TestDeliverNotificationTaskDefaultsRetry(t *testing.T) {
	_, opts, err := NewDeliverNotificationTask("n-1", 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, o := range opts {
		if o.Type() == asynq.MaxRetryOpt && o.Value().(int) != 5 {
			t.Errorf("max retry = %v, want 5", o.Value())
		}
	}
	if got := taskID(opts); got != "notification:n-1" {
		t.Errorf("task id = %q", got)
	}
}

func TestRedeliverNotificationTaskIDIsScopedToSweep(t *testing.T) {
	sweep := time.Date(2025, 3, 10, 11, 30, 0, 0, time.UTC)
	task, opts, err := NewRedeliverNotificationTask("n-1", 5, sweep)
	if err != nil {
		t.Fatal(err)
	}
	if task.Type() != TypeDeliverNotification {
		t.Fatalf("type = %q", task.Type())
	}
	first := taskID(opts)
	if first == "notification:n-1" || first == "" {
		t.Fatalf("task id = %q, want a sweep scoped id", first)
	}
	_, later, _ := NewRedeliverNotificationTask("n-1", 5, sweep.Add(5*time.Minute))
	if taskID(later) == first {
		t.Error("later sweep reused the task id")
	}
}
