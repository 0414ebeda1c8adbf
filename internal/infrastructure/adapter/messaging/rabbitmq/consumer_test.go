package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/tts-ledger/internal/infrastructure/adapter/logger"
	mockcore "github.com/amirhossein-jamali/tts-ledger/mocks/port/core"
	mockmessaging "github.com/amirhossein-jamali/tts-ledger/mocks/port/messaging"
)

type consumerFixture struct {
	broker   *fakeBroker
	handler  *mockmessaging.MockTaskHandler
	ack      *fakeAcknowledger
	consumer *Consumer
}

func newConsumerFixture(t *testing.T) *consumerFixture {
	broker := newFakeBroker()
	handler := mockmessaging.NewMockTaskHandler(t)
	tp := mockcore.NewMockTimeProvider(t).Frozen(time.Now())

	cfg := DefaultConsumerConfig("amqp://test", testTopology, "worker-1")
	cfg.TaskTimeout = time.Second

	return &consumerFixture{
		broker:   broker,
		handler:  handler,
		ack:      newFakeAcknowledger(),
		consumer: newConsumer(cfg, broker.dial, handler, tp, logger.NewNoopLogger()),
	}
}

func (f *consumerFixture) deliver(tag uint64, body []byte) {
	f.broker.deliveries <- amqp.Delivery{Acknowledger: f.ack, DeliveryTag: tag, Body: body}
}

func (f *consumerFixture) deliverTask(t *testing.T, tag uint64, task entity.GenerationTask) {
	body, err := json.Marshal(task)
	require.NoError(t, err)
	f.deliver(tag, body)
}

func (f *consumerFixture) waitSettled(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-f.ack.settled:
		case <-time.After(2 * time.Second):
			t.Fatalf("delivery %d was never settled", i+1)
		}
	}
}

// run starts the consumer and returns a func that stops it and waits for Run to return
func (f *consumerFixture) run(t *testing.T) func() error {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.consumer.Run(ctx) }()

	return func() error {
		cancel()
		select {
		case err := <-done:
			return err
		case <-time.After(2 * time.Second):
			t.Fatal("consumer did not stop")
			return nil
		}
	}
}

func TestConsumer_AcksCompletedTask(t *testing.T) {
	f := newConsumerFixture(t)
	task := sampleTask()
	f.handler.On("Handle", mock.Anything, task).Return(nil).Once()

	stop := f.run(t)
	f.deliverTask(t, 1, task)
	f.waitSettled(t, 1)
	require.NoError(t, stop())

	acked, nacked, _ := f.ack.snapshot()
	assert.Equal(t, []uint64{1}, acked)
	assert.Empty(t, nacked)

	ch := f.broker.lastConn().channels[0]
	assert.Equal(t, 1, ch.qos)
	assert.Equal(t, "worker-1", ch.consuming)
	assert.True(t, ch.cancelled)
}

func TestConsumer_RejectsMalformedJSONWithoutRequeue(t *testing.T) {
	f := newConsumerFixture(t)

	stop := f.run(t)
	f.deliver(7, []byte("{not json"))
	f.waitSettled(t, 1)
	require.NoError(t, stop())

	_, nacked, requeue := f.ack.snapshot()
	assert.Equal(t, []uint64{7}, nacked)
	assert.Equal(t, []bool{false}, requeue)
	f.handler.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestConsumer_RejectsTaskWithMissingFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*entity.GenerationTask)
	}{
		{"missing generation id", func(task *entity.GenerationTask) { task.GenerationID = "" }},
		{"blank text", func(task *entity.GenerationTask) { task.Text = "  " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newConsumerFixture(t)
			task := sampleTask()
			tt.mutate(&task)

			stop := f.run(t)
			f.deliverTask(t, 3, task)
			f.waitSettled(t, 1)
			require.NoError(t, stop())

			_, nacked, requeue := f.ack.snapshot()
			assert.Equal(t, []uint64{3}, nacked)
			assert.Equal(t, []bool{false}, requeue)
		})
	}
}

func TestConsumer_FailedTaskIsNotRequeued(t *testing.T) {
	f := newConsumerFixture(t)
	task := sampleTask()
	f.handler.On("Handle", mock.Anything, task).
		Return(errs.NewGenerationError(task.GenerationID, task.TaskID, "synthesize", errs.ErrGenerationEngineFailure)).Once()

	stop := f.run(t)
	f.deliverTask(t, 4, task)
	f.waitSettled(t, 1)
	require.NoError(t, stop())

	acked, nacked, requeue := f.ack.snapshot()
	assert.Empty(t, acked)
	assert.Equal(t, []uint64{4}, nacked)
	assert.Equal(t, []bool{false}, requeue)
}

func TestConsumer_UnknownGenerationIsAcked(t *testing.T) {
	f := newConsumerFixture(t)
	task := sampleTask()
	f.handler.On("Handle", mock.Anything, task).
		Return(fmt.Errorf("%w: %s", errs.ErrGenerationNotFound, task.GenerationID)).Once()

	stop := f.run(t)
	f.deliverTask(t, 5, task)
	f.waitSettled(t, 1)
	require.NoError(t, stop())

	acked, _, _ := f.ack.snapshot()
	assert.Equal(t, []uint64{5}, acked)
}

func TestConsumer_HandlerContextHasTaskDeadline(t *testing.T) {
	f := newConsumerFixture(t)
	task := sampleTask()
	f.handler.On("Handle", mock.Anything, task).Return(nil).Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
	}).Once()

	stop := f.run(t)
	f.deliverTask(t, 6, task)
	f.waitSettled(t, 1)
	require.NoError(t, stop())
}

func TestConsumer_ShutdownLeavesInFlightTaskUnacknowledged(t *testing.T) {
	f := newConsumerFixture(t)
	task := sampleTask()
	started := make(chan struct{})
	release := make(chan struct{})
	f.handler.On("Handle", mock.Anything, task).Return(nil).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Once()

	stop := f.run(t)
	f.deliverTask(t, 8, task)
	<-started

	require.NoError(t, stop())
	acked, nacked, _ := f.ack.snapshot()
	assert.Empty(t, acked)
	assert.Empty(t, nacked)
	assert.True(t, f.broker.lastConn().IsClosed())

	close(release)
	f.waitSettled(t, 1)
}

func TestConsumer_ReconnectsAfterConnectionLoss(t *testing.T) {
	f := newConsumerFixture(t)
	task := sampleTask()
	f.handler.On("Handle", mock.Anything, task).Return(nil).Twice()

	stop := f.run(t)
	f.deliverTask(t, 1, task)
	f.waitSettled(t, 1)

	first := f.broker.lastConn()
	first.drop()
	assert.Eventually(t, func() bool { return f.broker.dialCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	f.deliverTask(t, 2, task)
	f.waitSettled(t, 1)
	require.NoError(t, stop())

	acked, _, _ := f.ack.snapshot()
	assert.Equal(t, []uint64{1, 2}, acked)
}

func TestConsumer_GivesUpAfterReconnectBudget(t *testing.T) {
	f := newConsumerFixture(t)
	f.consumer.cfg.ReconnectAttempts = 3
	f.broker.dialErrs = []error{errRefused, errRefused, errRefused}

	err := f.consumer.Run(context.Background())

	assert.Error(t, err)
	assert.Equal(t, 3, f.broker.dialCount())
}
