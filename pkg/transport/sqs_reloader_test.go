package transport

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

type MockSQSClient struct {
	mock.Mock
}

func (m *MockSQSClient) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.ReceiveMessageOutput), args.Error(1)
}

func (m *MockSQSClient) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	args := m.Called(ctx, params)
	return nil, args.Error(1)
}

// MockReloader Thread-Safe
type MockReloader struct {
	mu    sync.Mutex
	calls int
	Err   error
}

func (m *MockReloader) Reload(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	return m.Err
}

func (m *MockReloader) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

const queueURL = "https://sqs.us-east-1.amazonaws.com/123/reload-queue"

func message(handle string) types.Message {
	return types.Message{Body: stringPtr(`{"action":"reload"}`), ReceiptHandle: stringPtr(handle)}
}

// idle simula o long polling sem mensagens.
func idle(m *MockSQSClient) {
	m.On("ReceiveMessage", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { time.Sleep(5 * time.Millisecond) }).
		Return(&sqs.ReceiveMessageOutput{}, nil).Maybe()
}

func runFor(r *SQSReloader, d time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()
	time.Sleep(d)
	cancel()
	<-done
}

// --- Tests ---

func TestSQSReloader_ReloadsOncePerBatch(t *testing.T) {
	mockSQS := new(MockSQSClient)
	reloader := &MockReloader{}

	mockSQS.On("ReceiveMessage", mock.Anything, mock.MatchedBy(func(in *sqs.ReceiveMessageInput) bool {
		return *in.QueueUrl == queueURL && in.MaxNumberOfMessages == 10 && in.WaitTimeSeconds == 1
	})).Return(&sqs.ReceiveMessageOutput{
		Messages: []types.Message{message("handle_1"), message("handle_2")},
	}, nil).Once()
	idle(mockSQS)
	mockSQS.On("DeleteMessage", mock.Anything, mock.Anything).Return(nil, nil)

	runFor(NewSQSReloader(mockSQS, queueURL, reloader, 1, zerolog.Nop()), 100*time.Millisecond)

	assert.Equal(t, 1, reloader.Calls(), "um lote deve gerar uma única recarga")
	for _, h := range []string{"handle_1", "handle_2"} {
		mockSQS.AssertCalled(t, "DeleteMessage", mock.Anything, &sqs.DeleteMessageInput{
			QueueUrl:      stringPtr(queueURL),
			ReceiptHandle: stringPtr(h),
		})
	}
}

func TestSQSReloader_DeletesEvenWhenReloadFails(t *testing.T) {
	mockSQS := new(MockSQSClient)
	reloader := &MockReloader{Err: errors.New("documento corrompido")}

	mockSQS.On("ReceiveMessage", mock.Anything, mock.Anything).Return(&sqs.ReceiveMessageOutput{
		Messages: []types.Message{message("handle_x")},
	}, nil).Once()
	idle(mockSQS)
	mockSQS.On("DeleteMessage", mock.Anything, mock.Anything).Return(nil, errors.New("falha")).Once()

	runFor(NewSQSReloader(mockSQS, queueURL, reloader, 0, zerolog.Nop()), 80*time.Millisecond)

	assert.Equal(t, 1, reloader.Calls())
	mockSQS.AssertNumberOfCalls(t, "DeleteMessage", 1)
}

func TestSQSReloader_RetriesAfterReceiveError(t *testing.T) {
	mockSQS := new(MockSQSClient)
	reloader := &MockReloader{}

	mockSQS.On("ReceiveMessage", mock.Anything, mock.Anything).Return(nil, errors.New("throttled")).Once()
	idle(mockSQS)

	r := NewSQSReloader(mockSQS, queueURL, reloader, 0, zerolog.Nop())
	r.retryDelay = 10 * time.Millisecond
	runFor(r, 80*time.Millisecond)

	assert.Zero(t, reloader.Calls())
	assert.Greater(t, len(mockSQS.Calls), 1, "deveria voltar a consultar a fila após o erro")
}

func TestSQSReloader_StopsOnCancelDuringRetry(t *testing.T) {
	mockSQS := new(MockSQSClient)
	mockSQS.On("ReceiveMessage", mock.Anything, mock.Anything).Return(nil, errors.New("offline"))

	r := NewSQSReloader(mockSQS, queueURL, &MockReloader{}, 0, zerolog.Nop())
	r.retryDelay = time.Hour

	start := time.Now()
	runFor(r, 20*time.Millisecond)
	assert.Less(t, time.Since(start), time.Second)
	mockSQS.AssertNumberOfCalls(t, "ReceiveMessage", 1)
}

func TestSQSReloader_DisabledWithoutQueue(t *testing.T) {
	mockSQS := new(MockSQSClient)
	NewSQSReloader(mockSQS, "", &MockReloader{}, 0, zerolog.Nop()).Start(context.Background())
	mockSQS.AssertNotCalled(t, "ReceiveMessage", mock.Anything, mock.Anything)
}

func stringPtr(s string) *string {
	return &s
}
