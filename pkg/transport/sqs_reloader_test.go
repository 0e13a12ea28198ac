package transport

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
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

// MockEngineReloader Thread-Safe
type MockEngineReloader struct {
	mu    sync.Mutex
	Calls int
	Err   error
}

func (m *MockEngineReloader) Reload(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	return m.Err
}

// ReloadCount Helper para ler o estado de forma segura no teste
func (m *MockEngineReloader) ReloadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

// --- Tests ---

func TestSQSReloader_Integration(t *testing.T) {
	mockSQS := new(MockSQSClient)
	mockReloader := &MockEngineReloader{}

	// 1ª chamada: Retorna uma mensagem de reload
	mockSQS.On("ReceiveMessage", mock.Anything, mock.Anything).Return(&sqs.ReceiveMessageOutput{
		Messages: []types.Message{
			{
				Body:          stringPtr(`{"action":"reload"}`),
				ReceiptHandle: stringPtr("handle_123"),
			},
		},
	}, nil).Once()

	// 2ª chamada em diante: Retorna vazio para evitar loop infinito
	mockSQS.On("ReceiveMessage", mock.Anything, mock.Anything).Return(&sqs.ReceiveMessageOutput{
		Messages: []types.Message{},
	}, nil).Maybe()

	mockSQS.On("DeleteMessage", mock.Anything, mock.Anything).Return(nil, nil)

	reloader := NewSQSReloader(mockSQS, "https://sqs.us-east-1.amazonaws.com/123/reload-queue", mockReloader)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reloader.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return mockReloader.ReloadCount() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	<-done

	mockSQS.AssertCalled(t, "DeleteMessage", mock.Anything, &sqs.DeleteMessageInput{
		QueueUrl:      stringPtr("https://sqs.us-east-1.amazonaws.com/123/reload-queue"),
		ReceiptHandle: stringPtr("handle_123"),
	})
}

func TestSQSReloader_ReloadFailureStillDeletes(t *testing.T) {
	mockSQS := new(MockSQSClient)
	mockReloader := &MockEngineReloader{Err: errors.New("spec inválida")}

	mockSQS.On("ReceiveMessage", mock.Anything, mock.Anything).Return(&sqs.ReceiveMessageOutput{
		Messages: []types.Message{{ReceiptHandle: stringPtr("handle_456")}},
	}, nil).Once()
	mockSQS.On("ReceiveMessage", mock.Anything, mock.Anything).Return(&sqs.ReceiveMessageOutput{}, nil).Maybe()
	mockSQS.On("DeleteMessage", mock.Anything, mock.Anything).Return(nil, nil)

	reloader := NewSQSReloader(mockSQS, "queue", mockReloader)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reloader.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return mockReloader.ReloadCount() == 1 }, time.Second, 10*time.Millisecond)
	cancel()
	<-done

	mockSQS.AssertCalled(t, "DeleteMessage", mock.Anything, mock.Anything)
}

func TestSQSReloader_RetryAfterError(t *testing.T) {
	mockSQS := new(MockSQSClient)
	mockReloader := &MockEngineReloader{}

	mockSQS.On("ReceiveMessage", mock.Anything, mock.Anything).Return(nil, errors.New("throttled")).Once()
	mockSQS.On("ReceiveMessage", mock.Anything, mock.Anything).Return(&sqs.ReceiveMessageOutput{
		Messages: []types.Message{{ReceiptHandle: stringPtr("h")}},
	}, nil).Once()
	mockSQS.On("ReceiveMessage", mock.Anything, mock.Anything).Return(&sqs.ReceiveMessageOutput{}, nil).Maybe()
	mockSQS.On("DeleteMessage", mock.Anything, mock.Anything).Return(nil, nil)

	reloader := NewSQSReloader(mockSQS, "queue", mockReloader)
	reloader.retryDelay = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reloader.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return mockReloader.ReloadCount() == 1 }, time.Second, 10*time.Millisecond)
	cancel()
	<-done
}

func TestSQSReloader_NoQueue(t *testing.T) {
	mockSQS := new(MockSQSClient)
	NewSQSReloader(mockSQS, "", &MockEngineReloader{}).Start(context.Background())
	mockSQS.AssertNotCalled(t, "ReceiveMessage", mock.Anything, mock.Anything)
}

func stringPtr(s string) *string {
	return &s
}
