package mocks

import (
	"context"
	"io"

	"github.com/airenas/async-api/pkg/messages"
	"github.com/stretchr/testify/mock"

	gapi "github.com/vibra-app/vibra/internal/pkg/genai/api"
	"github.com/vibra-app/vibra/internal/pkg/persistence"
	"github.com/vibra-app/vibra/internal/pkg/status"
)

// Filer is minio mock
type Filer struct{ mock.Mock }

func (m *Filer) SaveFile(ctx context.Context, name string, r io.Reader, fileSize int64) error {
	args := m.Called(ctx, name, r, fileSize)
	return args.Error(0)
}

func (m *Filer) SaveImage(ctx context.Context, name string, r io.Reader, fileSize int64, contentType string) (string, error) {
	args := m.Called(ctx, name, r, fileSize, contentType)
	return args.String(0), args.Error(1)
}

// LoadFile func mock
func (m *Filer) LoadFile(ctx context.Context, fileName string) (io.ReadSeekCloser, error) {
	args := m.Called(ctx, fileName)
	return to[io.ReadSeekCloser](args.Get(0)), args.Error(1)
}

// DB is postgres DB mock
type DB struct{ mock.Mock }

func (m *DB) InsertResult(ctx context.Context, item *persistence.Result) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *DB) LoadResult(ctx context.Context, id string) (*persistence.Result, error) {
	args := m.Called(ctx, id)
	return to[*persistence.Result](args.Get(0)), args.Error(1)
}

func (m *DB) UpdateStatus(ctx context.Context, id string, to status.Status) error {
	args := m.Called(ctx, id, to)
	return args.Error(0)
}

func (m *DB) UpdateReading(ctx context.Context, id string, reading *persistence.Reading) error {
	args := m.Called(ctx, id, reading)
	return args.Error(0)
}

func (m *DB) CompleteResult(ctx context.Context, item *persistence.Result) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *DB) MarkError(ctx context.Context, id, errMsg string) error {
	args := m.Called(ctx, id, errMsg)
	return args.Error(0)
}

func (m *DB) Live(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Sender is postgres queue mock
type Sender struct{ mock.Mock }

func (m *Sender) SendMessage(ctx context.Context, msg messages.Message, queue string) error {
	args := m.Called(ctx, msg, queue)
	return args.Error(0)
}

// Generator is AI client mock
type Generator struct{ mock.Mock }

func (m *Generator) GenerateReading(ctx context.Context, prompt string) (*persistence.Reading, error) {
	args := m.Called(ctx, prompt)
	return to[*persistence.Reading](args.Get(0)), args.Error(1)
}

func (m *Generator) GenerateImage(ctx context.Context, prompt string, reference []byte) (*gapi.ImageData, error) {
	args := m.Called(ctx, prompt, reference)
	return to[*gapi.ImageData](args.Get(0)), args.Error(1)
}

func to[T interface{}](val interface{}) T {
	if val == nil {
		var res T
		return res
	}
	return val.(T)
}
