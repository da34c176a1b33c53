package worker

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	amessages "github.com/airenas/async-api/pkg/messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vgarvardt/gue/v5"

	gapi "github.com/vibra-app/vibra/internal/pkg/genai/api"
	"github.com/vibra-app/vibra/internal/pkg/messages"
	"github.com/vibra-app/vibra/internal/pkg/persistence"
	"github.com/vibra-app/vibra/internal/pkg/status"
	"github.com/vibra-app/vibra/internal/pkg/test"
	"github.com/vibra-app/vibra/internal/pkg/test/mocks"
)

var (
	filerMock     *mocks.Filer
	dbMock        *mocks.DB
	senderMock    *mocks.Sender
	generatorMock *mocks.Generator
	srvData       *ServiceData
)

func initTest(t *testing.T) {
	filerMock = &mocks.Filer{}
	dbMock = &mocks.DB{}
	senderMock = &mocks.Sender{}
	generatorMock = &mocks.Generator{}
	srvData = &ServiceData{DB: dbMock, GueClient: &gue.Client{}, WorkerCount: 10, MsgSender: senderMock,
		Filer: filerMock, Generator: generatorMock, TargetYear: 2026, Testing: true}
	dbMock.On("UpdateStatus", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	dbMock.On("UpdateReading", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	dbMock.On("CompleteResult", mock.Anything, mock.Anything).Return(nil)
	senderMock.On("SendMessage", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	generatorMock.On("GenerateReading", mock.Anything, mock.Anything).Return(newTestReading(), nil)
	generatorMock.On("GenerateImage", mock.Anything, mock.Anything, mock.Anything).
		Return(&gapi.ImageData{Content: []byte("img"), MimeType: "image/png"}, nil)
	filerMock.On("SaveImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("http://files/b/1/image.png", nil)
}

func newTestReading() *persistence.Reading {
	return &persistence.Reading{Headline: "h", Overview: "o", LoveLife: "l", Career: "c",
		Health: "he", Spirituality: "s", NewYearMessage: "m", Mantra: "ma",
		Advice: []persistence.AdviceItem{{Area: "a", Tip: "t"}, {Area: "a", Tip: "t"},
			{Area: "a", Tip: "t"}, {Area: "a", Tip: "t"}, {Area: "a", Tip: "t"}}}
}

func newTestResult(st status.Status) *persistence.Result {
	return &persistence.Result{ID: "1", BirthDate: time.Date(1990, 3, 15, 0, 0, 0, 0, time.UTC),
		VibrationNumber: 5, Status: st.String(), Created: time.Now()}
}

func newTestMsg() *messages.GenerateMessage {
	return &messages.GenerateMessage{QueueMessage: amessages.QueueMessage{ID: "1"},
		UserName: "Ana", BirthDate: time.Date(1990, 3, 15, 0, 0, 0, 0, time.UTC), VibrationNumber: 5}
}

func Test_handleGenerate(t *testing.T) {
	initTest(t)
	dbMock.On("LoadResult", mock.Anything, mock.Anything).Return(newTestResult(status.Pending), nil)
	err := handleGenerate(test.Ctx(t), newTestMsg(), srvData)
	assert.Nil(t, err)
	require.Equal(t, 1, len(senderMock.Calls))
	assert.Equal(t, messages.StatusChange, senderMock.Calls[0].Arguments[2])
	cArg := testCompleteArg(t)
	assert.NotNil(t, cArg.Reading)
	assert.Equal(t, "http://files/b/1/image.png", cArg.ImageBlobPath.String)
}

func Test_handleGenerate_imageFail_completes(t *testing.T) {
	initTest(t)
	dbMock.On("LoadResult", mock.Anything, mock.Anything).Return(newTestResult(status.Pending), nil)
	generatorMock.ExpectedCalls = nil
	generatorMock.On("GenerateReading", mock.Anything, mock.Anything).Return(newTestReading(), nil)
	generatorMock.On("GenerateImage", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("olia err"))
	err := handleGenerate(test.Ctx(t), newTestMsg(), srvData)
	assert.Nil(t, err)
	cArg := testCompleteArg(t)
	assert.NotNil(t, cArg.Reading)
	assert.False(t, cArg.ImageBlobPath.Valid)
}

func Test_handleGenerate_skipsExistingReading(t *testing.T) {
	initTest(t)
	res := newTestResult(status.Processing)
	res.Reading = newTestReading()
	dbMock.On("LoadResult", mock.Anything, mock.Anything).Return(res, nil)
	err := handleGenerate(test.Ctx(t), newTestMsg(), srvData)
	assert.Nil(t, err)
	for _, c := range generatorMock.Calls {
		assert.NotEqual(t, "GenerateReading", c.Method)
	}
	cArg := testCompleteArg(t)
	assert.Equal(t, res.Reading, cArg.Reading)
}

func Test_handleGenerate_terminalSkip(t *testing.T) {
	initTest(t)
	dbMock.On("LoadResult", mock.Anything, mock.Anything).Return(newTestResult(status.Completed), nil)
	err := handleGenerate(test.Ctx(t), newTestMsg(), srvData)
	assert.Nil(t, err)
	require.Equal(t, 1, len(dbMock.Calls)) // just load
	assert.Equal(t, 0, len(generatorMock.Calls))
}

func Test_handleGenerate_createsMissingRecord(t *testing.T) {
	initTest(t)
	dbMock.On("LoadResult", mock.Anything, mock.Anything).Return(nil, nil)
	dbMock.On("InsertResult", mock.Anything, mock.Anything).Return(nil)
	err := handleGenerate(test.Ctx(t), newTestMsg(), srvData)
	assert.Nil(t, err)
	var inserted *persistence.Result
	for _, c := range dbMock.Calls {
		if c.Method == "InsertResult" {
			inserted = c.Arguments[1].(*persistence.Result)
		}
	}
	require.NotNil(t, inserted)
	assert.Equal(t, "1", inserted.ID)
	assert.Equal(t, 5, inserted.VibrationNumber)
	assert.Equal(t, "Ana", inserted.UserName.String)
}

func Test_handleGenerate_failReading(t *testing.T) {
	initTest(t)
	dbMock.On("LoadResult", mock.Anything, mock.Anything).Return(newTestResult(status.Pending), nil)
	generatorMock.ExpectedCalls = nil
	generatorMock.On("GenerateReading", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("olia err"))
	err := handleGenerate(test.Ctx(t), newTestMsg(), srvData)
	assert.NotNil(t, err)
}

func Test_handleGenerate_withPhoto(t *testing.T) {
	initTest(t)
	dbMock.On("LoadResult", mock.Anything, mock.Anything).Return(newTestResult(status.Pending), nil)
	filerMock.On("LoadFile", mock.Anything, "1/photo").Return(newTestFile("photo data"), nil)
	m := newTestMsg()
	m.PhotoPath = "1/photo"
	err := handleGenerate(test.Ctx(t), m, srvData)
	assert.Nil(t, err)
	for _, c := range generatorMock.Calls {
		if c.Method == "GenerateImage" {
			assert.Equal(t, []byte("photo data"), c.Arguments[2])
		}
	}
}

func Test_handleGenerate_photoLoadFail_continues(t *testing.T) {
	initTest(t)
	dbMock.On("LoadResult", mock.Anything, mock.Anything).Return(newTestResult(status.Pending), nil)
	filerMock.On("LoadFile", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("olia err"))
	m := newTestMsg()
	m.PhotoPath = "1/photo"
	err := handleGenerate(test.Ctx(t), m, srvData)
	assert.Nil(t, err)
	cArg := testCompleteArg(t)
	assert.True(t, cArg.ImageBlobPath.Valid)
}

func Test_handleFailure(t *testing.T) {
	initTest(t)
	dbMock.On("LoadResult", mock.Anything, mock.Anything).Return(newTestResult(status.Processing), nil)
	dbMock.On("MarkError", mock.Anything, "1", "olia err").Return(nil)
	err := handleFailure(test.Ctx(t), &messages.FailureMessage{
		QueueMessage: amessages.QueueMessage{ID: "1"}, Error: "olia err"}, srvData)
	assert.Nil(t, err)
	require.Equal(t, 1, len(senderMock.Calls))
	assert.Equal(t, messages.StatusChange, senderMock.Calls[0].Arguments[2])
}

func Test_handleFailure_terminalSkip(t *testing.T) {
	initTest(t)
	dbMock.On("LoadResult", mock.Anything, mock.Anything).Return(newTestResult(status.Error), nil)
	err := handleFailure(test.Ctx(t), &messages.FailureMessage{
		QueueMessage: amessages.QueueMessage{ID: "1"}, Error: "olia err"}, srvData)
	assert.Nil(t, err)
	require.Equal(t, 1, len(dbMock.Calls)) // just load
	assert.Equal(t, 0, len(senderMock.Calls))
}

func Test_makeFailureHandler_retries(t *testing.T) {
	initTest(t)
	fh := makeFailureHandler(srvData)
	for _, ec := range []int32{0, 1} {
		retry, _, err := fh(test.Ctx(t), newTestMsg(), fmt.Errorf("olia err"), &gue.Job{ErrorCount: ec})
		assert.True(t, retry, "errCount %d", ec)
		assert.Nil(t, err)
	}
	assert.Equal(t, 0, len(senderMock.Calls))
}

func Test_makeFailureHandler_routesToFail(t *testing.T) {
	initTest(t)
	fh := makeFailureHandler(srvData)
	// third failure exhausts the two allowed retries
	retry, _, err := fh(test.Ctx(t), newTestMsg(), fmt.Errorf("olia err"), &gue.Job{ErrorCount: 2})
	assert.False(t, retry)
	assert.Nil(t, err)
	require.Equal(t, 1, len(senderMock.Calls))
	assert.Equal(t, wrkQueuePrefix+wrkFail, senderMock.Calls[0].Arguments[2])
	fm, ok := senderMock.Calls[0].Arguments[1].(*messages.FailureMessage)
	require.True(t, ok)
	assert.Equal(t, "olia err", fm.Error)
}

func Test_validate(t *testing.T) {
	initTest(t)
	tests := []struct {
		name    string
		change  func(*ServiceData)
		wantErr bool
	}{
		{name: "OK", change: func(d *ServiceData) {}, wantErr: false},
		{name: "Fail no gue client", change: func(d *ServiceData) { d.GueClient = nil }, wantErr: true},
		{name: "Fail no workers", change: func(d *ServiceData) { d.WorkerCount = 0 }, wantErr: true},
		{name: "Fail no sender", change: func(d *ServiceData) { d.MsgSender = nil }, wantErr: true},
		{name: "Fail no db", change: func(d *ServiceData) { d.DB = nil }, wantErr: true},
		{name: "Fail no filer", change: func(d *ServiceData) { d.Filer = nil }, wantErr: true},
		{name: "Fail no generator", change: func(d *ServiceData) { d.Generator = nil }, wantErr: true},
		{name: "Fail no year", change: func(d *ServiceData) { d.TargetYear = 0 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &ServiceData{DB: dbMock, GueClient: &gue.Client{}, WorkerCount: 10, MsgSender: senderMock,
				Filer: filerMock, Generator: generatorMock, TargetYear: 2026}
			tt.change(d)
			err := validate(d)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func Test_extension(t *testing.T) {
	assert.Equal(t, ".jpg", extension("image/jpeg"))
	assert.Equal(t, ".webp", extension("image/webp"))
	assert.Equal(t, ".png", extension("image/png"))
	assert.Equal(t, ".png", extension(""))
}

func testCompleteArg(t *testing.T) *persistence.Result {
	t.Helper()
	for _, c := range dbMock.Calls {
		if c.Method == "CompleteResult" {
			return c.Arguments[1].(*persistence.Result)
		}
	}
	require.Fail(t, "no CompleteResult call")
	return nil
}

type testFile struct{ *bytes.Reader }

func (f testFile) Close() error { return nil }

func newTestFile(data string) testFile {
	return testFile{bytes.NewReader([]byte(data))}
}
