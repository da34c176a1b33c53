package readingservice

import (
	"fmt"
	"testing"

	amessages "github.com/airenas/async-api/pkg/messages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vgarvardt/gue/v5"

	"github.com/vibra-app/vibra/internal/pkg/messages"
	"github.com/vibra-app/vibra/internal/pkg/test"
	"github.com/vibra-app/vibra/internal/pkg/test/mocks"
)

var (
	handlerEHMMock *mockWSConnHandler
	hndData        *HandlerData
	connMock       *mockWSConn
)

func initHandlerTest(t *testing.T) {
	dbMock = &mocks.DB{}
	handlerEHMMock = &mockWSConnHandler{}
	connMock = &mockWSConn{}
	hndData = &HandlerData{DB: dbMock, GueClient: &gue.Client{}, WorkerCount: 10, WSHandler: handlerEHMMock}
	handlerEHMMock.On("GetConnections", mock.Anything).Return([]WsConn{connMock}, true)
	dbMock.On("LoadResult", mock.Anything, mock.Anything).Return(newTestResult(), nil)
	connMock.On("WriteJSON", mock.Anything).Return(nil)
}

func Test_handleStatusChange(t *testing.T) {
	initHandlerTest(t)
	err := handleStatusChange(test.Ctx(t), &messages.GenerateMessage{
		QueueMessage: amessages.QueueMessage{ID: testID}}, hndData)
	assert.Nil(t, err)
	require.Equal(t, 1, len(connMock.Calls))
	rv := connMock.Calls[0].Arguments[0].(*resultView)
	assert.Equal(t, testID, rv.ResultID)
	assert.Equal(t, "COMPLETED", rv.Status)
	assert.Equal(t, "http://files/b/1/image.png", rv.ImageURL)
}

func Test_handleStatusChange_NoConn(t *testing.T) {
	initHandlerTest(t)
	handlerEHMMock.ExpectedCalls = nil
	handlerEHMMock.On("GetConnections", mock.Anything).Return([]WsConn{}, false)
	err := handleStatusChange(test.Ctx(t), &messages.GenerateMessage{
		QueueMessage: amessages.QueueMessage{ID: testID}}, hndData)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(dbMock.Calls))
	assert.Equal(t, 0, len(connMock.Calls))
}

func Test_handleStatusChange_FailDB(t *testing.T) {
	initHandlerTest(t)
	dbMock.ExpectedCalls = nil
	dbMock.On("LoadResult", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("olia err"))
	err := handleStatusChange(test.Ctx(t), &messages.GenerateMessage{
		QueueMessage: amessages.QueueMessage{ID: testID}}, hndData)
	assert.NotNil(t, err)
}

func Test_handleStatusChange_NoRecord(t *testing.T) {
	initHandlerTest(t)
	dbMock.ExpectedCalls = nil
	dbMock.On("LoadResult", mock.Anything, mock.Anything).Return(nil, nil)
	err := handleStatusChange(test.Ctx(t), &messages.GenerateMessage{
		QueueMessage: amessages.QueueMessage{ID: testID}}, hndData)
	assert.NotNil(t, err)
}

func Test_handleStatusChange_FailWrite(t *testing.T) {
	initHandlerTest(t)
	connMock.ExpectedCalls = nil
	connMock.On("WriteJSON", mock.Anything).Return(fmt.Errorf("olia err"))
	err := handleStatusChange(test.Ctx(t), &messages.GenerateMessage{
		QueueMessage: amessages.QueueMessage{ID: testID}}, hndData)
	assert.Nil(t, err) // write errors are logged, not propagated
}

func Test_validateHandler(t *testing.T) {
	initHandlerTest(t)
	tests := []struct {
		name    string
		change  func(*HandlerData)
		wantErr bool
	}{
		{name: "OK", change: func(d *HandlerData) {}, wantErr: false},
		{name: "Fail no gue client", change: func(d *HandlerData) { d.GueClient = nil }, wantErr: true},
		{name: "Fail no workers", change: func(d *HandlerData) { d.WorkerCount = 0 }, wantErr: true},
		{name: "Fail no db", change: func(d *HandlerData) { d.DB = nil }, wantErr: true},
		{name: "Fail no ws handler", change: func(d *HandlerData) { d.WSHandler = nil }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &HandlerData{DB: dbMock, GueClient: &gue.Client{}, WorkerCount: 10, WSHandler: handlerEHMMock}
			tt.change(d)
			if err := validateHandler(d); (err != nil) != tt.wantErr {
				t.Errorf("validateHandler() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
