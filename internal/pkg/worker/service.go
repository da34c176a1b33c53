package worker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	amessages "github.com/airenas/async-api/pkg/messages"
	"github.com/airenas/go-app/pkg/goapp"
	"github.com/vgarvardt/gue/v5"

	gapi "github.com/vibra-app/vibra/internal/pkg/genai/api"
	"github.com/vibra-app/vibra/internal/pkg/messages"
	"github.com/vibra-app/vibra/internal/pkg/persistence"
	"github.com/vibra-app/vibra/internal/pkg/prompts"
	"github.com/vibra-app/vibra/internal/pkg/status"
	"github.com/vibra-app/vibra/internal/pkg/utils"
	"github.com/vibra-app/vibra/internal/pkg/utils/handler"
	"github.com/vibra-app/vibra/internal/pkg/vibration"
)

// MsgSender provides send msg functionality
type MsgSender interface {
	SendMessage(context.Context, amessages.Message, string) error
}

// DB provides persistence functionality
type DB interface {
	InsertResult(ctx context.Context, item *persistence.Result) error
	LoadResult(ctx context.Context, id string) (*persistence.Result, error)
	UpdateStatus(ctx context.Context, id string, to status.Status) error
	UpdateReading(ctx context.Context, id string, reading *persistence.Reading) error
	CompleteResult(ctx context.Context, item *persistence.Result) error
	MarkError(ctx context.Context, id, errMsg string) error
}

// Filer stores and retrieves files
type Filer interface {
	LoadFile(ctx context.Context, fileName string) (io.ReadSeekCloser, error)
	SaveImage(ctx context.Context, name string, r io.Reader, fileSize int64, contentType string) (string, error)
}

// Generator provides AI content generation
type Generator interface {
	GenerateReading(ctx context.Context, prompt string) (*persistence.Reading, error)
	GenerateImage(ctx context.Context, prompt string, reference []byte) (*gapi.ImageData, error)
}

// ServiceData keeps data required for service work
type ServiceData struct {
	GueClient   *gue.Client
	WorkerCount int
	MsgSender   MsgSender
	DB          DB
	Filer       Filer
	Generator   Generator
	TargetYear  int
	Testing     bool
}

const (
	wrkQueuePrefix = messages.Work + ":"
	wrkFail        = "wrk-fail"
)

// StartWorkerService starts the event queue listener service to listen for work events
// returns channel for tracking if all jobs are finished
func StartWorkerService(ctx context.Context, data *ServiceData) (chan struct{}, error) {
	if err := validate(data); err != nil {
		return nil, err
	}
	goapp.Log.Info().Int("workers", data.WorkerCount).Msg("Starting listen for messages")
	if data.Testing {
		goapp.Log.Warn().Msg("SERVICE IN TEST MODE")
	}

	wm := gue.WorkMap{
		messages.GenerateType: handler.Create(data, handleGenerate, handler.DefaultOpts[messages.GenerateMessage]().
			WithFailure(makeFailureHandler(data)).
			WithTimeout(time.Minute*10).WithBackoff(handler.DefaultBackoffOrTest(data.Testing))),
		wrkFail: handler.Create(data, handleFailure, handler.DefaultOpts[messages.FailureMessage]().
			WithBackoff(handler.DefaultBackoffOrTest(data.Testing))),
	}

	pool, err := gue.NewWorkerPool(
		data.GueClient, wm, data.WorkerCount,
		gue.WithPoolQueue(messages.Work),
		gue.WithPoolLogger(utils.NewGueLoggerAdapter()),
		gue.WithPoolPollInterval(500*time.Millisecond),
		gue.WithPoolPollStrategy(gue.RunAtPollStrategy),
		gue.WithPoolID("vibra-worker"),
	)
	if err != nil {
		return nil, fmt.Errorf("could not build gue workers pool: %w", err)
	}
	res := make(chan struct{}, 1)
	go func() {
		goapp.Log.Info().Msg("Starting workers")
		if err := pool.Run(ctx); err != nil {
			goapp.Log.Error().Err(err).Msg("pool error")
		}
		goapp.Log.Info().Msg("Pool workers finished")
		res <- struct{}{}
	}()
	return res, nil
}

func handleGenerate(ctx context.Context, m *messages.GenerateMessage, data *ServiceData) error {
	goapp.Log.Info().Str("ID", m.ID).Int("vibration", m.VibrationNumber).Msg("handling generate")
	res, err := ensureResult(ctx, m, data)
	if err != nil {
		return fmt.Errorf("can't load result: %w", err)
	}
	if st := status.From(res.Status); st.IsTerminal() {
		goapp.Log.Info().Str("ID", m.ID).Str("status", res.Status).Msg("already finished - skip")
		return nil
	}
	v, ok := vibration.Get(m.VibrationNumber)
	if !ok {
		return fmt.Errorf("no vibration %d", m.VibrationNumber)
	}
	if err := data.DB.UpdateStatus(ctx, m.ID, status.Processing); err != nil {
		return fmt.Errorf("can't update status: %w", err)
	}

	reading := res.Reading
	if reading == nil {
		goapp.Log.Info().Str("ID", m.ID).Msg("generate reading")
		reading, err = data.Generator.GenerateReading(ctx, prompts.StructuredReading(v, m.UserName, data.TargetYear))
		if err != nil {
			return fmt.Errorf("can't generate reading: %w", err)
		}
		// checkpoint - a retried job will not pay for the reading again
		if err := data.DB.UpdateReading(ctx, m.ID, reading); err != nil {
			return fmt.Errorf("can't save reading: %w", err)
		}
	} else {
		goapp.Log.Info().Str("ID", m.ID).Msg("reading exists - skip generation")
	}

	imgURL := generateImage(ctx, m, v, data)

	res.Reading = reading
	res.ImageBlobPath = utils.ToSQLStr(imgURL)
	if err := data.DB.CompleteResult(ctx, res); err != nil {
		return fmt.Errorf("can't complete result: %w", err)
	}
	err = data.MsgSender.SendMessage(ctx, &messages.GenerateMessage{
		QueueMessage: amessages.QueueMessage{ID: m.ID}}, messages.StatusChange)
	if err != nil {
		return fmt.Errorf("can't send msg: %w", err)
	}
	goapp.Log.Info().Str("ID", m.ID).Msg("Reading generation completed")
	return nil
}

// ensureResult makes sure the row exists.
// The insert ignores conflicts, so a duplicate delivery of the start event is harmless
func ensureResult(ctx context.Context, m *messages.GenerateMessage, data *ServiceData) (*persistence.Result, error) {
	res, err := data.DB.LoadResult(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	if res != nil {
		return res, nil
	}
	goapp.Log.Info().Str("ID", m.ID).Msg("no record - creating")
	res = &persistence.Result{ID: m.ID, UserName: utils.ToSQLStr(m.UserName), BirthDate: m.BirthDate,
		VibrationNumber: m.VibrationNumber, Status: status.Pending.String(), Created: time.Now()}
	if err := data.DB.InsertResult(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// generateImage makes the artwork for the reading.
// The image is optional content - any failure here is absorbed
// and the workflow completes with no image
func generateImage(ctx context.Context, m *messages.GenerateMessage, v *vibration.Vibration, data *ServiceData) string {
	var photo []byte
	if m.PhotoPath != "" {
		var err error
		photo, err = loadPhoto(ctx, m.PhotoPath, data)
		if err != nil {
			goapp.Log.Warn().Err(err).Str("ID", m.ID).Msg("can't load photo - continue without it")
			photo = nil
		}
	}
	img, err := data.Generator.GenerateImage(ctx, prompts.Image(v, len(photo) > 0, data.TargetYear), photo)
	if err != nil {
		goapp.Log.Warn().Err(err).Str("ID", m.ID).Msg("can't generate image - continue without it")
		return ""
	}
	name := fmt.Sprintf("%s/image%s", m.ID, extension(img.MimeType))
	url, err := data.Filer.SaveImage(ctx, name, bytes.NewReader(img.Content), int64(len(img.Content)), img.MimeType)
	if err != nil {
		goapp.Log.Warn().Err(err).Str("ID", m.ID).Msg("can't save image - continue without it")
		return ""
	}
	return url
}

func loadPhoto(ctx context.Context, name string, data *ServiceData) ([]byte, error) {
	f, err := data.Filer.LoadFile(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("can't load '%s': %w", name, err)
	}
	defer f.Close()
	res, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("can't read '%s': %w", name, err)
	}
	return res, nil
}

func handleFailure(ctx context.Context, m *messages.FailureMessage, data *ServiceData) error {
	goapp.Log.Info().Str("ID", m.ID).Str("error", m.Error).Msg("handling failure")
	res, err := data.DB.LoadResult(ctx, m.ID)
	if err != nil {
		return fmt.Errorf("can't load result: %w", err)
	}
	if res == nil {
		goapp.Log.Warn().Str("ID", m.ID).Msg("no record - ignore")
		return nil
	}
	if st := status.From(res.Status); st.IsTerminal() {
		goapp.Log.Info().Str("ID", m.ID).Str("status", res.Status).Msg("already finished - ignore")
		return nil
	}
	if err := data.DB.MarkError(ctx, m.ID, m.Error); err != nil {
		return fmt.Errorf("can't mark error: %w", err)
	}
	err = data.MsgSender.SendMessage(ctx, &messages.GenerateMessage{
		QueueMessage: amessages.QueueMessage{ID: m.ID}}, messages.StatusChange)
	if err != nil {
		return fmt.Errorf("can't send msg: %w", err)
	}
	return nil
}

// makeFailureHandler routes the job to the fail queue after retries are exhausted
func makeFailureHandler(data *ServiceData) func(context.Context, *messages.GenerateMessage, error, *gue.Job) (bool, time.Duration, error) {
	return func(ctx context.Context, m *messages.GenerateMessage, err error, j *gue.Job) (bool, time.Duration, error) {
		if j.ErrorCount <= 1 {
			return true, 0, nil
		}
		goapp.Log.Warn().Str("ID", m.ID).Int32("errCount", j.ErrorCount).Msg("retries exhausted - routing to fail handler")
		errSend := data.MsgSender.SendMessage(ctx, &messages.FailureMessage{
			QueueMessage: amessages.QueueMessage{ID: m.ID}, Error: err.Error()},
			wrkQueuePrefix+wrkFail)
		return false, 0, errSend
	}
}

func extension(mime string) string {
	switch mime {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	}
	return ".png"
}

func validate(data *ServiceData) error {
	if data.GueClient == nil {
		return fmt.Errorf("no gue client")
	}
	if data.WorkerCount < 1 {
		return fmt.Errorf("no worker count provided")
	}
	if data.MsgSender == nil {
		return fmt.Errorf("no msg sender")
	}
	if data.DB == nil {
		return fmt.Errorf("no db")
	}
	if data.Filer == nil {
		return fmt.Errorf("no filer")
	}
	if data.Generator == nil {
		return fmt.Errorf("no generator")
	}
	if data.TargetYear < 1 {
		return fmt.Errorf("no target year")
	}
	return nil
}
