package readingservice

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/facebookgo/grace/gracehttp"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	amessages "github.com/airenas/async-api/pkg/messages"
	"github.com/vibra-app/vibra/internal/pkg/messages"
	"github.com/vibra-app/vibra/internal/pkg/numerology"
	"github.com/vibra-app/vibra/internal/pkg/persistence"
	"github.com/vibra-app/vibra/internal/pkg/status"
	"github.com/vibra-app/vibra/internal/pkg/utils"

	"github.com/airenas/go-app/pkg/goapp"

	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// FileSaver provides save file functionality
type FileSaver interface {
	SaveFile(ctx context.Context, name string, r io.Reader, fileSize int64) error
}

// MsgSender provides send msg functionality
type MsgSender interface {
	SendMessage(context.Context, amessages.Message, string) error
}

// DB provides result rows
type DB interface {
	InsertResult(ctx context.Context, item *persistence.Result) error
	LoadResult(ctx context.Context, id string) (*persistence.Result, error)
	Live(ctx context.Context) error
}

// WSConnHandler WebSocketConnection wrapper
type WSConnHandler interface {
	HandleConnection(WsConn) error
	GetConnections(id string) ([]WsConn, bool)
}

// Data keeps data required for service work
type Data struct {
	Port       int
	Saver      FileSaver
	DB         DB
	MsgSender  MsgSender
	WSHandler  WSConnHandler
	TargetYear int
}

const maxPhotoSize = 5 * 1024 * 1024

// StartWebServer starts echo web service
func StartWebServer(data *Data) error {
	goapp.Log.Info().Msgf("Starting HTTP VIBRA reading service at %d", data.Port)
	if err := validate(data); err != nil {
		return err
	}

	portStr := strconv.Itoa(data.Port)

	e := initRoutes(data)

	e.Server.Addr = ":" + portStr
	e.Server.ReadHeaderTimeout = 5 * time.Second
	e.Server.ReadTimeout = 60 * time.Second
	e.Server.WriteTimeout = 30 * time.Second

	gracehttp.SetLogger(log.New(goapp.Log, "", 0))

	return gracehttp.Serve(e.Server)
}

func validate(data *Data) error {
	if data.Saver == nil {
		return errors.New("no file saver")
	}
	if data.DB == nil {
		return fmt.Errorf("no DB")
	}
	if data.MsgSender == nil {
		return fmt.Errorf("no msg sender")
	}
	if data.WSHandler == nil {
		return fmt.Errorf("no WSHandler")
	}
	if data.TargetYear < 1 {
		return fmt.Errorf("no target year")
	}
	return nil
}

var promMdlw *prometheus.Prometheus

func init() {
	promMdlw = prometheus.NewPrometheus("vibra_reading", nil)
}

func initRoutes(data *Data) *echo.Echo {
	e := echo.New()
	e.Use(middleware.Logger())
	promMdlw.Use(e)

	e.POST("/api/generate", generate(data))
	e.GET("/api/results/:resultId", result(data))
	e.GET("/subscribe", subscribeHandler(data))
	e.GET("/live", live(data))

	goapp.Log.Info().Msg("Routes:")
	for _, r := range e.Routes() {
		goapp.Log.Info().Msgf("  %s %s", r.Method, r.Path)
	}
	return e
}

func live(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		if err := data.DB.Live(c.Request().Context()); err != nil {
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusInternalServerError, "Service error")
		}
		return c.JSONBlob(http.StatusOK, []byte(`{"service":"OK"}`))
	}
}

var reqValidator = validator.New()

type generateRequest struct {
	ResultID        string    `json:"resultId" validate:"required,uuid"`
	BirthDate       time.Time `json:"birthDate" validate:"required"`
	VibrationNumber int       `json:"vibrationNumber" validate:"required,min=1,max=9"`
	UserName        string    `json:"userName" validate:"omitempty,max=50"`
	UserPhotoBase64 string    `json:"userPhotoBase64" validate:"omitempty"`
}

type generateResponse struct {
	Success  bool   `json:"success"`
	ResultID string `json:"resultId"`
}

func generate(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("generate method")()
		ctx := c.Request().Context()

		var req generateRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "wrong request")
		}
		if err := reqValidator.Struct(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if v := numerology.ValidateBirthDate(req.BirthDate.Day(), int(req.BirthDate.Month()),
			req.BirthDate.Year()); !v.Valid {
			return echo.NewHTTPError(http.StatusBadRequest, v.Error)
		}
		if want := numerology.CalculatePersonalYear(req.BirthDate.Day(), int(req.BirthDate.Month()),
			data.TargetYear); want != req.VibrationNumber {
			return echo.NewHTTPError(http.StatusBadRequest, "wrong vibration number")
		}

		photoPath, err := savePhoto(ctx, data, req.ResultID, req.UserPhotoBase64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		err = data.DB.InsertResult(ctx, &persistence.Result{ID: req.ResultID,
			UserName: utils.ToSQLStr(req.UserName), BirthDate: req.BirthDate,
			VibrationNumber: req.VibrationNumber, Status: status.Pending.String(), Created: time.Now()})
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
		err = data.MsgSender.SendMessage(ctx, &messages.GenerateMessage{
			QueueMessage: amessages.QueueMessage{ID: req.ResultID},
			UserName:     req.UserName, BirthDate: req.BirthDate,
			VibrationNumber: req.VibrationNumber, PhotoPath: photoPath}, messages.Generate)
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusInternalServerError)
		}

		return c.JSON(http.StatusAccepted, generateResponse{Success: true, ResultID: req.ResultID})
	}
}

var allowedPhotoTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// savePhoto decodes the optional reference photo and puts it into the blob store.
// Returns the stored path, empty if no photo was provided
func savePhoto(ctx context.Context, data *Data, id, photoBase64 string) (string, error) {
	if photoBase64 == "" {
		return "", nil
	}
	if i := strings.Index(photoBase64, ","); i >= 0 {
		photoBase64 = photoBase64[i+1:]
	}
	if base64.StdEncoding.DecodedLen(len(photoBase64)) > maxPhotoSize {
		return "", fmt.Errorf("photo is too big, max %d bytes", maxPhotoSize)
	}
	photo, err := base64.StdEncoding.DecodeString(photoBase64)
	if err != nil {
		return "", fmt.Errorf("can't decode photo: %w", err)
	}
	if len(photo) > maxPhotoSize {
		return "", fmt.Errorf("photo is too big, max %d bytes", maxPhotoSize)
	}
	ext, ok := allowedPhotoTypes[http.DetectContentType(photo)]
	if !ok {
		return "", fmt.Errorf("unsupported photo type")
	}
	name := id + "/photo" + ext
	if err := data.Saver.SaveFile(ctx, name, bytes.NewReader(photo), int64(len(photo))); err != nil {
		goapp.Log.Error().Err(err).Send()
		return "", fmt.Errorf("can't save photo")
	}
	return name, nil
}

type resultView struct {
	ResultID        string               `json:"resultId"`
	Status          string               `json:"status"`
	VibrationNumber int                  `json:"vibrationNumber"`
	UserName        string               `json:"userName"`
	Reading         *persistence.Reading `json:"reading,omitempty"`
	ImageURL        string               `json:"imageUrl,omitempty"`
	ErrorMessage    string               `json:"errorMessage,omitempty"`
	CreatedAt       time.Time            `json:"createdAt"`
}

func result(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("result method")()

		id := c.Param("resultId")
		if id == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "No ID")
		}
		includeImage := c.QueryParam("includeImage") == "true"
		res, err := data.DB.LoadResult(c.Request().Context(), id)
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusInternalServerError, "Service error")
		}
		if res == nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Result not found"})
		}
		return c.JSON(http.StatusOK, mapResult(res, includeImage))
	}
}

const defaultUserName = "Viajero"

func mapResult(res *persistence.Result, includeImage bool) *resultView {
	rv := &resultView{ResultID: res.ID, Status: res.Status, VibrationNumber: res.VibrationNumber,
		UserName: defaultUserName, Reading: res.Reading,
		ErrorMessage: utils.FromSQLStr(res.ErrorMessage), CreatedAt: res.Created}
	if res.UserName.Valid && res.UserName.String != "" {
		rv.UserName = res.UserName.String
	}
	if includeImage && res.ImageBlobPath.Valid {
		rv.ImageURL = res.ImageBlobPath.String
	}
	return rv
}

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	}}

func subscribeHandler(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		ws, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return err
		}
		defer ws.Close()

		return data.WSHandler.HandleConnection(ws)
	}
}
