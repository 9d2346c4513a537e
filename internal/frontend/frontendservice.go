package frontend

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"

	"github.com/jo-hoe/certshowcase/internal/backend/commands"
	"github.com/jo-hoe/certshowcase/internal/certificates"
	"github.com/jo-hoe/certshowcase/internal/common"
	"github.com/jo-hoe/certshowcase/internal/core"
	"github.com/jo-hoe/certshowcase/internal/nlp"
	"github.com/jo-hoe/certshowcase/internal/wordcloud"
)

const (
	MainPageName   = "index.html"
	CoursePageName = "course.html"
	siteTitle      = "Certificates"
	mimePNG        = "image/png"
	mimeJPEG       = "image/jpeg"
	defaultIconPx  = 32
)

type FrontendService struct {
	coreService *core.CoreService
	config      *core.ServiceConfig
}

// pageData is shared by every html view.
type pageData struct {
	Title        string
	WordCloudURL string
	Courses      []certificates.Certificate
	Course       certificates.Certificate
	ImageURL     string
	Message      string
}

type wordCloudRequest struct {
	Source string `query:"source" validate:"omitempty,max=64"`
	Method string `query:"method" validate:"omitempty,max=32"`
}

type iconRequest struct {
	Size int `query:"size" validate:"omitempty,min=16,max=512"`
}

func NewFrontendService(config *core.ServiceConfig, coreService *core.CoreService) *FrontendService {
	return &FrontendService{
		coreService: coreService,
		config:      config,
	}
}

func (service *FrontendService) SetRoutes(e *echo.Echo) {
	e.Renderer = newTemplate()
	e.HTTPErrorHandler = service.httpErrorHandler
	if e.Validator == nil {
		e.Validator = common.NewGenericEchoValidator()
	}

	registry := service.coreService.Metrics().Registry
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "http",
		Registerer: registry,
		Skipper: func(c echo.Context) bool {
			path := c.Path()
			return path == "/probe" || path == "/metrics"
		},
	}))
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: registry}))

	e.GET("/", service.indexHandler)
	e.GET("/course/:id", service.courseHandler)
	e.GET("/course/:id/", service.courseHandler)
	e.GET("/wordcloud.png", service.wordCloudHandler)
	e.GET("/certificates/:file", service.certificateImageHandler)
	e.GET("/probe", service.probeHandler)

	// Favicon routes
	e.GET("/icon.svg", service.iconHandler)
	e.GET("/icon.png", service.iconPNGHandler)

	e.Static("/static", service.config.StaticDir)
}

func (service *FrontendService) indexHandler(ctx echo.Context) error {
	courses, err := service.coreService.Certificates()
	if err != nil {
		slog.Error("indexHandler: failed to load certificates",
			"status", http.StatusInternalServerError, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}

	wordCloudURL, err := service.coreService.IndexWordCloud(ctx.Request().Context())
	if errors.Is(err, wordcloud.ErrEmptyFrequencies) {
		slog.Info("indexHandler: no words for the word cloud yet", "courses", len(courses))
		wordCloudURL, err = "", nil
	}
	if err != nil {
		slog.Error("indexHandler: failed to generate word cloud",
			"status", http.StatusInternalServerError, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}

	return ctx.Render(http.StatusOK, MainPageName, pageData{
		Title:        siteTitle,
		WordCloudURL: wordCloudURL,
		Courses:      courses,
	})
}

func (service *FrontendService) courseHandler(ctx echo.Context) error {
	index, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		slog.Warn("courseHandler: invalid course id", "status", http.StatusNotFound, "id", ctx.Param("id"))
		return echo.NewHTTPError(http.StatusNotFound, "There is no course with this id.")
	}

	course, err := service.coreService.Certificate(index)
	if errors.Is(err, core.ErrNotFound) {
		slog.Warn("courseHandler: course not found", "status", http.StatusNotFound, "id", index)
		return echo.NewHTTPError(http.StatusNotFound, "There is no course with this id.")
	}
	if err != nil {
		slog.Error("courseHandler: failed to load course",
			"status", http.StatusInternalServerError, "id", index, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}

	data := pageData{Title: course.Title, Course: course}
	if course.CertificateID != "" {
		data.ImageURL = "/certificates/" + course.CertificateID + ".jpg"
	}
	return ctx.Render(http.StatusOK, CoursePageName, data)
}

func (service *FrontendService) wordCloudHandler(ctx echo.Context) error {
	var req wordCloudRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}
	if req.Source == "" {
		req.Source = service.config.WordCloud.Source
	}
	if req.Method == "" {
		req.Method = service.config.WordCloud.Method
	}

	data, err := service.coreService.WordCloud(ctx.Request().Context(), req.Source, req.Method, wordcloud.GenerateOptions{})
	switch {
	case errors.Is(err, nlp.ErrUnknownMethod), errors.Is(err, certificates.ErrInvalidColumn):
		slog.Warn("wordCloudHandler: invalid request",
			"status", http.StatusBadRequest, "source", req.Source, "method", req.Method, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, wordcloud.ErrEmptyFrequencies):
		slog.Warn("wordCloudHandler: no words to draw",
			"status", http.StatusNotFound, "source", req.Source, "method", req.Method)
		return echo.NewHTTPError(http.StatusNotFound, "No words found for this source.")
	case err != nil:
		slog.Error("wordCloudHandler: failed to render word cloud",
			"status", http.StatusInternalServerError, "source", req.Source, "method", req.Method, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}

	ctx.Response().Header().Set("Cache-Control", "public, max-age=300")
	return ctx.Blob(http.StatusOK, mimePNG, data)
}

func (service *FrontendService) certificateImageHandler(ctx echo.Context) error {
	file := ctx.Param("file")
	id, ok := strings.CutSuffix(file, ".jpg")
	if !ok || id == "" {
		return echo.NewHTTPError(http.StatusNotFound, "There is no certificate image with this name.")
	}

	data, err := service.coreService.CertificateImage(ctx.Request().Context(), id)
	if errors.Is(err, core.ErrNotFound) {
		slog.Warn("certificateImageHandler: image not available",
			"status", http.StatusNotFound, "certificate_id", id)
		return echo.NewHTTPError(http.StatusNotFound, "There is no certificate image with this name.")
	}
	if err != nil {
		slog.Error("certificateImageHandler: failed to load image",
			"status", http.StatusInternalServerError, "certificate_id", id, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}

	ctx.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return ctx.Blob(http.StatusOK, mimeJPEG, data)
}

func (service *FrontendService) probeHandler(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "ok")
}

func (service *FrontendService) iconHandler(ctx echo.Context) error {
	data, err := assetsFS.ReadFile("views/icon.svg")
	if err != nil {
		slog.Error("iconHandler: failed to read icon.svg", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load icon")
	}
	// Cache for 7 days
	ctx.Response().Header().Set("Cache-Control", "public, max-age=604800, immutable")
	return ctx.Blob(http.StatusOK, "image/svg+xml", data)
}

// iconPNGHandler rasterizes the svg icon for clients without svg favicons.
func (service *FrontendService) iconPNGHandler(ctx echo.Context) error {
	var req iconRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}
	size := req.Size
	if size == 0 {
		size = defaultIconPx
	}

	data, err := assetsFS.ReadFile("views/icon.svg")
	if err != nil {
		slog.Error("iconPNGHandler: failed to read icon.svg", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to load icon")
	}
	command, err := commands.NewPngConverterCommand(map[string]any{"width": size, "height": size})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}
	icon, err := command.Execute(data)
	if err != nil {
		slog.Error("iconPNGHandler: failed to render icon", "status", http.StatusInternalServerError, "error", err)
		return ctx.String(http.StatusInternalServerError, "Failed to render icon")
	}

	ctx.Response().Header().Set("Cache-Control", "public, max-age=604800, immutable")
	return ctx.Blob(http.StatusOK, mimePNG, icon)
}

// httpErrorHandler renders html pages for 404 and 5xx and falls back to the
// echo default otherwise.
func (service *FrontendService) httpErrorHandler(err error, ctx echo.Context) {
	if ctx.Response().Committed {
		return
	}
	var he *echo.HTTPError
	code := http.StatusInternalServerError
	if errors.As(err, &he) {
		code = he.Code
	}

	switch {
	case code == http.StatusNotFound && acceptsHTML(ctx):
		message := "The page you are looking for does not exist."
		if he != nil {
			if m, ok := he.Message.(string); ok && m != http.StatusText(http.StatusNotFound) {
				message = m
			}
		}
		if rerr := ctx.Render(code, "404.html", pageData{Title: "Not found", Message: message}); rerr != nil {
			slog.Error("httpErrorHandler: failed to render 404 page", "error", rerr)
		}
	case code >= http.StatusInternalServerError && acceptsHTML(ctx):
		if rerr := ctx.Render(code, "500.html", pageData{Title: "Error"}); rerr != nil {
			slog.Error("httpErrorHandler: failed to render error page", "error", rerr)
		}
	default:
		ctx.Echo().DefaultHTTPErrorHandler(err, ctx)
	}
}

// acceptsHTML is false for image and metric routes so clients get plain
// error bodies there.
func acceptsHTML(ctx echo.Context) bool {
	path := ctx.Request().URL.Path
	return !strings.HasSuffix(path, ".png") && !strings.HasSuffix(path, ".jpg") &&
		!strings.HasSuffix(path, ".svg") && path != "/metrics"
}
