package delivery_http

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	model "tweetbot-service/internal/domain/models"
	"tweetbot-service/internal/domain/ports/input/pipeline"
	post_service "tweetbot-service/internal/domain/ports/input/post"
	ports "tweetbot-service/internal/domain/ports/output"
)

type Handler struct {
	posts    post_service.Service
	pipeline pipeline.Pipeline
	validate *validator.Validate
	log      ports.Logger
}

func NewHandler(posts post_service.Service, pipeline pipeline.Pipeline, log ports.Logger) *Handler {
	return &Handler{
		posts:    posts,
		pipeline: pipeline,
		validate: validator.New(),
		log:      log,
	}
}

type postIDRequest struct {
	PostID int64 `validate:"required,gt=0"`
}

type listPostsRequest struct {
	Limit  int `validate:"gte=0"`
	Offset int `validate:"gte=0"`
}

type listPostsResponse struct {
	Posts []*model.PostDetailed `json:"posts"`
	Total int                   `json:"total"`
}

type importPostsResponse struct {
	Imported int `json:"imported"`
}

type runPipelineResponse struct {
	Result *model.RunResult `json:"result"`
	Error  string           `json:"error,omitempty"`
}

func (h *Handler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) CreatePost(c echo.Context) error {
	var dto model.CreatePostDTO
	if err := c.Bind(&dto); err != nil {
		return err
	}

	post, err := h.posts.CreatePost(c.Request().Context(), &dto)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

// ImportPosts accepts a JSON array of {"title", "text", "image_url"} entries.
func (h *Handler) ImportPosts(c echo.Context) error {
	var entries []*model.ImportPostDTO
	if err := c.Bind(&entries); err != nil {
		return err
	}

	n, err := h.posts.ImportPosts(c.Request().Context(), entries)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, importPostsResponse{Imported: n})
}

func (h *Handler) ListPosts(c echo.Context) error {
	var (
		req       listPostsRequest
		published bool
	)
	if err := echo.QueryParamsBinder(c).
		Bool("published", &published).
		Int("limit", &req.Limit).
		Int("offset", &req.Offset).
		BindError(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	if err := h.validate.Struct(req); err != nil {
		h.log.Debug("ListPosts validation failed", slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}

	filters := &model.PostFilters{Limit: &req.Limit, Offset: &req.Offset}
	if c.QueryParam("published") != "" {
		filters.Published = &published
	}

	posts, total, err := h.posts.ListPosts(c.Request().Context(), filters)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listPostsResponse{Posts: posts, Total: total})
}

func (h *Handler) GetPost(c echo.Context) error {
	id, err := h.postID(c)
	if err != nil {
		return err
	}

	post, err := h.posts.GetPostByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

func (h *Handler) DeletePost(c echo.Context) error {
	id, err := h.postID(c)
	if err != nil {
		return err
	}

	if err := h.posts.DeletePost(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RunPipeline triggers one run outside the schedule and reports its result.
func (h *Handler) RunPipeline(c echo.Context) error {
	result, err := h.pipeline.Run(c.Request().Context())
	if err != nil {
		return c.JSON(statusFor(err), runPipelineResponse{Result: result, Error: err.Error()})
	}
	if result.Outcome == model.OutcomeSkipped {
		return c.JSON(http.StatusConflict, runPipelineResponse{Result: result})
	}
	return c.JSON(http.StatusOK, runPipelineResponse{Result: result})
}

func (h *Handler) postID(c echo.Context) (int64, error) {
	var req postIDRequest
	if err := echo.PathParamsBinder(c).Int64("id", &req.PostID).BindError(); err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}
	if err := h.validate.Struct(req); err != nil {
		h.log.Debug("Post id validation failed", slog.Int64("post_id", req.PostID), slog.String("error", err.Error()))
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid post id")
	}
	return req.PostID, nil
}
