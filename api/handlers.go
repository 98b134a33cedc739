package api

import (
	"errors"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/memoflow/memoflow/pkg/memo"
	"github.com/memoflow/memoflow/pkg/storage"
)

// createMemoRequest is the body for POST /memos.
type createMemoRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// updateMemoRequest is the body for PUT /memos/:id. Absent fields are left
// untouched; a present tags list replaces the existing set.
type updateMemoRequest struct {
	Title   *string  `json:"title"`
	Content *string  `json:"content"`
	Tags    []string `json:"tags"`
	Status  *string  `json:"status"`
}

// listResponse wraps memo collections with their count.
type listResponse struct {
	Count int          `json:"count"`
	Memos []*memo.Memo `json:"memos"`
}

// handleRoot returns the service banner.
func (s *Server) handleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": "memoflow",
		"status":  "running",
	})
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleCreateMemo stores a new memo and queues its enrichment. The
// response carries the pre-enrichment state; clients poll the memo to
// observe the merged summary and tags.
func (s *Server) handleCreateMemo(c *fiber.Ctx) error {
	var req createMemoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	m, err := s.manager.CreateMemo(c.Context(), memo.CreateInput{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(m)
}

// handleListMemos returns memos most-recently-updated first. Pagination via
// limit/offset query params; an item can shift pages if it is updated
// between calls.
func (s *Server) handleListMemos(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	offset := c.QueryInt("offset", 0)

	memos, err := s.queries.List(c.Context(), limit, offset)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(listResponse{Count: len(memos), Memos: memos})
}

// handleGetMemo returns a single memo by id.
func (s *Server) handleGetMemo(c *fiber.Ctx) error {
	m, err := s.queries.Get(c.Context(), c.Params("id"))
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(m)
}

// handleUpdateMemo applies a partial update. An update carrying content
// re-queues enrichment against the new content.
func (s *Server) handleUpdateMemo(c *fiber.Ctx) error {
	var req updateMemoRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	in := memo.UpdateInput{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	}
	if req.Status != nil {
		status := memo.Status(*req.Status)
		in.Status = &status
	}

	m, err := s.manager.UpdateMemo(c.Context(), c.Params("id"), in)
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(m)
}

// handleDeleteMemo removes a memo. Deleting an unknown id is a 404, never
// an internal fault.
func (s *Server) handleDeleteMemo(c *fiber.Ctx) error {
	existed, err := s.manager.DeleteMemo(c.Context(), c.Params("id"))
	if err != nil {
		return s.respondError(c, err)
	}
	if !existed {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "memo not found"})
	}

	return c.JSON(fiber.Map{"deleted": true})
}

// handleSearchMemos matches the query against titles, contents and tag
// names.
func (s *Server) handleSearchMemos(c *fiber.Ctx) error {
	raw := c.Params("query")
	q, err := url.PathUnescape(raw)
	if err != nil {
		q = raw
	}

	memos, err := s.queries.Search(c.Context(), q, c.QueryInt("limit", 0))
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(listResponse{Count: len(memos), Memos: memos})
}

// handleAllTags returns every known tag name.
func (s *Server) handleAllTags(c *fiber.Ctx) error {
	tags, err := s.queries.AllTags(c.Context())
	if err != nil {
		return s.respondError(c, err)
	}
	if tags == nil {
		tags = []string{}
	}

	return c.JSON(fiber.Map{"count": len(tags), "tags": tags})
}

// handleMemosByTag returns memos carrying the exact tag name.
func (s *Server) handleMemosByTag(c *fiber.Ctx) error {
	raw := c.Params("name")
	name, err := url.PathUnescape(raw)
	if err != nil {
		name = raw
	}

	memos, err := s.queries.ListByTag(c.Context(), name, c.QueryInt("limit", 0))
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(listResponse{Count: len(memos), Memos: memos})
}

// handleStats returns aggregate counts.
func (s *Server) handleStats(c *fiber.Ctx) error {
	count, err := s.queries.Count(c.Context())
	if err != nil {
		return s.respondError(c, err)
	}

	return c.JSON(fiber.Map{"memo_count": count})
}

// respondError maps core errors onto HTTP statuses: validation is the
// caller's fault, unknown ids are not found, anything else is internal.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	var validation memo.ValidationError
	if errors.As(err, &validation) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: validation.Error()})
	}

	var notFound storage.ErrNotFound
	if errors.As(err, &notFound) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: notFound.Error()})
	}

	s.logger.Error("request failed",
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "internal error"})
}
