package servehttp

import (
	"errors"
	"net/http"
	"workmill/bizerror"
	"workmill/common"
	"workmill/domain"
	"workmill/domain/workitem"
	"workmill/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func RegisterWorkItemHandler(r *gin.Engine, m workitem.WorkItemManagerTraits, middleWares ...gin.HandlerFunc) {
	// group: "", version: v1, resource: work-items
	g := r.Group("/v1/work-items", middleWares...)

	handler := &workItemHandler{manager: m, validator: validator.New(), retryPolicy: DefaultRetryPolicy}

	g.GET("", handler.handleQuery)
	g.POST("", handler.handleCreate)
	g.GET(":id", handler.handleDetail)
	g.POST(":id/operations", handler.handleOperation)
}

type workItemHandler struct {
	manager     workitem.WorkItemManagerTraits
	validator   *validator.Validate
	retryPolicy RetryPolicy
}

func (h *workItemHandler) handleCreate(c *gin.Context) {
	creation := domain.WorkItemCreation{}
	err := c.ShouldBindBodyWith(&creation, binding.JSON)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err = h.validator.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	detail, err := h.manager.CreateWorkItem(c.Request.Context(), &creation, session.FindSession(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, detail)
}

func (h *workItemHandler) handleDetail(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	detail, err := h.manager.DetailWorkItem(parsedId, session.FindSession(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func (h *workItemHandler) handleQuery(c *gin.Context) {
	query := domain.WorkItemQuery{}
	_ = c.MustBindWith(&query, binding.Query)

	items, err := h.manager.QueryWorkItems(&query, session.FindSession(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, &common.PagedBody{List: items, Total: uint64(len(items))})
}

// handleOperation serves every lifecycle operation through one endpoint.
// A version conflict is retried here only when the caller did not pin an
// observed version; a pinned version makes the conflict the final answer.
func (h *workItemHandler) handleOperation(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	op := workitem.Operation{}
	err = c.ShouldBindBodyWith(&op, binding.JSON)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	op.WorkItemID = parsedId

	if err = h.validator.Struct(op); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	retryable := func(opErr error) bool {
		var eligibilityErr *bizerror.ErrEligibilityCheckFailed
		if errors.As(opErr, &eligibilityErr) {
			return true
		}
		return op.ObservedVersion == 0 && errors.Is(opErr, bizerror.ErrVersionConflict)
	}
	s := session.FindSession(c)
	updated, err := RetryOnContention(c.Request.Context(), h.retryPolicy, retryable,
		func() (*domain.WorkItem, error) {
			return h.manager.Apply(c.Request.Context(), &op, s)
		})
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, updated)
}
