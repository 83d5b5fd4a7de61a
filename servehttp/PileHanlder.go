package servehttp

import (
	"errors"
	"net/http"
	"workmill/bizerror"
	"workmill/domain"
	"workmill/domain/pile"
	"workmill/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func RegisterPileHandler(r *gin.Engine, m pile.PileManagerTraits, middleWares ...gin.HandlerFunc) {
	// group: "", version: v1, resource: piles
	g := r.Group("/v1/piles", middleWares...)

	handler := &pileHandler{manager: m, validator: validator.New()}

	g.POST("", handler.handleCreate)
	g.GET(":id", handler.handleDetail)
	g.PUT(":id/members", handler.handleUpdateMembers)
	g.POST(":id/work-items", handler.handleOffer)
	g.POST(":id/claims", handler.handleClaim)
}

type pileHandler struct {
	manager   pile.PileManagerTraits
	validator *validator.Validate
}

// PileItemLink names a work item inside a pile scoped request body.
type PileItemLink struct {
	WorkItemID      types.ID `json:"workItemId" validate:"required" binding:"required"`
	ObservedVersion int64    `json:"observedVersion"`
}

func (h *pileHandler) handleCreate(c *gin.Context) {
	creation := domain.PileCreation{}
	err := c.ShouldBindBodyWith(&creation, binding.JSON)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	if err = h.validator.Struct(creation); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	created, err := h.manager.CreatePile(&creation, session.FindSession(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, created)
}

func (h *pileHandler) handleDetail(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	detail, err := h.manager.DetailPile(parsedId, session.FindSession(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}

func (h *pileHandler) handleUpdateMembers(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	change := domain.PileMemberChange{}
	err = c.ShouldBindBodyWith(&change, binding.JSON)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err = h.validator.Struct(change); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	updated, err := h.manager.UpdateMembers(parsedId, change.Members, session.FindSession(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, updated)
}

func (h *pileHandler) handleOffer(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	link := PileItemLink{}
	err = c.ShouldBindBodyWith(&link, binding.JSON)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	linked, err := h.manager.OfferToPile(c.Request.Context(), parsedId, link.WorkItemID,
		link.ObservedVersion, session.FindSession(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, linked)
}

// handleClaim never retries: losing a claim race is a final answer, reported
// as a conflict.
func (h *pileHandler) handleClaim(c *gin.Context) {
	parsedId, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: errors.New("invalid id '" + c.Param("id") + "'")})
	}

	link := PileItemLink{}
	err = c.ShouldBindBodyWith(&link, binding.JSON)
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}

	claimed, err := h.manager.Claim(c.Request.Context(), parsedId, link.WorkItemID,
		link.ObservedVersion, session.FindSession(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, claimed)
}
