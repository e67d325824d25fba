package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unisphere/unisphere-api/internal/models"
	"github.com/unisphere/unisphere-api/internal/service"
	"github.com/unisphere/unisphere-api/pkg/response"
)

// ClubHandler exposes student clubs and their rosters.
type ClubHandler struct {
	service *service.ClubService
}

// NewClubHandler constructs the handler.
func NewClubHandler(svc *service.ClubService) *ClubHandler {
	return &ClubHandler{service: svc}
}

// List godoc
// @Summary List clubs
// @Tags Clubs
// @Produce json
// @Param category query string false "Category"
// @Param search query string false "Search name, description or category"
// @Success 200 {object} response.Envelope
// @Router /clubs [get]
func (h *ClubHandler) List(c *gin.Context) {
	filter := models.ClubFilter{ListOptions: listOptions(c), Category: c.Query("category")}
	clubs, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, clubs, pagination)
}

// Get godoc
// @Summary Get club with members
// @Tags Clubs
// @Produce json
// @Param id path string true "Club ID"
// @Success 200 {object} response.Envelope
// @Router /clubs/{id} [get]
func (h *ClubHandler) Get(c *gin.Context) {
	club, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, club, nil)
}

// Create godoc
// @Summary Create club
// @Tags Clubs
// @Accept json
// @Produce json
// @Param payload body service.ClubRequest true "Club"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Security BearerAuth
// @Router /clubs [post]
func (h *ClubHandler) Create(c *gin.Context) {
	var req service.ClubRequest
	if !bindJSON(c, &req) {
		return
	}
	club, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, club)
}

// Update godoc
// @Summary Update club
// @Tags Clubs
// @Accept json
// @Produce json
// @Param id path string true "Club ID"
// @Param payload body service.ClubRequest true "Club"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /clubs/{id} [put]
func (h *ClubHandler) Update(c *gin.Context) {
	var req service.ClubRequest
	if !bindJSON(c, &req) {
		return
	}
	club, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, club, nil)
}

// Delete godoc
// @Summary Delete club
// @Tags Clubs
// @Param id path string true "Club ID"
// @Success 204
// @Security BearerAuth
// @Router /clubs/{id} [delete]
func (h *ClubHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddMember godoc
// @Summary Add or update a club member
// @Tags Clubs
// @Accept json
// @Produce json
// @Param id path string true "Club ID"
// @Param payload body service.ClubMemberRequest true "Member"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /clubs/{id}/members [post]
func (h *ClubHandler) AddMember(c *gin.Context) {
	var req service.ClubMemberRequest
	if !bindJSON(c, &req) {
		return
	}
	club, err := h.service.AddMember(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, club, nil)
}

// RemoveMember godoc
// @Summary Remove a club member
// @Tags Clubs
// @Param id path string true "Club ID"
// @Param email path string true "Member email"
// @Success 204
// @Security BearerAuth
// @Router /clubs/{id}/members/{email} [delete]
func (h *ClubHandler) RemoveMember(c *gin.Context) {
	if err := h.service.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("email")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Join godoc
// @Summary Join a club as a member
// @Tags Clubs
// @Produce json
// @Param id path string true "Club ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /clubs/{id}/join [post]
func (h *ClubHandler) Join(c *gin.Context) {
	claims := requireClaims(c)
	if claims == nil {
		return
	}
	club, err := h.service.Join(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, club, nil)
}
